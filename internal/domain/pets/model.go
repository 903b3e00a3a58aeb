package pets

import "time"

// Species define las especies soportadas.
// @Enum dog, cat, other
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// Pet es la mascota tal como la ve el motor de reminders: perfil mínimo
// más el contacto del dueño (tabla users).
type Pet struct {
	ID          string
	OwnerUserID string

	OwnerName  string
	OwnerEmail string

	Name    string
	Species Species
	Breed   string

	CreatedAt time.Time
}
