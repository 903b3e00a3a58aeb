package reminders

import "strings"

// Type define el tipo de cuidado.
// @Enum vaccination, vet_visit, feeding, grooming, medication, other
type Type string

const (
	TypeVaccination Type = "vaccination"
	TypeVetVisit    Type = "vet_visit"
	TypeFeeding     Type = "feeding"
	TypeGrooming    Type = "grooming"
	TypeMedication  Type = "medication"
	TypeOther       Type = "other"
)

func (t Type) Valid() bool {
	switch t {
	case TypeVaccination, TypeVetVisit, TypeFeeding, TypeGrooming, TypeMedication, TypeOther:
		return true
	}
	return false
}

// Humanize es el nombre que ve el dueño en notificaciones y en el feed.
func (t Type) Humanize() string {
	switch t {
	case TypeVaccination:
		return "Vaccination"
	case TypeVetVisit:
		return "Vet Visit"
	case TypeFeeding:
		return "Feeding"
	case TypeGrooming:
		return "Grooming"
	case TypeMedication:
		return "Medication"
	case TypeOther:
		return "Other"
	}
	s := strings.TrimSpace(string(t))
	if s == "" {
		return "Reminder"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Status del reminder.
// @Enum pending, done
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)
