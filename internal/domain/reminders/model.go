package reminders

import (
	"strings"
	"time"

	"pet-reminders/internal/domain/calendar"
)

// Reminder es una ocurrencia concreta. Las series se enlazan solo por
// (pet_id, type, frequency) y la progresión de fechas, sin FK.
type Reminder struct {
	ID    string
	PetID string

	Type            Type
	VaccinationType string             // solo vaccination
	FeedingTime     calendar.TimeOfDay // solo feeding

	ReminderDate calendar.Date
	Frequency    calendar.Frequency
	EndDate      calendar.Date // inválida = serie sin fin

	Status Status
	IsRead bool

	CreatedAt time.Time
}

// Validate revisa las invariantes del modelo antes de insertar.
func (r Reminder) Validate() error {
	if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.PetID) == "" {
		return ErrInvalidInput
	}
	if !r.Type.Valid() || !r.Frequency.Valid() || !r.ReminderDate.Valid() {
		return ErrInvalidInput
	}
	if r.Status != StatusPending && r.Status != StatusDone {
		return ErrInvalidInput
	}
	if r.EndDate.Valid() {
		if r.Frequency == calendar.FrequencyNone || r.EndDate.Before(r.ReminderDate) {
			return ErrInvalidInput
		}
	}
	if r.Type != TypeVaccination && strings.TrimSpace(r.VaccinationType) != "" {
		return ErrInvalidInput
	}
	if r.Type == TypeFeeding && !r.FeedingTime.Valid() {
		return ErrInvalidInput
	}
	if r.Type != TypeFeeding && r.FeedingTime.Valid() {
		return ErrInvalidInput
	}
	return nil
}

// Title para notificaciones y feed ("Vaccination: Rabies").
func (r Reminder) Title() string {
	t := r.Type.Humanize()
	if r.Type == TypeVaccination && strings.TrimSpace(r.VaccinationType) != "" {
		t += ": " + strings.TrimSpace(r.VaccinationType)
	}
	return t
}

// DuplicateKey identifica la ocurrencia para la regla "a lo sumo un pending"
// por (pet_id, type, reminder_date, frequency, feeding_time).
func (r Reminder) DuplicateKey() string {
	return strings.Join([]string{
		r.PetID,
		string(r.Type),
		r.ReminderDate.String(),
		string(r.Frequency),
		r.FeedingTime.String(),
	}, "|")
}
