package reminders

import (
	"context"
	"errors"
	"strings"

	"pet-reminders/internal/domain/calendar"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("reminder not found")
	ErrDuplicate    = errors.New("pending reminder already exists")
)

// Repository es el gateway al store de reminders.
// Todas las implementaciones deben rechazar con ErrDuplicate un segundo pending
// con la misma DuplicateKey (índice único parcial en SQL).
type Repository interface {
	Create(ctx context.Context, r Reminder) error
	Find(ctx context.Context, f Filter) ([]Reminder, error)
	FindOne(ctx context.Context, f Filter) (Reminder, error)
	UpdateWhere(ctx context.Context, f Filter, c Changes) (int64, error)
	DeleteWhere(ctx context.Context, f Filter) (int64, error)
}

// Filter: todos los campos son opcionales y se combinan con AND.
// Valor cero = no filtrar.
type Filter struct {
	ID    string
	PetID string

	Type        Type
	ExcludeType Type

	Frequency        calendar.Frequency
	ExcludeFrequency calendar.Frequency

	Status Status
	IsRead *bool

	ReminderDate  calendar.Date // reminder_date = d
	DueOnOrBefore calendar.Date // reminder_date <= d
	DueBefore     calendar.Date // reminder_date < d

	WithinEndDate bool          // end_date IS NULL OR reminder_date <= end_date
	ActiveOn      calendar.Date // end_date IS NULL OR end_date >= d

	FeedingTime calendar.TimeOfDay
}

// Changes: nil = no tocar.
type Changes struct {
	Status *Status
	IsRead *bool
}

func (c Changes) Empty() bool {
	return c.Status == nil && c.IsRead == nil
}

func (c Changes) Apply(r Reminder) Reminder {
	if c.Status != nil {
		r.Status = *c.Status
	}
	if c.IsRead != nil {
		r.IsRead = *c.IsRead
	}
	return r
}

// Matches es la semántica de referencia del filtro (la usa el store en memoria).
// Una reminder_date malformada no cumple igualdades pero sí pasa los rangos,
// igual que el texto crudo en un store SQL: el pase la detecta y la descarta.
// Por eso los pases nunca borran por rango; borran por ID tras descartarlas.
func (f Filter) Matches(r Reminder) bool {
	if id := strings.TrimSpace(f.ID); id != "" && r.ID != id {
		return false
	}
	if pid := strings.TrimSpace(f.PetID); pid != "" && r.PetID != pid {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.ExcludeType != "" && r.Type == f.ExcludeType {
		return false
	}
	if f.Frequency != "" && r.Frequency != f.Frequency {
		return false
	}
	if f.ExcludeFrequency != "" && r.Frequency == f.ExcludeFrequency {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.IsRead != nil && r.IsRead != *f.IsRead {
		return false
	}
	if f.ReminderDate.Valid() && !r.ReminderDate.Equal(f.ReminderDate) {
		return false
	}
	if r.ReminderDate.Valid() {
		if f.DueOnOrBefore.Valid() && r.ReminderDate.After(f.DueOnOrBefore) {
			return false
		}
		if f.DueBefore.Valid() && !r.ReminderDate.Before(f.DueBefore) {
			return false
		}
		if f.WithinEndDate && r.EndDate.Valid() && r.ReminderDate.After(r.EndDate) {
			return false
		}
	}
	if f.ActiveOn.Valid() && r.EndDate.Valid() && r.EndDate.Before(f.ActiveOn) {
		return false
	}
	if f.FeedingTime.Valid() && !r.FeedingTime.Equal(f.FeedingTime) {
		return false
	}
	return true
}
