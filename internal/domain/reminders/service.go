package reminders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-reminders/internal/domain/calendar"
	"pet-reminders/internal/platform/logger"
)

const DefaultFeedingLead = time.Hour

// Service contiene los pases del motor de reminders.
// Ninguno lee el reloj: todos reciben "now" explícito.
type Service struct {
	repo        Repository
	cal         calendar.Calendar
	notifier    *Notifier
	log         logger.Logger
	feedingLead time.Duration
	newID       func() string
}

type Options struct {
	Calendar    calendar.Calendar
	Notifier    *Notifier
	Logger      logger.Logger
	FeedingLead time.Duration
}

func NewService(repo Repository, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	lead := opts.FeedingLead
	if lead <= 0 {
		lead = DefaultFeedingLead
	}
	return &Service{
		repo:        repo,
		cal:         opts.Calendar,
		notifier:    opts.Notifier,
		log:         log,
		feedingLead: lead,
		newID:       uuid.NewString,
	}
}

func (s *Service) Calendar() calendar.Calendar { return s.cal }

// ListPending devuelve los reminders pendientes de una mascota (feed ICS).
func (s *Service) ListPending(ctx context.Context, petID string) ([]Reminder, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.Find(ctx, Filter{PetID: petID, Status: StatusPending})
}

// createOnce inserta r salvo que ya exista un pending equivalente.
// Devuelve false si ya existía (por consulta previa o por el índice único).
func (s *Service) createOnce(ctx context.Context, r Reminder, existing Filter) (bool, error) {
	if _, err := s.repo.FindOne(ctx, existing); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := r.Validate(); err != nil {
		return false, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) notifyOccurrence(ctx context.Context, r Reminder, res *PassResult) {
	if s.notifier == nil {
		return
	}
	res.notified(s.notifier.Occurrence(ctx, r))
}

func (s *Service) notifyFeeding(ctx context.Context, r Reminder, res *PassResult) {
	if s.notifier == nil {
		return
	}
	res.notified(s.notifier.FeedingDue(ctx, r))
}

func ptr[T any](v T) *T { return &v }
