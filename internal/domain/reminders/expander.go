package reminders

import (
	"context"
	"fmt"
	"time"

	"pet-reminders/internal/domain/calendar"
)

// ExpandRecurring crea la siguiente ocurrencia de cada serie vencida
// (no feeding, con frecuencia) y marca la fuente como done.
// Es idempotente: correrlo dos veces con el mismo now no duplica nada.
func (s *Service) ExpandRecurring(ctx context.Context, now time.Time) (PassResult, error) {
	today := s.cal.DateOf(now)
	res := newResult(PassExpand, now, today)

	due, err := s.repo.Find(ctx, Filter{
		ExcludeType:      TypeFeeding,
		ExcludeFrequency: calendar.FrequencyNone,
		Status:           StatusPending,
		DueOnOrBefore:    today,
		WithinEndDate:    true,
	})
	if err != nil {
		res.FinishedAt = now
		return res, fmt.Errorf("expand: find due: %w", err)
	}
	res.Scanned = len(due)

	for _, r := range due {
		if err := ctx.Err(); err != nil {
			res.FinishedAt = now
			return res, fmt.Errorf("expand: %w", err)
		}
		s.expandOne(ctx, now, r, &res)
	}

	res.FinishedAt = now
	s.log.Info("recurrence expansion finished", res.Fields())
	return res, nil
}

func (s *Service) expandOne(ctx context.Context, now time.Time, r Reminder, res *PassResult) {
	log := s.log.With(map[string]any{"reminder_id": r.ID, "pet_id": r.PetID})

	if !r.ReminderDate.Valid() {
		res.Skipped++
		log.Warn("skip reminder: malformed reminder_date", nil)
		return
	}
	next, ok := calendar.NextOccurrence(r.ReminderDate, r.Frequency)
	if !ok {
		res.Skipped++
		log.Warn("skip reminder: unknown frequency", map[string]any{"frequency": string(r.Frequency)})
		return
	}

	if r.EndDate.Valid() && next.After(r.EndDate) {
		res.Terminated++
		log.Info("series reached end_date", map[string]any{"end_date": r.EndDate.String()})
	} else {
		succ := Reminder{
			ID:              s.newID(),
			PetID:           r.PetID,
			Type:            r.Type,
			VaccinationType: r.VaccinationType,
			ReminderDate:    next,
			Frequency:       r.Frequency,
			EndDate:         r.EndDate,
			Status:          StatusPending,
			IsRead:          false,
			CreatedAt:       now,
		}
		created, err := s.createOnce(ctx, succ, Filter{
			PetID:        r.PetID,
			Type:         r.Type,
			ReminderDate: next,
			Frequency:    r.Frequency,
			Status:       StatusPending,
		})
		if err != nil {
			// la fuente queda pending; el próximo pase reintenta
			res.Errored++
			log.Error("create next occurrence failed", map[string]any{"next": next.String(), "error": err})
			return
		}
		if created {
			res.Created++
			s.notifyOccurrence(ctx, succ, res)
		} else {
			res.Existing++
		}
	}

	n, err := s.repo.UpdateWhere(ctx,
		Filter{ID: r.ID, Status: StatusPending},
		Changes{Status: ptr(StatusDone)},
	)
	if err != nil {
		res.Errored++
		log.Error("mark reminder done failed", map[string]any{"error": err})
		return
	}
	res.Updated += int(n)
}
