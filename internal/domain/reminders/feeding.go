package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-reminders/internal/domain/calendar"
)

// ManageFeeding corre las tres tareas de feeding del día, en orden:
// crear instancias, ajustar is_read según la ventana, limpiar vencidas.
// Un fallo del store en una tarea no impide las otras.
func (s *Service) ManageFeeding(ctx context.Context, now time.Time) (PassResult, error) {
	today := s.cal.DateOf(now)
	res := newResult(PassFeeding, now, today)

	var errs []error
	if err := s.createFeedingInstances(ctx, now, today, &res); err != nil {
		errs = append(errs, err)
	}
	if err := s.syncFeedingReadState(ctx, now, today, &res); err != nil {
		errs = append(errs, err)
	}
	if err := s.cleanupFeedingInstances(ctx, now, today, &res); err != nil {
		errs = append(errs, err)
	}

	res.FinishedAt = now
	err := errors.Join(errs...)
	if err != nil {
		s.log.Error("feeding pass finished with errors", mergeFields(res.Fields(), "error", err))
	} else {
		s.log.Debug("feeding pass finished", res.Fields())
	}
	return res, err
}

// window devuelve [inicio de ventana, hora de comida] de hoy.
func (s *Service) window(today calendar.Date, ft calendar.TimeOfDay) (time.Time, time.Time) {
	dueAt := s.cal.At(today, ft)
	return dueAt.Add(-s.feedingLead), dueAt
}

func (s *Service) createFeedingInstances(ctx context.Context, now time.Time, today calendar.Date, res *PassResult) error {
	daily, err := s.repo.Find(ctx, Filter{
		Type:          TypeFeeding,
		Frequency:     calendar.FrequencyDaily,
		Status:        StatusPending,
		DueOnOrBefore: today,
		ActiveOn:      today,
	})
	if err != nil {
		return fmt.Errorf("feeding: find daily schedules: %w", err)
	}
	once, err := s.repo.Find(ctx, Filter{
		Type:         TypeFeeding,
		Frequency:    calendar.FrequencyNone,
		Status:       StatusPending,
		ReminderDate: today,
	})
	if err != nil {
		return fmt.Errorf("feeding: find one-time schedules: %w", err)
	}

	bases := append(daily, once...)
	res.Scanned += len(bases)

	for _, b := range bases {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("feeding: %w", err)
		}
		log := s.log.With(map[string]any{"reminder_id": b.ID, "pet_id": b.PetID})
		if !b.FeedingTime.Valid() || !b.ReminderDate.Valid() {
			res.Skipped++
			log.Warn("skip feeding schedule: malformed date or feeding_time", nil)
			continue
		}
		start, dueAt := s.window(today, b.FeedingTime)
		if now.After(dueAt) {
			continue
		}

		inst := Reminder{
			ID:           s.newID(),
			PetID:        b.PetID,
			Type:         TypeFeeding,
			FeedingTime:  b.FeedingTime,
			ReminderDate: today,
			Frequency:    calendar.FrequencyNone,
			Status:       StatusPending,
			IsRead:       false,
			CreatedAt:    now,
		}
		created, err := s.createOnce(ctx, inst, Filter{
			PetID:        b.PetID,
			Type:         TypeFeeding,
			ReminderDate: today,
			FeedingTime:  b.FeedingTime,
			Frequency:    calendar.FrequencyNone,
			Status:       StatusPending,
		})
		if err != nil {
			res.Errored++
			log.Error("create feeding instance failed", map[string]any{"error": err})
			continue
		}
		if !created {
			continue
		}
		res.Created++
		// creada ya dentro de la ventana: se avisa ahora, sin esperar el flip
		if !now.Before(start) {
			s.notifyFeeding(ctx, inst, res)
		}
	}
	return nil
}

func (s *Service) syncFeedingReadState(ctx context.Context, now time.Time, today calendar.Date, res *PassResult) error {
	items, err := s.repo.Find(ctx, Filter{
		Type:         TypeFeeding,
		Frequency:    calendar.FrequencyNone,
		Status:       StatusPending,
		ReminderDate: today,
	})
	if err != nil {
		return fmt.Errorf("feeding: find instances: %w", err)
	}

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("feeding: %w", err)
		}
		log := s.log.With(map[string]any{"reminder_id": it.ID, "pet_id": it.PetID})
		if !it.FeedingTime.Valid() {
			res.Skipped++
			log.Warn("skip feeding instance: malformed feeding_time", nil)
			continue
		}
		start, dueAt := s.window(today, it.FeedingTime)

		switch {
		case now.Before(start) && !it.IsRead:
			n, err := s.repo.UpdateWhere(ctx,
				Filter{ID: it.ID, IsRead: ptr(false)},
				Changes{IsRead: ptr(true)},
			)
			if err != nil {
				res.Errored++
				log.Error("mark feeding read failed", map[string]any{"error": err})
				continue
			}
			res.Updated += int(n)

		case !now.Before(start) && !now.After(dueAt) && it.IsRead:
			// update condicionado: solo quien hace el flip notifica
			n, err := s.repo.UpdateWhere(ctx,
				Filter{ID: it.ID, IsRead: ptr(true)},
				Changes{IsRead: ptr(false)},
			)
			if err != nil {
				res.Errored++
				log.Error("mark feeding unread failed", map[string]any{"error": err})
				continue
			}
			if n > 0 {
				res.Updated += int(n)
				it.IsRead = false
				s.notifyFeeding(ctx, it, res)
			}
		}
	}
	return nil
}

func (s *Service) cleanupFeedingInstances(ctx context.Context, now time.Time, today calendar.Date, res *PassResult) error {
	items, err := s.repo.Find(ctx, Filter{
		Type:         TypeFeeding,
		Frequency:    calendar.FrequencyNone,
		ReminderDate: today,
	})
	if err != nil {
		return fmt.Errorf("feeding: find instances for cleanup: %w", err)
	}

	for _, it := range items {
		if !it.FeedingTime.Valid() {
			res.Skipped++
			s.log.Warn("skip feeding cleanup: malformed feeding_time", map[string]any{"reminder_id": it.ID})
			continue
		}
		_, dueAt := s.window(today, it.FeedingTime)
		if !now.After(dueAt) {
			continue
		}
		n, err := s.repo.DeleteWhere(ctx, Filter{ID: it.ID})
		if err != nil {
			res.Errored++
			s.log.Error("delete past feeding instance failed", map[string]any{"reminder_id": it.ID, "error": err})
			continue
		}
		res.Deleted += int(n)
	}

	stale := Filter{
		Type:      TypeFeeding,
		Frequency: calendar.FrequencyNone,
		DueBefore: today,
	}
	if err := s.deleteEach(ctx, stale, res); err != nil {
		return fmt.Errorf("feeding: delete stale instances: %w", err)
	}
	return nil
}

func mergeFields(base map[string]any, kv ...any) map[string]any {
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			base[k] = kv[i+1]
		}
	}
	return base
}
