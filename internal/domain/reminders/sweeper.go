package reminders

import (
	"context"
	"fmt"
	"time"

	"pet-reminders/internal/domain/calendar"
)

// SweepExpired borra los reminders no recurrentes (no feeding) con fecha
// anterior a hoy, sin importar su status. Los de hoy se conservan.
// Un registro con fecha malformada se loguea y se conserva.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (PassResult, error) {
	today := s.cal.DateOf(now)
	res := newResult(PassSweep, now, today)

	expired := Filter{
		Frequency:   calendar.FrequencyNone,
		ExcludeType: TypeFeeding,
		DueBefore:   today,
	}
	err := s.deleteEach(ctx, expired, &res)
	res.FinishedAt = now
	if err != nil {
		return res, fmt.Errorf("sweep: %w", err)
	}
	s.log.Info("expiration sweep finished", res.Fields())
	return res, nil
}

// deleteEach borra uno a uno (por ID, con el mismo predicado como guarda)
// los registros que cumplen f. Los de fecha inválida no se tocan.
func (s *Service) deleteEach(ctx context.Context, f Filter, res *PassResult) error {
	items, err := s.repo.Find(ctx, f)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	res.Scanned += len(items)

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !it.ReminderDate.Valid() {
			res.Skipped++
			s.log.Warn("skip delete: malformed reminder_date", map[string]any{"reminder_id": it.ID, "pet_id": it.PetID})
			continue
		}
		guard := f
		guard.ID = it.ID
		n, err := s.repo.DeleteWhere(ctx, guard)
		if err != nil {
			res.Errored++
			s.log.Error("delete reminder failed", map[string]any{"reminder_id": it.ID, "error": err})
			continue
		}
		res.Deleted += int(n)
	}
	return nil
}
