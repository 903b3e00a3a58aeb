package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"pet-reminders/internal/adapters/storage/sqlstore"
	"pet-reminders/internal/adapters/storage/storagetest"
	"pet-reminders/internal/domain/calendar"
	"pet-reminders/internal/domain/reminders"
)

func openTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	st, err := NewStore(context.Background(), ":memory:", 5*time.Second)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestContract(t *testing.T) {
	storagetest.RunContract(t, func(t *testing.T) storagetest.Stores {
		st := openTestStore(t)
		return storagetest.Stores{
			Reminders: st.Reminders(),
			Pets:      st.Pets(),
			SeedMalformed: func(t *testing.T, id, petID string) {
				t.Helper()
				// parece fecha, así que entra en los rangos de texto
				if _, err := st.DB().ExecContext(context.Background(), `
					INSERT INTO reminders (id, pet_id, type, reminder_date, frequency, status, is_read, created_at)
					VALUES (?, ?, 'vet_visit', '2024-02-30', 'none', 'pending', 0, '2024-03-01T00:00:00Z')
				`, id, petID); err != nil {
					t.Fatalf("seed malformed: %v", err)
				}
			},
		}
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	st := openTestStore(t)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestMalformedRowsScanAsInvalid(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	storagetest.SeedPet(t, st.Pets(), "p1")

	_, err := st.DB().ExecContext(ctx, `
		INSERT INTO reminders (id, pet_id, type, feeding_time, reminder_date, frequency, status, is_read, created_at)
		VALUES ('bad', 'p1', 'feeding', '25:99', '2024-02-30', 'daily', 'pending', 0, 'garbage')
	`)
	if err != nil {
		t.Fatalf("insert raw row: %v", err)
	}

	got, err := st.Reminders().FindOne(ctx, reminders.Filter{ID: "bad"})
	if err != nil {
		t.Fatalf("malformed row must not fail the query: %v", err)
	}
	if got.ReminderDate.Valid() || got.FeedingTime.Valid() || !got.CreatedAt.IsZero() {
		t.Fatalf("expected invalid values, got %+v", got)
	}
}

// Expansión completa sobre sqlite: un registro malformado no frena al resto.
func TestExpandRecurring_MalformedIsolatedOnSQLite(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	repo := st.Reminders()

	for i := 0; i < 9; i++ {
		pid := fmt.Sprintf("p%d", i)
		storagetest.SeedPet(t, st.Pets(), pid)
		if err := repo.Create(ctx, reminders.Reminder{
			ID:           fmt.Sprintf("r%d", i),
			PetID:        pid,
			Type:         reminders.TypeGrooming,
			ReminderDate: calendar.MustParseDate("2024-03-10"),
			Frequency:    calendar.FrequencyWeekly,
			Status:       reminders.StatusPending,
			CreatedAt:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}); err != nil {
			t.Fatalf("seed r%d: %v", i, err)
		}
	}
	storagetest.SeedPet(t, st.Pets(), "px")
	if _, err := st.DB().ExecContext(ctx, `
		INSERT INTO reminders (id, pet_id, type, reminder_date, frequency, status, is_read, created_at)
		VALUES ('bad', 'px', 'grooming', '2024-02-30', 'weekly', 'pending', 0, '2024-03-01T00:00:00Z')
	`); err != nil {
		t.Fatalf("insert raw row: %v", err)
	}

	cal, err := calendar.Load("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	svc := reminders.NewService(repo, reminders.Options{Calendar: cal})

	now := cal.At(calendar.MustParseDate("2024-03-10"), calendar.NewTimeOfDay(0, 1, 0))
	res, err := svc.ExpandRecurring(ctx, now)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if res.Created != 9 || res.Updated != 9 || res.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	// idempotente sobre el store real
	again, err := svc.ExpandRecurring(ctx, now)
	if err != nil {
		t.Fatalf("second expand: %v", err)
	}
	if again.Created != 0 {
		t.Fatalf("second run must not create: %+v", again)
	}
	next, _ := repo.Find(ctx, reminders.Filter{ReminderDate: calendar.MustParseDate("2024-03-17")})
	if len(next) != 9 {
		t.Fatalf("expected 9 successors, got %d", len(next))
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(fmt.Errorf("plain")) {
		t.Fatalf("plain error is not a unique violation")
	}
}

// Una hora guardada como HH:MM es la misma ocurrencia que HH:MM:SS.
func TestManageFeeding_ShortFeedingTimeIsNotDuplicated(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	repo := st.Reminders()
	storagetest.SeedPet(t, st.Pets(), "p1")

	if _, err := st.DB().ExecContext(ctx, `
		INSERT INTO reminders (id, pet_id, type, feeding_time, reminder_date, frequency, status, is_read, created_at)
		VALUES ('once', 'p1', 'feeding', '18:00', '2024-03-10', 'none', 'pending', 0, '2024-03-01T00:00:00Z')
	`); err != nil {
		t.Fatalf("insert raw row: %v", err)
	}

	got, err := repo.FindOne(ctx, reminders.Filter{FeedingTime: calendar.MustParseTimeOfDay("18:00:00")})
	if err != nil || got.ID != "once" {
		t.Fatalf("HH:MM row must match its canonical time, got %+v %v", got, err)
	}

	// el índice único también la reconoce
	dup := reminders.Reminder{
		ID:           "dup",
		PetID:        "p1",
		Type:         reminders.TypeFeeding,
		FeedingTime:  calendar.MustParseTimeOfDay("18:00:00"),
		ReminderDate: calendar.MustParseDate("2024-03-10"),
		Frequency:    calendar.FrequencyNone,
		Status:       reminders.StatusPending,
		CreatedAt:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(ctx, dup); !errors.Is(err, reminders.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	cal, err := calendar.Load("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	svc := reminders.NewService(repo, reminders.Options{Calendar: cal})
	now := cal.At(calendar.MustParseDate("2024-03-10"), calendar.NewTimeOfDay(17, 30, 0))

	res, err := svc.ManageFeeding(ctx, now)
	if err != nil {
		t.Fatalf("feeding: %v", err)
	}
	if res.Created != 0 {
		t.Fatalf("no new instance expected: %+v", res)
	}
	same, err := repo.Find(ctx, reminders.Filter{
		Type:         reminders.TypeFeeding,
		Frequency:    calendar.FrequencyNone,
		Status:       reminders.StatusPending,
		ReminderDate: calendar.MustParseDate("2024-03-10"),
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(same) != 1 || same[0].ID != "once" {
		t.Fatalf("expected only the original instance, got %v", same)
	}
}
