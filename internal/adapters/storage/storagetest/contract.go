// Package storagetest tiene las pruebas de contrato que todo store debe pasar.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pet-reminders/internal/domain/calendar"
	"pet-reminders/internal/domain/pets"
	"pet-reminders/internal/domain/reminders"
)

// Stores es lo que cada implementación entrega a las pruebas.
type Stores struct {
	Reminders reminders.Repository
	Pets      pets.Repository

	// SeedMalformed guarda un reminder pending, no recurrente, con
	// reminder_date ilegible. nil si el store no puede representarlo.
	SeedMalformed func(t *testing.T, id, petID string)
}

// RunContract corre el contrato contra un store fresco por subtest.
func RunContract(t *testing.T, open func(t *testing.T) Stores) {
	t.Helper()

	t.Run("create and find one", func(t *testing.T) { testCreateFind(t, open(t)) })
	t.Run("pending uniqueness", func(t *testing.T) { testUniqueness(t, open(t)) })
	t.Run("guarded update", func(t *testing.T) { testGuardedUpdate(t, open(t)) })
	t.Run("date filters", func(t *testing.T) { testDateFilters(t, open(t)) })
	t.Run("delete where", func(t *testing.T) { testDeleteWhere(t, open(t)) })
	t.Run("pets with owner contact", func(t *testing.T) { testPets(t, open(t)) })
	t.Run("malformed rows survive passes", func(t *testing.T) { testMalformedSurvives(t, open(t)) })
}

// SeedPet crea una mascota con dueño; los reminders la referencian.
func SeedPet(t *testing.T, repo pets.Repository, id string) pets.Pet {
	t.Helper()
	p := pets.Pet{
		ID:          id,
		OwnerUserID: "owner-" + id,
		OwnerName:   "Owner " + id,
		OwnerEmail:  id + "@example.com",
		Name:        "Pet " + id,
		Species:     pets.SpeciesDog,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed pet %s: %v", id, err)
	}
	return p
}

func reminder(id, petID, date string, f calendar.Frequency) reminders.Reminder {
	return reminders.Reminder{
		ID:           id,
		PetID:        petID,
		Type:         reminders.TypeVaccination,
		ReminderDate: calendar.MustParseDate(date),
		Frequency:    f,
		Status:       reminders.StatusPending,
		CreatedAt:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func feeding(id, petID, date, clock string) reminders.Reminder {
	r := reminder(id, petID, date, calendar.FrequencyNone)
	r.Type = reminders.TypeFeeding
	r.FeedingTime = calendar.MustParseTimeOfDay(clock)
	return r
}

func mustCreate(t *testing.T, repo reminders.Repository, items ...reminders.Reminder) {
	t.Helper()
	for _, it := range items {
		if err := repo.Create(context.Background(), it); err != nil {
			t.Fatalf("create %s: %v", it.ID, err)
		}
	}
}

func ids(items []reminders.Reminder) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func testCreateFind(t *testing.T, s Stores) {
	ctx := context.Background()
	SeedPet(t, s.Pets, "p1")

	in := reminder("r1", "p1", "2024-03-10", calendar.FrequencyMonthly)
	in.VaccinationType = "Rabies"
	in.EndDate = calendar.MustParseDate("2024-12-31")
	in.IsRead = true
	mustCreate(t, s.Reminders, in)

	got, err := s.Reminders.FindOne(ctx, reminders.Filter{ID: "r1"})
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	cmpOpts := cmp.Options{
		cmp.Comparer(func(a, b calendar.Date) bool { return a.String() == b.String() }),
		cmp.Comparer(func(a, b calendar.TimeOfDay) bool { return a.String() == b.String() }),
		cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) }),
	}
	if diff := cmp.Diff(in, got, cmpOpts); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Reminders.FindOne(ctx, reminders.Filter{ID: "missing"}); !errors.Is(err, reminders.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	f := feeding("f1", "p1", "2024-03-10", "18:00")
	mustCreate(t, s.Reminders, f)
	got, err = s.Reminders.FindOne(ctx, reminders.Filter{FeedingTime: calendar.MustParseTimeOfDay("18:00:00")})
	if err != nil || got.ID != "f1" {
		t.Fatalf("find by feeding_time: %v %+v", err, got)
	}
}

func testUniqueness(t *testing.T, s Stores) {
	SeedPet(t, s.Pets, "p1")

	mustCreate(t, s.Reminders, reminder("a", "p1", "2024-03-10", calendar.FrequencyWeekly))
	err := s.Reminders.Create(context.Background(), reminder("b", "p1", "2024-03-10", calendar.FrequencyWeekly))
	if !errors.Is(err, reminders.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	done := reminder("c", "p1", "2024-03-10", calendar.FrequencyWeekly)
	done.Status = reminders.StatusDone
	mustCreate(t, s.Reminders, done)

	// misma comida, otra hora: son ocurrencias distintas
	mustCreate(t, s.Reminders,
		feeding("f1", "p1", "2024-03-10", "08:00"),
		feeding("f2", "p1", "2024-03-10", "18:00"),
	)
	if err := s.Reminders.Create(context.Background(), feeding("f3", "p1", "2024-03-10", "18:00")); !errors.Is(err, reminders.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for same feeding slot, got %v", err)
	}
}

func testGuardedUpdate(t *testing.T, s Stores) {
	ctx := context.Background()
	SeedPet(t, s.Pets, "p1")
	mustCreate(t, s.Reminders, feeding("f1", "p1", "2024-03-10", "18:00"))

	read := true
	unread := false
	n, err := s.Reminders.UpdateWhere(ctx,
		reminders.Filter{ID: "f1", IsRead: &unread},
		reminders.Changes{IsRead: &read},
	)
	if err != nil || n != 1 {
		t.Fatalf("first flip: n=%d err=%v", n, err)
	}
	n, err = s.Reminders.UpdateWhere(ctx,
		reminders.Filter{ID: "f1", IsRead: &unread},
		reminders.Changes{IsRead: &read},
	)
	if err != nil || n != 0 {
		t.Fatalf("second flip must be a no-op: n=%d err=%v", n, err)
	}

	done := reminders.StatusDone
	n, err = s.Reminders.UpdateWhere(ctx,
		reminders.Filter{ID: "f1", Status: reminders.StatusPending},
		reminders.Changes{Status: &done},
	)
	if err != nil || n != 1 {
		t.Fatalf("mark done: n=%d err=%v", n, err)
	}
	got, _ := s.Reminders.FindOne(ctx, reminders.Filter{ID: "f1"})
	if got.Status != reminders.StatusDone || !got.IsRead {
		t.Fatalf("unexpected state after updates: %+v", got)
	}

	// al dejar de ser pending libera la clave única
	mustCreate(t, s.Reminders, feeding("f2", "p1", "2024-03-10", "18:00"))
}

func testDateFilters(t *testing.T, s Stores) {
	ctx := context.Background()
	SeedPet(t, s.Pets, "p1")

	ended := reminder("ended", "p1", "2024-03-01", calendar.FrequencyDaily)
	ended.EndDate = calendar.MustParseDate("2024-03-05")
	open := reminder("open", "p1", "2024-03-01", calendar.FrequencyDaily)
	open.Type = reminders.TypeGrooming
	future := reminder("future", "p1", "2024-03-11", calendar.FrequencyDaily)
	future.Type = reminders.TypeMedication
	once := reminder("once", "p1", "2024-03-10", calendar.FrequencyNone)
	mustCreate(t, s.Reminders, ended, open, future, once)

	today := calendar.MustParseDate("2024-03-10")
	cases := []struct {
		name string
		f    reminders.Filter
		want []string
	}{
		{"due on or before", reminders.Filter{DueOnOrBefore: today}, []string{"ended", "open", "once"}},
		{"due before", reminders.Filter{DueBefore: today}, []string{"ended", "open"}},
		{"active on", reminders.Filter{ActiveOn: today, Frequency: calendar.FrequencyDaily}, []string{"open", "future"}},
		{"exclude frequency", reminders.Filter{ExcludeFrequency: calendar.FrequencyNone, ExcludeType: reminders.TypeMedication}, []string{"ended", "open"}},
		{"exact date", reminders.Filter{ReminderDate: today}, []string{"once"}},
		{"within end date", reminders.Filter{WithinEndDate: true, Type: reminders.TypeVaccination}, []string{"ended", "once"}},
	}
	for _, tc := range cases {
		got, err := s.Reminders.Find(ctx, tc.f)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if diff := cmp.Diff(tc.want, ids(got)); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", tc.name, diff)
		}
	}
}

func testDeleteWhere(t *testing.T, s Stores) {
	ctx := context.Background()
	SeedPet(t, s.Pets, "p1")

	for i := 1; i <= 3; i++ {
		mustCreate(t, s.Reminders, reminder(fmt.Sprintf("old-%d", i), "p1", fmt.Sprintf("2024-03-0%d", i), calendar.FrequencyNone))
	}
	mustCreate(t, s.Reminders, reminder("today", "p1", "2024-03-10", calendar.FrequencyNone))

	n, err := s.Reminders.DeleteWhere(ctx, reminders.Filter{
		Frequency: calendar.FrequencyNone,
		DueBefore: calendar.MustParseDate("2024-03-10"),
	})
	if err != nil || n != 3 {
		t.Fatalf("delete: n=%d err=%v", n, err)
	}
	left, _ := s.Reminders.Find(ctx, reminders.Filter{})
	if diff := cmp.Diff([]string{"today"}, ids(left)); diff != "" {
		t.Fatalf("survivors (-want +got):\n%s", diff)
	}
}

func testPets(t *testing.T, s Stores) {
	ctx := context.Background()
	want := SeedPet(t, s.Pets, "p1")

	got, err := s.Pets.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerEmail != want.OwnerEmail || got.Name != want.Name || got.OwnerUserID != want.OwnerUserID {
		t.Fatalf("unexpected pet: %+v", got)
	}
	if _, err := s.Pets.GetByID(ctx, "nope"); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected pets.ErrNotFound, got %v", err)
	}
	list, err := s.Pets.ListByOwner(ctx, want.OwnerUserID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
}

func testMalformedSurvives(t *testing.T, s Stores) {
	if s.SeedMalformed == nil {
		t.Skip("store cannot hold a malformed reminder_date")
	}
	ctx := context.Background()
	SeedPet(t, s.Pets, "p1")
	s.SeedMalformed(t, "bad", "p1")
	mustCreate(t, s.Reminders, reminder("old", "p1", "2024-03-08", calendar.FrequencyNone))

	svc := reminders.NewService(s.Reminders, reminders.Options{Calendar: calendar.New(time.UTC)})
	now := time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC)

	res, err := svc.SweepExpired(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Deleted != 1 {
		t.Fatalf("expected only the valid expired reminder deleted, got %+v", res)
	}
	if _, err := s.Reminders.FindOne(ctx, reminders.Filter{ID: "bad"}); err != nil {
		t.Fatalf("malformed reminder must survive the sweep: %v", err)
	}
	if _, err := s.Reminders.FindOne(ctx, reminders.Filter{ID: "old"}); !errors.Is(err, reminders.ErrNotFound) {
		t.Fatalf("expired reminder must be gone, got %v", err)
	}
}
