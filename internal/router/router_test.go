package router_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mem "pet-reminders/internal/adapters/storage/memory"
	"pet-reminders/internal/domain/calendar"
	"pet-reminders/internal/domain/pets"
	"pet-reminders/internal/domain/reminders"
	"pet-reminders/internal/router"
	"pet-reminders/internal/scheduler"
)

type fixture struct {
	ts    *httptest.Server
	petID string
	repo  reminders.Repository
}

func newFixture(t *testing.T, run scheduler.Runner) fixture {
	t.Helper()
	ctx := context.Background()

	petsSvc := pets.NewService(mem.NewPetRepo())
	p, err := petsSvc.Create(ctx, "owner-1", pets.CreateInput{
		Name:       "Milo",
		Species:    pets.SpeciesDog,
		OwnerName:  "Ana",
		OwnerEmail: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	repo := mem.NewReminderRepo()
	remSvc := reminders.NewService(repo, reminders.Options{Calendar: calendar.New(time.UTC)})
	if run == nil {
		run = scheduler.New(remSvc, scheduler.Config{
			Location:         time.UTC,
			DailyCron:        "1 0 * * *",
			PeriodicInterval: time.Minute,
			PassTimeout:      time.Minute,
		}, nil)
	}

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Pets:      petsSvc,
		Reminders: remSvc,
		Scheduler: run,
		Now:       func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) },
	}))
	t.Cleanup(ts.Close)
	return fixture{ts: ts, petID: p.ID, repo: repo}
}

func TestHTTP_Health(t *testing.T) {
	f := newFixture(t, nil)
	st, body := doReq(t, f.ts.URL, http.MethodGet, "/health", "")
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health: %d %s", st, body)
	}
}

func TestHTTP_PetsOwnerOnly(t *testing.T) {
	f := newFixture(t, nil)

	if st, _ := doReq(t, f.ts.URL, http.MethodGet, "/pets", ""); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", st)
	}

	st, body := doReq(t, f.ts.URL, http.MethodGet, "/pets", "owner-1")
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, body)
	}
	var list []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	_ = json.Unmarshal(body, &list)
	if len(list) != 1 || list[0].ID != f.petID {
		t.Fatalf("unexpected list: %s", body)
	}

	if st, _ := doReq(t, f.ts.URL, http.MethodGet, "/pets/"+f.petID, "stranger"); st != http.StatusForbidden {
		t.Fatalf("expected 403 for non owner, got %d", st)
	}
	if st, _ := doReq(t, f.ts.URL, http.MethodGet, "/pets/nope", "owner-1"); st != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown pet, got %d", st)
	}
}

func TestHTTP_ReminderFeed(t *testing.T) {
	f := newFixture(t, nil)
	err := f.repo.Create(context.Background(), reminders.Reminder{
		ID:              "r1",
		PetID:           f.petID,
		Type:            reminders.TypeVaccination,
		VaccinationType: "Rabies",
		ReminderDate:    calendar.MustParseDate("2024-03-15"),
		Frequency:       calendar.FrequencyMonthly,
		Status:          reminders.StatusPending,
		CreatedAt:       time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	path := "/pets/" + f.petID + "/reminders.ics"
	if st, _ := doReq(t, f.ts.URL, http.MethodGet, path, ""); st != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", st)
	}
	if st, _ := doReq(t, f.ts.URL, http.MethodGet, path, "stranger"); st != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", st)
	}
	if st, _ := doReq(t, f.ts.URL, http.MethodGet, "/pets/nope/reminders.ics", "owner-1"); st != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", st)
	}

	st, body := doReq(t, f.ts.URL, http.MethodGet, path, "owner-1")
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, body)
	}
	out := string(body)
	for _, want := range []string{"BEGIN:VCALENDAR", "Vaccination: Rabies - Milo", "FREQ=MONTHLY", "r1@petcare"} {
		if !strings.Contains(out, want) {
			t.Fatalf("feed missing %q:\n%s", want, out)
		}
	}
}

func TestHTTP_SchedulerRunNow(t *testing.T) {
	f := newFixture(t, nil)

	st, body := doReq(t, f.ts.URL, http.MethodPost, "/scheduler/daily/run", "")
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, body)
	}
	var rep scheduler.RunReport
	if err := json.Unmarshal(body, &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Trigger != scheduler.TriggerDaily || len(rep.Passes) != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	if st, _ := doReq(t, f.ts.URL, http.MethodPost, "/scheduler/hourly/run", ""); st != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown trigger, got %d", st)
	}

	st, body = doReq(t, f.ts.URL, http.MethodGet, "/scheduler/runs", "")
	var runs []scheduler.RunReport
	_ = json.Unmarshal(body, &runs)
	if st != http.StatusOK || len(runs) != 1 || runs[0].Trigger != scheduler.TriggerDaily {
		t.Fatalf("unexpected runs: %d %s", st, body)
	}
}

type busyRunner struct{}

func (busyRunner) RunNow(context.Context, scheduler.Trigger) (scheduler.RunReport, error) {
	return scheduler.RunReport{}, scheduler.ErrBusy
}
func (busyRunner) Runs() []scheduler.RunReport { return nil }

func TestHTTP_SchedulerBusy(t *testing.T) {
	f := newFixture(t, busyRunner{})
	if st, _ := doReq(t, f.ts.URL, http.MethodPost, "/scheduler/periodic/run", ""); st != http.StatusConflict {
		t.Fatalf("expected 409, got %d", st)
	}
}

func TestHTTP_SwaggerDoc(t *testing.T) {
	f := newFixture(t, nil)
	st, body := doReq(t, f.ts.URL, http.MethodGet, "/swagger/doc.json", "")
	if st != http.StatusOK || !strings.Contains(string(body), "/scheduler/runs") {
		t.Fatalf("unexpected swagger doc: %d", st)
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
