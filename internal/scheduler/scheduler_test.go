package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"pet-reminders/internal/domain/reminders"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePasses struct {
	mu    sync.Mutex
	calls []string

	expandErr error
	block     chan struct{} // si no es nil, ManageFeeding espera
	started   chan struct{}
	deadline  bool
}

func (f *fakePasses) note(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakePasses) ExpandRecurring(ctx context.Context, now time.Time) (reminders.PassResult, error) {
	f.note("expand")
	_, f.deadline = ctx.Deadline()
	return reminders.PassResult{Pass: reminders.PassExpand, Created: 2}, f.expandErr
}

func (f *fakePasses) SweepExpired(ctx context.Context, now time.Time) (reminders.PassResult, error) {
	f.note("sweep")
	return reminders.PassResult{Pass: reminders.PassSweep, Deleted: 1}, nil
}

func (f *fakePasses) ManageFeeding(ctx context.Context, now time.Time) (reminders.PassResult, error) {
	f.note("feeding")
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return reminders.PassResult{Pass: reminders.PassFeeding}, nil
}

func (f *fakePasses) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func testConfig() Config {
	return Config{
		Location:         time.UTC,
		DailyCron:        "1 0 * * *",
		PeriodicInterval: time.Hour,
		PassTimeout:      time.Minute,
	}
}

func TestRunNow_DailyRunsExpandThenSweep(t *testing.T) {
	fp := &fakePasses{}
	d := New(fp, testConfig(), nil)
	fixed := time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	rep, err := d.RunNow(context.Background(), TriggerDaily)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rep.Passes) != 2 || rep.Passes[0].Pass != reminders.PassExpand || rep.Passes[1].Pass != reminders.PassSweep {
		t.Fatalf("unexpected passes: %+v", rep.Passes)
	}
	if rep.Total.Created != 2 || rep.Total.Deleted != 1 {
		t.Fatalf("total must merge both passes: %+v", rep.Total)
	}
	if !rep.StartedAt.Equal(fixed) {
		t.Fatalf("report must use the injected clock")
	}
	if !fp.deadline {
		t.Fatalf("passes must run under the pass timeout")
	}
	runs := d.Runs()
	if len(runs) != 1 || runs[0].Trigger != TriggerDaily {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	wantNext := time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC)
	if !runs[0].NextRun.Equal(wantNext) {
		t.Fatalf("next run = %v, want %v", runs[0].NextRun, wantNext)
	}
}

func TestRunNow_SweepRunsEvenIfExpansionFails(t *testing.T) {
	fp := &fakePasses{expandErr: errors.New("store down")}
	d := New(fp, testConfig(), nil)

	rep, err := d.RunNow(context.Background(), TriggerDaily)
	if err == nil || rep.Error == "" {
		t.Fatalf("expected the expansion error to surface")
	}
	if fp.count("sweep") != 1 {
		t.Fatalf("sweep must still run")
	}
}

func TestRunNow_SameTriggerNeverOverlaps(t *testing.T) {
	fp := &fakePasses{block: make(chan struct{}), started: make(chan struct{}, 1)}
	d := New(fp, testConfig(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := d.RunNow(context.Background(), TriggerPeriodic)
		done <- err
	}()
	<-fp.started

	if _, err := d.RunNow(context.Background(), TriggerPeriodic); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	// otro trigger no se bloquea
	if _, err := d.RunNow(context.Background(), TriggerDaily); err != nil {
		t.Fatalf("daily must not be blocked by periodic: %v", err)
	}

	close(fp.block)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
	if fp.count("feeding") != 1 {
		t.Fatalf("expected exactly one feeding pass, got %d", fp.count("feeding"))
	}
}

func TestRunNow_UnknownTrigger(t *testing.T) {
	d := New(&fakePasses{}, testConfig(), nil)
	if _, err := d.RunNow(context.Background(), Trigger("hourly")); !errors.Is(err, ErrUnknownTrigger) {
		t.Fatalf("expected ErrUnknownTrigger, got %v", err)
	}
	if _, err := ParseTrigger("nope"); !errors.Is(err, ErrUnknownTrigger) {
		t.Fatalf("expected ErrUnknownTrigger from ParseTrigger")
	}
}

func TestStart_RunsPeriodicOnStartAndShutsDownClean(t *testing.T) {
	fp := &fakePasses{started: make(chan struct{}, 1)}
	cfg := testConfig()
	cfg.RunOnStart = true
	d := New(fp, cfg, nil)

	if err := d.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case <-fp.started:
	case <-time.After(5 * time.Second):
		t.Fatalf("periodic job did not run on start")
	}
	if err := d.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestStart_RejectsBadCron(t *testing.T) {
	cfg := testConfig()
	cfg.DailyCron = "not a cron"
	d := New(&fakePasses{}, cfg, nil)
	if err := d.Start(); err == nil {
		_ = d.Shutdown()
		t.Fatalf("expected invalid cron to fail")
	}
}
