// Package scheduler dispara los pases del motor de reminders con gocron.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"

	"pet-reminders/internal/domain/reminders"
	"pet-reminders/internal/platform/logger"
)

type Trigger string

const (
	TriggerDaily    Trigger = "daily"    // expansión + barrido
	TriggerPeriodic Trigger = "periodic" // ventana de feeding
)

var (
	ErrBusy           = errors.New("trigger already running")
	ErrUnknownTrigger = errors.New("unknown trigger")
)

// Passes son los pases que el driver sabe disparar (reminders.Service).
type Passes interface {
	ExpandRecurring(ctx context.Context, now time.Time) (reminders.PassResult, error)
	SweepExpired(ctx context.Context, now time.Time) (reminders.PassResult, error)
	ManageFeeding(ctx context.Context, now time.Time) (reminders.PassResult, error)
}

type Config struct {
	Location         *time.Location
	DailyCron        string
	PeriodicInterval time.Duration
	PassTimeout      time.Duration
	RunOnStart       bool
}

// RunReport es el resultado de una ejecución de un trigger.
type RunReport struct {
	Trigger    Trigger                `json:"trigger"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	Passes     []reminders.PassResult `json:"passes"`
	Total      reminders.PassResult   `json:"total"`
	Error      string                 `json:"error,omitempty"`
	NextRun    time.Time              `json:"next_run,omitempty"`
}

type Driver struct {
	passes Passes
	cfg    Config
	log    logger.Logger
	now    func() time.Time

	locks map[Trigger]*sync.Mutex

	mu   sync.RWMutex
	last map[Trigger]RunReport

	sched gocron.Scheduler
	jobs  map[Trigger]gocron.Job
}

func New(passes Passes, cfg Config, log logger.Logger) *Driver {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Driver{
		passes: passes,
		cfg:    cfg,
		log:    log.With(map[string]any{"component": "scheduler"}),
		now:    time.Now,
		locks: map[Trigger]*sync.Mutex{
			TriggerDaily:    {},
			TriggerPeriodic: {},
		},
		last: map[Trigger]RunReport{},
		jobs: map[Trigger]gocron.Job{},
	}
}

// Start registra los dos jobs y arranca gocron.
// Singleton + reschedule: si un pase sigue corriendo, el tick se salta.
func (d *Driver) Start() error {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(d.cfg.Location),
		gocron.WithLogger(gocronLogger{d.log}),
	)
	if err != nil {
		return fmt.Errorf("scheduler: new: %w", err)
	}

	daily, err := s.NewJob(
		gocron.CronJob(d.cfg.DailyCron, false),
		gocron.NewTask(d.runScheduled, TriggerDaily),
		gocron.WithName(string(TriggerDaily)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("scheduler: daily job: %w", err)
	}

	periodicOpts := []gocron.JobOption{
		gocron.WithName(string(TriggerPeriodic)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if d.cfg.RunOnStart {
		periodicOpts = append(periodicOpts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}
	periodic, err := s.NewJob(
		gocron.DurationJob(d.cfg.PeriodicInterval),
		gocron.NewTask(d.runScheduled, TriggerPeriodic),
		periodicOpts...,
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("scheduler: periodic job: %w", err)
	}

	d.mu.Lock()
	d.sched = s
	d.jobs[TriggerDaily] = daily
	d.jobs[TriggerPeriodic] = periodic
	d.mu.Unlock()

	s.Start()
	d.log.Info("scheduler started", map[string]any{
		"timezone":          d.cfg.Location.String(),
		"daily_cron":        d.cfg.DailyCron,
		"periodic_interval": d.cfg.PeriodicInterval.String(),
	})
	return nil
}

// Shutdown detiene gocron y espera los jobs en curso.
func (d *Driver) Shutdown() error {
	d.mu.Lock()
	s := d.sched
	d.sched = nil
	d.jobs = map[Trigger]gocron.Job{}
	d.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Shutdown()
}

func (d *Driver) runScheduled(t Trigger) {
	if _, err := d.RunNow(context.Background(), t); err != nil && !errors.Is(err, ErrBusy) {
		d.log.Error("scheduled run failed", map[string]any{"trigger": string(t), "error": err})
	}
}

// RunNow ejecuta un trigger ya (cron o endpoint de ops).
// Dos ejecuciones del mismo trigger nunca se solapan: la segunda recibe ErrBusy.
func (d *Driver) RunNow(ctx context.Context, t Trigger) (rep RunReport, err error) {
	lock, ok := d.locks[t]
	if !ok {
		return RunReport{}, fmt.Errorf("%w: %q", ErrUnknownTrigger, t)
	}
	if !lock.TryLock() {
		return RunReport{}, ErrBusy
	}
	defer lock.Unlock()

	if d.cfg.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.PassTimeout)
		defer cancel()
	}

	now := d.now()
	rep = RunReport{Trigger: t, StartedAt: now}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scheduler: %s panicked: %v", t, p)
		}
		rep.FinishedAt = d.now()
		rep.Total = reminders.PassResult{Pass: string(t), StartedAt: rep.StartedAt}
		for _, p := range rep.Passes {
			rep.Total = rep.Total.Merge(p)
		}
		if err != nil {
			rep.Error = err.Error()
		}
		d.record(rep)
	}()

	var errs []error
	switch t {
	case TriggerDaily:
		// el barrido corre aunque la expansión falle
		res, e := d.passes.ExpandRecurring(ctx, now)
		rep.Passes = append(rep.Passes, res)
		errs = append(errs, e)

		res, e = d.passes.SweepExpired(ctx, now)
		rep.Passes = append(rep.Passes, res)
		errs = append(errs, e)

	case TriggerPeriodic:
		res, e := d.passes.ManageFeeding(ctx, now)
		rep.Passes = append(rep.Passes, res)
		errs = append(errs, e)
	}

	err = errors.Join(errs...)
	return rep, err
}

func (d *Driver) record(rep RunReport) {
	d.mu.Lock()
	d.last[rep.Trigger] = rep
	d.mu.Unlock()

	fields := rep.Total.Fields()
	fields["trigger"] = string(rep.Trigger)
	fields["duration_ms"] = rep.FinishedAt.Sub(rep.StartedAt).Milliseconds()
	delete(fields, "pass")
	if rep.Error != "" {
		fields["error"] = rep.Error
		d.log.Error("trigger finished with errors", fields)
		return
	}
	d.log.Info("trigger finished", fields)
}

// Runs devuelve el último reporte de cada trigger (daily primero).
func (d *Driver) Runs() []RunReport {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]RunReport, 0, len(d.last))
	for _, t := range []Trigger{TriggerDaily, TriggerPeriodic} {
		if rep, ok := d.last[t]; ok {
			rep.NextRun = d.nextRunLocked(t)
			out = append(out, rep)
		}
	}
	return out
}

// nextRunLocked: gocron si el job está registrado; si no, el cron diario
// se calcula con robfig/cron. Cero cuando no se puede saber.
func (d *Driver) nextRunLocked(t Trigger) time.Time {
	if j, ok := d.jobs[t]; ok {
		if next, err := j.NextRun(); err == nil {
			return next
		}
	}
	if t != TriggerDaily {
		return time.Time{}
	}
	sched, err := cron.ParseStandard(d.cfg.DailyCron)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(d.now().In(d.cfg.Location))
}

// ParseTrigger valida el nombre que llega por HTTP.
func ParseTrigger(s string) (Trigger, error) {
	switch Trigger(s) {
	case TriggerDaily, TriggerPeriodic:
		return Trigger(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTrigger, s)
}

// gocronLogger adapta logger.Logger a gocron.Logger (args clave/valor).
type gocronLogger struct{ l logger.Logger }

func (g gocronLogger) Debug(msg string, args ...any) { g.l.Debug(msg, kv(args)) }
func (g gocronLogger) Info(msg string, args ...any)  { g.l.Info(msg, kv(args)) }
func (g gocronLogger) Warn(msg string, args ...any)  { g.l.Warn(msg, kv(args)) }
func (g gocronLogger) Error(msg string, args ...any) { g.l.Error(msg, kv(args)) }

func kv(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		if i+1 < len(args) {
			out[key] = args[i+1]
		} else {
			out[key] = nil
		}
	}
	return out
}
