package reminders

import (
	"time"

	"pet-reminders/internal/domain/calendar"
)

const (
	PassExpand  = "recurrence_expand"
	PassSweep   = "expiration_sweep"
	PassFeeding = "feeding_window"
)

// PassResult resume una ejecución de un pase.
type PassResult struct {
	Pass       string    `json:"pass"`
	Today      string    `json:"today"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Scanned    int `json:"scanned"`
	Created    int `json:"created"`
	Existing   int `json:"existing"`
	Updated    int `json:"updated"`
	Deleted    int `json:"deleted"`
	Terminated int `json:"terminated"`
	Skipped    int `json:"skipped"`
	Errored    int `json:"errored"`

	Notified     int `json:"notified"`
	NotifyFailed int `json:"notify_failed"`
}

func newResult(pass string, now time.Time, today calendar.Date) PassResult {
	return PassResult{Pass: pass, Today: today.String(), StartedAt: now}
}

func (r *PassResult) notified(ok bool) {
	if ok {
		r.Notified++
	} else {
		r.NotifyFailed++
	}
}

// Merge suma contadores de otro pase (p.ej. el trigger diario = expand + sweep).
func (r PassResult) Merge(o PassResult) PassResult {
	r.Scanned += o.Scanned
	r.Created += o.Created
	r.Existing += o.Existing
	r.Updated += o.Updated
	r.Deleted += o.Deleted
	r.Terminated += o.Terminated
	r.Skipped += o.Skipped
	r.Errored += o.Errored
	r.Notified += o.Notified
	r.NotifyFailed += o.NotifyFailed
	if o.FinishedAt.After(r.FinishedAt) {
		r.FinishedAt = o.FinishedAt
	}
	return r
}

// Fields para logging estructurado.
func (r PassResult) Fields() map[string]any {
	return map[string]any{
		"pass":          r.Pass,
		"today":         r.Today,
		"scanned":       r.Scanned,
		"created":       r.Created,
		"existing":      r.Existing,
		"updated":       r.Updated,
		"deleted":       r.Deleted,
		"terminated":    r.Terminated,
		"skipped":       r.Skipped,
		"errored":       r.Errored,
		"notified":      r.Notified,
		"notify_failed": r.NotifyFailed,
	}
}
