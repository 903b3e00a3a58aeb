// Package sqlstore implementa los repositorios sobre database/sql.
// El SQL es común; lo que cambia entre postgres y sqlite vive en Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-reminders/internal/domain/pets"
	"pet-reminders/internal/domain/reminders"
)

// Dialect describe las diferencias de motor.
type Dialect struct {
	Name string

	// Bind devuelve el placeholder del argumento n (desde 1).
	Bind func(n int) string

	// TimeColumn adapta la lectura de una columna de hora a "HH:MM:SS".
	TimeColumn func(col string) string

	IsUniqueViolation func(err error) bool

	Schema string
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
}

// New: timeout > 0 acota cada operación contra la base.
func New(db *sql.DB, d Dialect, timeout time.Duration) *Store {
	if d.TimeColumn == nil {
		d.TimeColumn = func(col string) string { return col }
	}
	if d.IsUniqueViolation == nil {
		d.IsUniqueViolation = func(error) bool { return false }
	}
	return &Store{db: db, dialect: d, timeout: timeout}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() string { return s.dialect.Name }

// Migrate aplica el esquema (idempotente: todo es IF NOT EXISTS).
func (s *Store) Migrate(ctx context.Context) error {
	if strings.TrimSpace(s.dialect.Schema) == "" {
		return errors.New("sqlstore: empty schema")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, s.dialect.Schema); err != nil {
		return fmt.Errorf("sqlstore: migrate %s: %w", s.dialect.Name, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Reminders() reminders.Repository { return &RemindersRepo{s: s} }

func (s *Store) Pets() pets.Repository { return &PetsRepo{s: s} }

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// query acumula condiciones y argumentos con los placeholders del dialecto.
type query struct {
	d     Dialect
	args  []any
	conds []string
}

func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return q.d.Bind(len(q.args))
}

func (q *query) where(cond string) {
	q.conds = append(q.conds, cond)
}

func (q *query) whereSQL() string {
	if len(q.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conds, " AND ")
}

// timestamp escanea created_at venga como time.Time (postgres) o texto (sqlite).
type timestamp struct{ t time.Time }

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.t = time.Time{}
	case time.Time:
		ts.t = v
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("sqlstore: cannot scan %T into timestamp", src)
	}
	return nil
}

func (ts *timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		ts.t = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			ts.t = t
			return nil
		}
	}
	// created_at ilegible no invalida el registro
	ts.t = time.Time{}
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
