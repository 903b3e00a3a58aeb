package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"pet-reminders/internal/adapters/storage/sqlstore"
)

//go:embed schema.sql
var schema string

// Open abre la base (archivo o ":memory:") con foreign keys activas.
// Una sola conexión: sqlite serializa escrituras y ":memory:" es por conexión.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = ":memory:"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return db, nil
}

func Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{
		Name:              "sqlite",
		Bind:              func(int) string { return "?" },
		TimeColumn:        timeColumn,
		IsUniqueViolation: IsUniqueViolation,
		Schema:            schema,
	}
}

// timeColumn normaliza la hora guardada como texto: time('18:00') = '18:00:00',
// y NULL si no es una hora válida.
func timeColumn(col string) string {
	return "time(" + col + ")"
}

func IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// NewStore abre y migra siempre (el esquema es idempotente).
func NewStore(ctx context.Context, path string, timeout time.Duration) (*sqlstore.Store, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	st := sqlstore.New(db, Dialect(), timeout)
	if err := st.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}
