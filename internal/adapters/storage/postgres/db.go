package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"pet-reminders/internal/adapters/storage/sqlstore"
)

//go:embed schema.sql
var schema string

// uniqueViolation es SQLSTATE 23505.
const uniqueViolation = "23505"

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables para un proceso batch + API chica
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return db, nil
}

// Dialect de postgres para sqlstore.
func Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{
		Name: "postgres",
		Bind: func(n int) string { return fmt.Sprintf("$%d", n) },
		TimeColumn: func(col string) string {
			return "to_char(" + col + ", 'HH24:MI:SS')"
		},
		IsUniqueViolation: IsUniqueViolation,
		Schema:            schema,
	}
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// NewStore abre, opcionalmente migra, y devuelve el store listo.
func NewStore(ctx context.Context, dsn string, migrate bool, timeout time.Duration) (*sqlstore.Store, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	st := sqlstore.New(db, Dialect(), timeout)
	if migrate {
		if err := st.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return st, nil
}
