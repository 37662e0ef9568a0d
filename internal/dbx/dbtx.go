// Package dbx provides small database helpers shared by the SQL-backed
// repositories: the DBTX interface and a connection opener that waits for
// the database to come up.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Pinger is implemented by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnectBackoff is the default retry schedule for WaitReady: exponential
// from 200ms, at most 6 retries.
func ConnectBackoff() retry.Backoff {
	return retry.WithMaxRetries(6, retry.NewExponential(200*time.Millisecond))
}

// WaitReady pings db until it answers or the backoff is exhausted.
func WaitReady(ctx context.Context, db Pinger, b retry.Backoff) error {
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// OpenPostgres opens a pgx-backed *sql.DB for dsn and waits until it is
// reachable.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := WaitReady(ctx, db, ConnectBackoff()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return db, nil
}
