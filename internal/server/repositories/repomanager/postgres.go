package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Skandeerkefi/luckywData/internal/dbx"
	"github.com/Skandeerkefi/luckywData/internal/server/migrations"
	"github.com/Skandeerkefi/luckywData/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories over one
// connection pool.
type PostgresRepositoryManager struct {
	db    *sql.DB
	users *users.PostgresRepository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager migrates db and wraps it. The manager takes
// ownership of db.
func NewPostgresRepositoryManager(ctx context.Context, db *sql.DB) (*PostgresRepositoryManager, error) {
	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return &PostgresRepositoryManager{db: db, users: users.NewPostgresRepository(db)}, nil
}

// OpenPostgresRepositoryManager connects to dsn, then behaves like
// NewPostgresRepositoryManager.
func OpenPostgresRepositoryManager(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := dbx.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}

	m, err := NewPostgresRepositoryManager(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
