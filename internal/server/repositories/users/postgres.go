package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Skandeerkefi/luckywData/internal/common"
	"github.com/Skandeerkefi/luckywData/internal/dbx"
	"github.com/Skandeerkefi/luckywData/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository is the durable Repository. Uniqueness is enforced by
// the unique constraints on both handle columns, so Create is a single
// atomic INSERT.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, kick_username, rainbet_username, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	out := *user
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.KickUsername, user.RainbetUsername, user.PasswordHash, string(user.Role)).Scan(&out.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &out, nil
}

func (r *PostgresRepository) GetByKickUsername(ctx context.Context, kickUsername string) (*models.User, error) {
	query :=
		`SELECT id, kick_username, rainbet_username, password_hash, role, created_at FROM users
		 WHERE kick_username = $1
		 `
	return r.getOne(ctx, query, kickUsername)
}

func (r *PostgresRepository) GetByRainbetUsername(ctx context.Context, rainbetUsername string) (*models.User, error) {
	query :=
		`SELECT id, kick_username, rainbet_username, password_hash, role, created_at FROM users
		 WHERE rainbet_username = $1
		 `
	return r.getOne(ctx, query, rainbetUsername)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	var role string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.KickUsername, &user.RainbetUsername, &user.PasswordHash, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Role = models.Role(role)
	return user, nil
}
