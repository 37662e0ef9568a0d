package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Skandeerkefi/luckywData/internal/common"
	"github.com/Skandeerkefi/luckywData/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*kick_username,\s*rainbet_username,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at\s*$`
	byKickQuery = `(?s)^SELECT\s+id,\s*kick_username,\s*rainbet_username,\s*password_hash,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+kick_username\s*=\s*\$1\s*$`
	byRainQuery = `(?s)^SELECT\s+id,\s*kick_username,\s*rainbet_username,\s*password_hash,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+rainbet_username\s*=\s*\$1\s*$`
)

var userColumns = []string{"id", "kick_username", "rainbet_username", "password_hash", "role", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertQuery).
		WithArgs("u1", "alice", "alice_r", "hash", "user").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	got, err := repo.Create(context.Background(), newUser("u1", "alice", "alice_r"))
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("u1", "alice", "alice_r", "hash", "user").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_kick_username_key"})

	_, err := repo.Create(context.Background(), newUser("u1", "alice", "alice_r"))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestPostgresCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("u1", "alice", "alice_r", "hash", "user").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), newUser("u1", "alice", "alice_r"))
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestPostgresGetByKickUsername(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(byKickQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "alice", "alice_r", "hash", "admin", created))

	got, err := repo.GetByKickUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.User{
		ID: "u1", KickUsername: "alice", RainbetUsername: "alice_r",
		PasswordHash: "hash", Role: models.RoleAdmin, CreatedAt: created,
	}, got)
}

func TestPostgresGetByRainbetUsername_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(byRainQuery).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByRainbetUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresGetByKickUsername_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(byKickQuery).WithArgs("alice").WillReturnError(errors.New("db err"))

	_, err := repo.GetByKickUsername(context.Background(), "alice")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db err`, err.Error())
}
