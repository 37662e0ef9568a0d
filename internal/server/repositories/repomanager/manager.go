// Package repomanager selects and owns the credential store backend.
package repomanager

import (
	"context"

	"github.com/Skandeerkefi/luckywData/internal/server/repositories/users"
)

// RepositoryManager vends the repositories of one storage backend and
// releases its resources on Close.
type RepositoryManager interface {
	Users() users.Repository
	Close() error
}

// New returns the in-memory manager when dsn is empty and a migrated
// PostgreSQL manager otherwise.
func New(ctx context.Context, dsn string) (RepositoryManager, error) {
	if dsn == "" {
		return NewInMemoryRepositoryManager(), nil
	}
	return OpenPostgresRepositoryManager(ctx, dsn)
}

// InMemoryRepositoryManager keeps everything in process memory; the store
// starts empty on every start.
type InMemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
