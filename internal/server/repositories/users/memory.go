package users

import (
	"context"
	"sync"
	"time"

	"github.com/Skandeerkefi/luckywData/internal/common"
	"github.com/Skandeerkefi/luckywData/internal/server/models"
)

// MemoryRepository keeps users in process memory. Contents are lost on
// restart.
type MemoryRepository struct {
	mu        sync.RWMutex
	byKick    map[string]*models.User
	byRainbet map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byKick:    make(map[string]*models.User),
		byRainbet: make(map[string]*models.User),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := *user
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKick[stored.KickUsername]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.byRainbet[stored.RainbetUsername]; ok {
		return nil, common.ErrorAlreadyExists
	}

	r.byKick[stored.KickUsername] = &stored
	r.byRainbet[stored.RainbetUsername] = &stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetByKickUsername(ctx context.Context, kickUsername string) (*models.User, error) {
	return r.get(ctx, r.byKick, kickUsername)
}

func (r *MemoryRepository) GetByRainbetUsername(ctx context.Context, rainbetUsername string) (*models.User, error) {
	return r.get(ctx, r.byRainbet, rainbetUsername)
}

// Len reports the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKick)
}

func (r *MemoryRepository) get(ctx context.Context, index map[string]*models.User, key string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := index[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}
