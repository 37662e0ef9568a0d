// Package users stores registered accounts. Every backend enforces the two
// store-wide uniqueness invariants (kick username, rainbet username) inside
// Create, so concurrent registrations cannot both succeed.
package users

import (
	"context"

	"github.com/Skandeerkefi/luckywData/internal/server/models"
)

// Repository is the credential store.
//
// Lookups return common.ErrorNotFound when no record matches. Create returns
// common.ErrorAlreadyExists when either handle is already taken, and leaves
// the store unchanged in that case.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByKickUsername(ctx context.Context, kickUsername string) (*models.User, error)
	GetByRainbetUsername(ctx context.Context, rainbetUsername string) (*models.User, error)
}
