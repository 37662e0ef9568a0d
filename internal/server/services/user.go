// Package services contains server-side business logic. This file implements
// UserService, which registers accounts, verifies logins and issues session
// tokens.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/Skandeerkefi/luckywData/internal/common"
	"github.com/Skandeerkefi/luckywData/internal/logging"
	"github.com/Skandeerkefi/luckywData/internal/server/auth"
	"github.com/Skandeerkefi/luckywData/internal/server/models"
	"github.com/Skandeerkefi/luckywData/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// Error codes attached to UserService errors. The sentinel in
// internal/common is always reachable through errors.Is as well.
const (
	CodePasswordMismatch   = "AUTH_PASSWORD_MISMATCH"
	CodeInvalidInput       = "AUTH_INVALID_INPUT"
	CodeConflict           = "AUTH_CONFLICT"
	CodeUserNotFound       = "AUTH_USER_NOT_FOUND"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeInvalidToken       = "AUTH_INVALID_TOKEN"
	CodeInternal           = "AUTH_INTERNAL"
)

// RegisterInput is a registration request.
type RegisterInput struct {
	KickUsername    string
	RainbetUsername string
	Password        string
	ConfirmPassword string
}

// LoginResult is a successful login: a signed token and the public part of
// the account.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.PublicProfile
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint a session token
// - Authenticate: validate a session token presented by a client
type UserService struct {
	repo   users.Repository
	hasher auth.PasswordHasher
	issuer *auth.TokenIssuer
	logger logging.Logger
	newID  func() string
}

// NewUserService wires the credential store, hasher and token issuer.
func NewUserService(repo users.Repository, hasher auth.PasswordHasher, issuer *auth.TokenIssuer, logger logging.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		logger: logger.With("module", "user_service"),
		newID:  uuid.NewString,
	}
}

// Register creates a user with role "user". No token is issued; logging in
// is a separate step.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, oops.Code(CodePasswordMismatch).Wrap(common.ErrorValidation)
	}
	if in.KickUsername == "" || in.RainbetUsername == "" || in.Password == "" {
		return nil, oops.Code(CodeInvalidInput).Wrap(common.ErrorValidation)
	}

	taken, err := s.handleTaken(ctx, in.KickUsername, in.RainbetUsername)
	if err != nil {
		return nil, s.internal(ctx, "lookup handles", err)
	}
	if taken {
		return nil, oops.Code(CodeConflict).With("kick_username", in.KickUsername).Wrap(common.ErrorAlreadyExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	user := &models.User{
		ID:              s.newID(),
		KickUsername:    in.KickUsername,
		RainbetUsername: in.RainbetUsername,
		PasswordHash:    hash,
		Role:            models.RoleUser,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		// lost a race with a concurrent registration after the pre-check
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, oops.Code(CodeConflict).With("kick_username", in.KickUsername).Wrap(common.ErrorAlreadyExists)
		}
		return nil, s.internal(ctx, "create user", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", created.ID, "kick_username", created.KickUsername)
	return created, nil
}

func (s *UserService) handleTaken(ctx context.Context, kickUsername, rainbetUsername string) (bool, error) {
	if _, err := s.repo.GetByKickUsername(ctx, kickUsername); err == nil {
		return true, nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return false, err
	}

	if _, err := s.repo.GetByRainbetUsername(ctx, rainbetUsername); err == nil {
		return true, nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return false, err
	}

	return false, nil
}

// Login verifies the password of the user registered under kickUsername and
// returns a session token carrying {sub, role, kickUsername}.
func (s *UserService) Login(ctx context.Context, kickUsername, password string) (*LoginResult, error) {
	user, err := s.repo.GetByKickUsername(ctx, kickUsername)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, oops.Code(CodeUserNotFound).Wrap(common.ErrorNotFound)
		}
		return nil, s.internal(ctx, "lookup user", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, s.internal(ctx, "verify password", err)
	}
	if !ok {
		return nil, oops.Code(CodeInvalidCredentials).Wrap(common.ErrorUnauthorized)
	}

	token, claims, err := s.issuer.Issue(auth.TokenSubject{
		UserID:       user.ID,
		Role:         user.Role,
		KickUsername: user.KickUsername,
	})
	if err != nil {
		return nil, s.internal(ctx, "issue token", err)
	}

	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user.Public()}, nil
}

// Authenticate validates a bearer token. Failures wrap the token error from
// internal/common (expired, bad signature, malformed).
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.issuer.Validate(token)
	if err != nil {
		return nil, oops.Code(CodeInvalidToken).Wrap(err)
	}
	return claims, nil
}

// internal logs the underlying failure and returns an error that carries no
// detail beyond common.ErrorInternal.
func (s *UserService) internal(ctx context.Context, operation string, err error) error {
	logging.LogError(ctx, s.logger, "auth operation failed", oops.With("operation", operation).Wrap(err))
	return oops.Code(CodeInternal).With("operation", operation).Wrap(common.ErrorInternal)
}
