package client

import "context"

// User is the public profile returned by the server.
type User struct {
	ID           string `json:"id"`
	KickUsername string `json:"kickUsername"`
	Role         string `json:"role"`
}

// Session is a successful login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Client interface {
	Register(ctx context.Context, kickUsername, rainbetUsername string, password, confirmPassword []byte) (*User, error)
	Login(ctx context.Context, kickUsername string, password []byte) (*Session, error)
	Health(ctx context.Context) (*Health, error)
}
