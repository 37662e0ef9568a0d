// Package common defines shared constants and sentinel errors used across
// the client and server layers of luckywData. Callers should use errors.Is
// to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Password hashing failures (entropy exhaustion, malformed stored hash).
	ErrHashing = errors.New("hashing error")

	// Auth errors. Every token failure wraps ErrInvalidToken so callers that
	// only care about "rejected or not" can match a single value.
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired     = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrTokenMalformed   = fmt.Errorf("%w: malformed token", ErrInvalidToken)
	ErrEmptySecret      = errors.New("empty signing secret")

	// Third-party API failures.
	ErrUpstream = errors.New("upstream error")
)
