package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Skandeerkefi/luckywData/internal/common"
	"github.com/Skandeerkefi/luckywData/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenValidity is the lifetime of a session token.
const DefaultTokenValidity = 7 * 24 * time.Hour

// Claims is the signed payload of a session token. Claims are readable by
// anyone holding the token, so nothing secret may go in here.
type Claims struct {
	jwt.RegisteredClaims
	Role         models.Role `json:"role"`
	KickUsername string      `json:"kickUsername"`
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenSubject is the identity a token is issued for.
type TokenSubject struct {
	UserID       string
	Role         models.Role
	KickUsername string
}

// TokenIssuer signs and validates HS256 session tokens. There is no
// server-side session state and no revocation: a token stays valid until
// it expires.
type TokenIssuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

type IssuerOption func(*TokenIssuer)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) { i.now = now }
}

func NewTokenIssuer(secret []byte, validity time.Duration, opts ...IssuerOption) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, common.ErrEmptySecret
	}
	if validity <= 0 {
		validity = DefaultTokenValidity
	}

	i := &TokenIssuer{secret: secret, validity: validity, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Validity is the lifetime given to newly issued tokens.
func (i *TokenIssuer) Validity() time.Duration {
	return i.validity
}

// Issue signs a token for s. The returned claims are exactly what was signed.
func (i *TokenIssuer) Issue(s TokenSubject) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		Role:         s.Role,
		KickUsername: s.KickUsername,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// Validate checks the signature and expiry of token and returns its claims.
// A token is accepted while now <= exp.
// Errors are common.ErrTokenMalformed, common.ErrInvalidSignature or
// common.ErrTokenExpired, all of which match common.ErrInvalidToken.
func (i *TokenIssuer) Validate(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		// a token is still valid at exactly exp
		jwt.WithLeeway(time.Nanosecond),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, common.ErrTokenMalformed
	}

	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		// missing exp, bad nbf/iat and similar claim problems
		return common.ErrTokenMalformed
	}
}
