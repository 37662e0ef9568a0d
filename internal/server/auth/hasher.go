// Package auth provides the credential primitives of the service: password
// hashing and signed session tokens.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/Skandeerkefi/luckywData/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes passwords with a random salt and verifies them later.
//
// Verify returns (false, nil) on mismatch and an error wrapping
// common.ErrHashing only when the stored hash is malformed.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// Hasher names accepted by NewPasswordHasher.
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// DefaultBcryptCost matches the work factor the service has always used.
const DefaultBcryptCost = 10

// ValidBcryptCost reports whether cost is a work factor bcrypt accepts.
func ValidBcryptCost(cost int) bool {
	return cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost
}

// NewPasswordHasher returns the hasher registered under name.
func NewPasswordHasher(name string, bcryptCost int) (PasswordHasher, error) {
	switch name {
	case HasherBcrypt, "":
		if !ValidBcryptCost(bcryptCost) {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
		return NewBcryptHasher(bcryptCost), nil
	case HasherArgon2id:
		return NewArgon2idHasher(), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if !ValidBcryptCost(cost) {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrHashing, err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		// a password bcrypt refuses to hash can never have produced hash
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrHashing, err)
	}
}

// argon2id parameters, OWASP baseline.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// Argon2idHasher implements PasswordHasher with argon2id, encoding results
// in PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
type Argon2idHasher struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{Time: argon2Time, Memory: argon2Memory, Threads: argon2Threads}
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: salt: %v", common.ErrHashing, err)
	}

	key := argon2.IDKey([]byte(password), salt, h.Time, h.Memory, h.Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Time, h.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: not an argon2id hash", common.ErrHashing)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported argon2 version %q", common.ErrHashing, parts[2])
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("%w: parameters: %v", common.ErrHashing, err)
	}
	if threads == 0 || threads > 255 || iterations == 0 {
		return false, fmt.Errorf("%w: parameters out of range", common.ErrHashing)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", common.ErrHashing, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 || len(want) > 1024 {
		return false, fmt.Errorf("%w: key encoding", common.ErrHashing)
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, uint8(threads), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
