// Package models holds the server-side domain records.
package models

import "time"

// Role is the authorization level carried in issued tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account. Records are never updated or deleted.
//
// KickUsername and RainbetUsername are each unique across the store.
// PasswordHash is never serialized.
type User struct {
	ID              string    `json:"id"`
	KickUsername    string    `json:"kickUsername"`
	RainbetUsername string    `json:"-"`
	PasswordHash    string    `json:"-"`
	Role            Role      `json:"role"`
	CreatedAt       time.Time `json:"-"`
}

// PublicProfile is the part of a User that may be returned to clients.
type PublicProfile struct {
	ID           string `json:"id"`
	KickUsername string `json:"kickUsername"`
	Role         Role   `json:"role"`
}

// Public strips credential and secondary-handle data.
func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, KickUsername: u.KickUsername, Role: u.Role}
}
