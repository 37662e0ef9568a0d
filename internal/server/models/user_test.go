package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_NeverSerializesCredentials(t *testing.T) {
	u := &User{
		ID:              "u-1",
		KickUsername:    "alice",
		RainbetUsername: "alice_r",
		PasswordHash:    "$2a$10$hash",
		Role:            RoleUser,
	}

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "$2a$10$hash")
	assert.NotContains(t, string(b), "alice_r")

	pb, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u-1","kickUsername":"alice","role":"user"}`, string(pb))
}
