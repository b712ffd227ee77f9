package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, err := m.GenerateToken("u1", "ada@example.com", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateRejectsOtherSecret(t *testing.T) {
	token, err := NewTokenManager("one").GenerateToken("u1", "a@b.c", "user")
	require.NoError(t, err)

	_, err = NewTokenManager("two").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret")
	m.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, err := m.GenerateToken("u1", "a@b.c", "user")
	require.NoError(t, err)

	_, err = NewTokenManager("test-secret").ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("test-secret").ValidateToken("not-a-token")
	assert.Error(t, err)
}
