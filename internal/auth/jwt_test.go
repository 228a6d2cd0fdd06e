package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestSecret(t *testing.T) {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SESSION_TTL_HOURS", "")
	require.NoError(t, InitJWTSecret())
}

func TestInitJWTSecretRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.Error(t, InitJWTSecret())
}

func TestInitJWTSecretRejectsBadTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SESSION_TTL_HOURS", "soon")
	assert.Error(t, InitJWTSecret())

	t.Setenv("SESSION_TTL_HOURS", "-1")
	assert.Error(t, InitJWTSecret())
}

func TestJWTRoundTrip(t *testing.T) {
	initTestSecret(t)

	token, err := GenerateJWT(42, "owner@example.com")
	require.NoError(t, err)

	claims, err := VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, "owner@example.com", claims.Subject)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestVerifyJWTRejectsGarbage(t *testing.T) {
	initTestSecret(t)

	_, err := VerifyJWT("not-a-token")
	assert.Error(t, err)
}

func TestVerifyJWTRejectsForeignSecret(t *testing.T) {
	initTestSecret(t)

	token, err := GenerateJWT(42, "owner@example.com")
	require.NoError(t, err)

	jwtSecret = "different-secret"
	defer func() { jwtSecret = "test-secret" }()

	_, err = VerifyJWT(token)
	assert.Error(t, err)
}
