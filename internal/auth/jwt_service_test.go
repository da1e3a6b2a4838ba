package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUserID = uuid.MustParse("6f1c2a8e-4b1d-4a53-9d1e-2b7c9f0a1e11")

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.GenerateToken(testUserID, "ana@example.com", "user")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, testUserID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	a, err := svc.GenerateToken(testUserID, "ana@example.com", "user")
	require.NoError(t, err)
	b, err := svc.GenerateToken(testUserID, "ana@example.com", "user")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuer := NewJWTService("one", time.Hour)
	verifier := NewJWTService("two", time.Hour)

	token, err := issuer.GenerateToken(testUserID, "ana@example.com", "user")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.GenerateToken(testUserID, "ana@example.com", "user")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTokenTTL, NewJWTService("s", 0).TTL())
}
