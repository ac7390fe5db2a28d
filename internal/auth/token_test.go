package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret-that-is-long-enough!")
	userID := uuid.New()
	tenantID := uuid.New()

	token, err := IssueToken(secret, userID, tenantID, "ADMIN", "admin@example.com")
	require.NoError(t, err)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, tenantID, claims.TenantID)
	require.Equal(t, "ADMIN", claims.Role)
	require.Equal(t, "admin@example.com", claims.Email)
	require.WithinDuration(t, time.Now().Add(SessionTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken([]byte("secret-one-that-is-long-enough!!"), uuid.New(), uuid.New(), "USER", "a@b.com")
	require.NoError(t, err)

	_, err = ParseToken([]byte("secret-two-that-is-long-enough!!"), token)
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	secret := []byte("test-secret-that-is-long-enough!")

	claims := &Claims{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Role:     "USER",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-9 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	require.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken([]byte("test-secret-that-is-long-enough!"), "not.a.token")
	require.Error(t, err)
}
