package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyPasswordMismatch(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "wrong password")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("not-a-hash", "anything")
	require.Error(t, err)
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := HashPassword("same password")
	require.NoError(t, err)
	second, err := HashPassword("same password")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
