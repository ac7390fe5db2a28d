package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), []byte("storage-signing-secret"))
	require.NoError(t, err)
	return s
}

func TestUploadOpenDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	key, err := s.Upload(ctx, "tenant-a", "contract.pdf", bytes.NewReader([]byte("hello")))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(key, ".pdf"))

	obj, err := s.Open(ctx, "tenant-a", key)
	require.NoError(t, err)
	content, err := io.ReadAll(obj)
	require.NoError(t, obj.Close())
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))

	require.NoError(t, s.Delete(ctx, "tenant-a", key))
	_, err = s.Open(ctx, "tenant-a", key)
	require.ErrorIs(t, err, ErrObjectNotFound)

	// Deleting again is fine.
	require.NoError(t, s.Delete(ctx, "tenant-a", key))
}

func TestUploadKeysAreUnique(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	first, err := s.Upload(ctx, "tenant-a", "avatar.png", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	second, err := s.Upload(ctx, "tenant-a", "avatar.png", bytes.NewReader([]byte("two")))
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestSignedURL(t *testing.T) {
	s := newTestStorage(t)

	signed, err := s.SignedURL("tenant-a", "abc.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "/files/tenant-a/abc.pdf", u.Path)

	expires, err := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	require.NoError(t, err)
	sig := u.Query().Get("sig")

	require.True(t, s.VerifySignature("tenant-a", "abc.pdf", sig, expires))

	t.Run("wrong key", func(t *testing.T) {
		require.False(t, s.VerifySignature("tenant-a", "other.pdf", sig, expires))
	})

	t.Run("wrong container", func(t *testing.T) {
		require.False(t, s.VerifySignature("tenant-b", "abc.pdf", sig, expires))
	})

	t.Run("tampered expiry", func(t *testing.T) {
		require.False(t, s.VerifySignature("tenant-a", "abc.pdf", sig, expires+60))
	})

	t.Run("expired", func(t *testing.T) {
		stale, err := s.SignedURL("tenant-a", "abc.pdf", -time.Minute)
		require.NoError(t, err)
		u, err := url.Parse(stale)
		require.NoError(t, err)
		past, err := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
		require.NoError(t, err)
		require.False(t, s.VerifySignature("tenant-a", "abc.pdf", u.Query().Get("sig"), past))
	})
}

func TestSanitize(t *testing.T) {
	require.Equal(t, "etcpasswd", sanitize("../../etc/passwd"))
	require.Equal(t, "plain", sanitize("plain"))
}
