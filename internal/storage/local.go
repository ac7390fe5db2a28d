package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// LocalStorage keeps objects on the local filesystem under
// root/<container>/<key>. Signed URLs are paths under /files carrying an
// HMAC-SHA256 signature over (container, key, expiry).
type LocalStorage struct {
	root   string
	secret []byte
	now    func() time.Time
}

// NewLocalStorage creates a filesystem-backed store rooted at dir.
func NewLocalStorage(dir string, secret []byte) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{root: dir, secret: secret, now: time.Now}, nil
}

// Upload writes the object under a fresh random key.
func (s *LocalStorage) Upload(ctx context.Context, container, fileName string, content io.Reader) (string, error) {
	key, err := objectKey(fileName)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, sanitize(container))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create container dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, key))
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write object: %w", err)
	}

	log.Debug().Str("container", container).Str("key", key).Msg("Stored object")
	return key, nil
}

// Open returns the object content for streaming.
func (s *LocalStorage) Open(ctx context.Context, container, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, sanitize(container), sanitize(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *LocalStorage) Delete(ctx context.Context, container, key string) error {
	err := os.Remove(filepath.Join(s.root, sanitize(container), sanitize(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// SignedURL returns "/files/<container>/<key>?expires=...&sig=..." valid
// for ttl.
func (s *LocalStorage) SignedURL(container, key string, ttl time.Duration) (string, error) {
	expires := s.now().Add(ttl).Unix()
	sig := s.sign(container, key, expires)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", sig)
	return fmt.Sprintf("/files/%s/%s?%s", url.PathEscape(container), url.PathEscape(key), q.Encode()), nil
}

// VerifySignature checks a signed URL's signature and expiry.
func (s *LocalStorage) VerifySignature(container, key, sig string, expires int64) bool {
	if s.now().Unix() > expires {
		return false
	}
	expected := s.sign(container, key, expires)
	return hmac.Equal([]byte(expected), []byte(sig))
}

func (s *LocalStorage) sign(container, key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%d", container, key, expires)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// sanitize strips path separators and dot-dot sequences so object keys
// cannot escape the root.
func sanitize(part string) string {
	part = strings.ReplaceAll(part, "/", "")
	part = strings.ReplaceAll(part, "\\", "")
	for strings.Contains(part, "..") {
		part = strings.ReplaceAll(part, "..", "")
	}
	return part
}

var _ Storage = (*LocalStorage)(nil)
