package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"path"
	"time"

	"github.com/mr-tron/base58"
)

// ErrObjectNotFound is returned when the referenced object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Storage stores and serves uploaded files. Objects live in per-tenant
// containers and are addressed by an opaque key.
type Storage interface {
	// Upload writes the object and returns its key within the container.
	Upload(ctx context.Context, container, fileName string, content io.Reader) (string, error)

	// Open returns the object content for streaming.
	Open(ctx context.Context, container, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, container, key string) error

	// SignedURL returns a download path that embeds an expiring signature.
	SignedURL(container, key string, ttl time.Duration) (string, error)
}

// objectKey builds an unguessable object key preserving the original file
// extension.
func objectKey(fileName string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base58.Encode(buf) + path.Ext(fileName), nil
}
