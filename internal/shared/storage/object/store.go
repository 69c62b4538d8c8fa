package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open when no object exists for the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore saves, streams and removes binary objects such as resume photos.
// Keys returned by Save are opaque and namespaced per owner.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
