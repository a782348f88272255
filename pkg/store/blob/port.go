// Package blob implements the Blob Store capability port (spec.md §4.D):
// the Processing Pipeline persists uploaded source documents and
// per-stage checkpoints (macro-summary text, extracted-entity batches)
// here, outside the relational database.
package blob

import (
	"context"
	"io"
)

// ObjectInfo describes a stored object without its content.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Store is the capability port over an S3-compatible object store.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
