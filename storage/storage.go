// Package storage provides object storage for recorded audio.
// Supported providers: local filesystem, Amazon S3 (and S3-compatible services).
// Provider packages register themselves with RegisterFactory from init, so
// callers import them for side effects:
//
//	import _ "github.com/kbukum/scribe/storage/s3"
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Download when the object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload writes data from reader to the given key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download returns a reader for the object at the given key.
	// The caller is responsible for closing the returned ReadCloser.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at the given key.
	// Returns nil if the object does not exist.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a URL for accessing the object at the given key.
	URL(ctx context.Context, key string) (string, error)
}
