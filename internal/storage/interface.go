package storage

import (
	"context"
	"io"
)

// ObjectStorage is where finished datasets get published for the dashboard
// to pick up.
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the URL for accessing an object
	GetURL(key string) string

	// EnsureBucket creates the bucket if it doesn't exist
	EnsureBucket(ctx context.Context) error
}
