package storage

import (
	"context"
	"io"
)

// Storage is the minimal interface evidence persistence needs:
// put an object, delete it, resolve its public URL.
type Storage interface {
	// Put stores an object under the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes an object by key. Returns nil if it does not exist.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the public URL for a stored object.
	URL(key string) string
}

// Config holds credentials for the S3-compatible backend
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}
