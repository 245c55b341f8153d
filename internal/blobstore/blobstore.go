// Package blobstore defines the key/value blob interface that backs saved
// team configurations, plus a Prometheus-instrumented wrapper.
//
// Backends live in subpackages:
//
//	afsblob    - local files and in-memory storage via github.com/viant/afs
//	boltblob   - embedded bbolt database
//	sqliteblob - SQLite with goose migrations
//	natsblob   - NATS JetStream key/value bucket
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no blob exists for a key.
var ErrNotFound = errors.New("blob not found")

// Store is a string-keyed blob store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the blob stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases backend resources.
	Close() error
}
