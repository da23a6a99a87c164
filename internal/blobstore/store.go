// Package blobstore abstracts the remote object storage that receives vault
// backups. The production implementation talks to any S3-compatible
// endpoint; an in-memory implementation backs tests and dry runs.
package blobstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrRemoteBackup wraps every failure of the remote store so callers can
// treat backup trouble uniformly.
var ErrRemoteBackup = errors.New("remote backup store")

// ErrObjectNotFound reports a Get or Delete for a key the store does not
// hold.
var ErrObjectNotFound = errors.New("object not found")

// Object describes one stored blob.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the minimal object-storage surface the backup scheduler needs.
type Store interface {
	// Put uploads body under key, overwriting any existing object.
	Put(ctx context.Context, key string, body io.Reader) error
	// List returns all objects whose key starts with prefix. An empty
	// prefix lists everything.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Get opens the object at key for reading.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
	// HealthCheck verifies the store is reachable and the bucket exists.
	HealthCheck(ctx context.Context) error
}
