// Package filestore defines the interface for object storage backends.
// The settings store keeps its document in one object when configured
// with the object backend.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	obj, err := store.GetObject(ctx, "sqlbrowser", "servers.yaml")
package filestore

import (
	"context"
	"io"
)

// Store is the interface all object storage providers implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources (connections, goroutines, etc.).
	Close() error

	// EnsureBucket creates bucket if it does not exist yet.
	EnsureBucket(ctx context.Context, bucket string) error

	// GetObject opens a streaming handle to the object at key inside bucket.
	// A missing object gives an errs.ErrKindNotFound error.
	// The caller MUST call Object.Close() after reading.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	// PutObject stores size bytes from r at key inside bucket, replacing
	// any existing object.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error

	// StatObject returns metadata for the object at key inside bucket
	// without downloading its content. A missing object gives an
	// errs.ErrKindNotFound error.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)
}
