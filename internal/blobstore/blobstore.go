// Package blobstore keeps raw sheet exports in a local content-addressed tree.
package blobstore

import (
	"context"
	"io"
)

// PutResult describes one persisted payload.
type PutResult struct {
	Digest    string
	SizeBytes int64
	Key       string
}

// Store is the byte storage used by the snapshot archive.
type Store interface {
	Put(ctx context.Context, r io.Reader) (PutResult, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var _ Store = (*LocalCAS)(nil)
