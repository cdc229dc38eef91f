// Package storage provides a domain-agnostic interface for S3-compatible object storage.
package storage

import (
	"context"
)

// ObjectStore defines the object storage operations used for rendered documents.
type ObjectStore interface {
	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// PutObject stores data under key, replacing any previous object.
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error

	// GetObject reads a whole object. A missing key yields an apperr NotFound.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	IsMinIOEnabled() bool
}
