package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediaapi/internal/config"
)

// Package storage contains read-only access to an S3-compatible object store:
// existence probes and pre-signed download URLs. Nothing here writes objects.

// ErrObjectNotFound is returned by Stat when the key does not exist.
// Any other Stat error is an infrastructure failure.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// ObjectStore is the object store client used to resolve and sign links.
// Implementations are safe for concurrent use.
type ObjectStore interface {
	// Bucket returns the bucket every operation is scoped to.
	Bucket() string
	// Stat returns object metadata, or an error wrapping ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// New builds the object store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case "", config.StorageDriverMinIO:
		return NewMinIO(cfg)
	case config.StorageDriverS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func notFound(bucket, key string) error {
	return fmt.Errorf("%s/%s: %w", bucket, key, ErrObjectNotFound)
}
