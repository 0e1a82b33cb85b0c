// Package storage keeps photo bytes outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/yukikurage/field-task-api/internal/config"
)

var ErrObjectNotFound = errors.New("storage: object not found")

// Backend stores objects under slash-separated keys.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// Signer is implemented by backends that can hand out time-limited download URLs.
type Signer interface {
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg *config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case "local":
		return NewLocalBackend(cfg.LocalDir)
	case "s3":
		return NewMinioBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
