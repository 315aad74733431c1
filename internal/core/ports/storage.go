// internal/core/ports/storage.go
package ports

import (
	"context"
	"io"
	"time"
)

// FileStorage keeps uploaded receipts, import sheets and report exports.
// Keys are slash separated paths relative to the store root.
type FileStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	GetPresignedURL(ctx context.Context, key string, duration time.Duration) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}
