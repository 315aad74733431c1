// internal/adapters/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"

	"github.com/ammerola/backoffice-be/internal/core/ports"
	"github.com/ammerola/backoffice-be/internal/pkg/config"
)

// New builds the file store selected by STORAGE_DRIVER
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.FileStorage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return NewS3Storage(ctx, cfg.AWS, logger)
	case "local", "":
		return NewLocalStorage(cfg.Storage.LocalDir, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func contentTypeFor(key, contentType string) string {
	if contentType != "" {
		return contentType
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
