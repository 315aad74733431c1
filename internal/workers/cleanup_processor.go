// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/backoffice-be/internal/core/ports"
	"github.com/ammerola/backoffice-be/internal/pkg/config"
)

// exportsPrefix holds generated reports; names end in _YYYYMMDD_HHMMSS
const exportsPrefix = "exports/"

// batchDeleter is implemented by stores that can drop many keys in one call
type batchDeleter interface {
	DeleteMultiple(ctx context.Context, keys []string) error
}

// CleanupProcessor handles cleanup tasks
type CleanupProcessor struct {
	jobs       ports.JobRepository
	files      ports.FileStorage
	exportTTL  time.Duration
	retention  time.Duration
	tempDir    string
	tempMaxAge time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(jobs ports.JobRepository, files ports.FileStorage, cfg *config.Config, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		jobs:       jobs,
		files:      files,
		exportTTL:  cfg.Purchasing.JobRetention,
		retention:  cfg.Purchasing.JobRetention,
		tempDir:    cfg.FileProcessing.TempDir,
		tempMaxAge: cfg.FileProcessing.TempFileMaxAge,
		now:        time.Now,
		logger:     logger.With(slog.String("processor", "cleanup")),
	}
}

// Cleanup drops finished jobs past retention, then expired exports and
// stale temp files. An export sweep failure is logged and does not fail
// the task.
func (p *CleanupProcessor) Cleanup(ctx context.Context, t *asynq.Task) error {
	if err := p.cleanupJobs(ctx); err != nil {
		return err
	}
	if err := p.cleanupExports(ctx); err != nil {
		p.logger.WarnContext(ctx, "export cleanup failed", slog.String("error", err.Error()))
	}
	return p.cleanupTempFiles(ctx)
}

// cleanupExports removes report files whose embedded timestamp is older than
// the job retention; their job rows are gone so nobody can find them
func (p *CleanupProcessor) cleanupExports(ctx context.Context) error {
	if p.files == nil {
		return nil
	}

	keys, err := p.files.List(ctx, exportsPrefix)
	if err != nil {
		return err
	}

	cutoff := p.now().Add(-p.exportTTL)
	var expired []string
	for _, key := range keys {
		if at, ok := exportTime(key); ok && at.Before(cutoff) {
			expired = append(expired, key)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	if bd, ok := p.files.(batchDeleter); ok {
		err = bd.DeleteMultiple(ctx, expired)
	} else {
		for _, key := range expired {
			if err = p.files.Delete(ctx, key); err != nil {
				break
			}
		}
	}
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "expired exports removed", slog.Int("files_deleted", len(expired)))
	return nil
}

// exportTime reads the trailing _YYYYMMDD_HHMMSS stamp of an export name
func exportTime(key string) (time.Time, bool) {
	name := strings.TrimSuffix(path.Base(key), path.Ext(key))
	const layout = "20060102_150405"
	if len(name) < len(layout) {
		return time.Time{}, false
	}
	at, err := time.ParseInLocation(layout, name[len(name)-len(layout):], time.Local)
	return at, err == nil
}

func (p *CleanupProcessor) cleanupJobs(ctx context.Context) error {
	deleted, err := p.jobs.DeleteFinishedBefore(ctx, p.now().Add(-p.retention))
	if err != nil {
		return fmt.Errorf("failed to cleanup jobs: %w", err)
	}

	p.logger.InfoContext(ctx, "old jobs cleaned up", slog.Int64("rows_deleted", deleted))
	return nil
}

// cleanupTempFiles only removes our own backoffice-* temp files
func (p *CleanupProcessor) cleanupTempFiles(ctx context.Context) error {
	if p.tempDir == "" {
		return nil
	}

	var deletedCount int
	err := filepath.WalkDir(p.tempDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == p.tempDir {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != p.tempDir {
				return filepath.SkipDir
			}
			return nil
		}
		if matched, _ := filepath.Match("backoffice-*", d.Name()); !matched {
			return nil
		}

		info, err := d.Info()
		if err != nil || p.now().Sub(info.ModTime()) <= p.tempMaxAge {
			return nil
		}
		if err := os.Remove(path); err != nil {
			p.logger.WarnContext(ctx, "failed to delete temp file",
				slog.String("file", path),
				slog.String("error", err.Error()))
		} else {
			deletedCount++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up", slog.Int("files_deleted", deletedCount))
	return nil
}
