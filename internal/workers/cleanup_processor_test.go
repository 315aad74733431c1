// internal/workers/cleanup_processor_test.go
package workers_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/backoffice-be/internal/adapters/storage"
	"github.com/ammerola/backoffice-be/internal/workers"
	"github.com/ammerola/backoffice-be/test/helpers"
	"github.com/ammerola/backoffice-be/test/mocks"
)

func TestCleanupProcessor_Cleanup(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-48 * time.Hour)

	write := func(name string, mtime time.Time) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		require.NoError(t, os.Chtimes(path, mtime, mtime))
		return path
	}
	stale := write("backoffice-upload-1.pdf", old)
	fresh := write("backoffice-upload-2.pdf", time.Now())
	foreign := write("other-tool.tmp", old)

	ctrl := gomock.NewController(t)
	jobs := mocks.NewMockJobRepository(ctrl)
	jobs.EXPECT().
		DeleteFinishedBefore(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, before time.Time) (int64, error) {
			assert.WithinDuration(t, time.Now().Add(-7*24*time.Hour), before, time.Minute)
			return 4, nil
		})

	cfg := helpers.LoadTestConfig()
	cfg.FileProcessing.TempDir = dir

	p := workers.NewCleanupProcessor(jobs, nil, cfg, helpers.TestLogger())
	require.NoError(t, p.Cleanup(context.Background(), asynq.NewTask(workers.TypeJobsCleanup, nil)))

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, foreign)
}

func TestCleanupProcessor_JobsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	jobs := mocks.NewMockJobRepository(ctrl)
	jobs.EXPECT().DeleteFinishedBefore(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("db down"))

	p := workers.NewCleanupProcessor(jobs, nil, helpers.LoadTestConfig(), helpers.TestLogger())
	err := p.Cleanup(context.Background(), asynq.NewTask(workers.TypeJobsCleanup, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to cleanup jobs")
}

func TestCleanupProcessor_ExpiredExports(t *testing.T) {
	ctx := context.Background()
	files, err := storage.NewLocalStorage(t.TempDir(), helpers.TestLogger())
	require.NoError(t, err)

	stamp := func(d time.Duration) string { return time.Now().Add(-d).Format("20060102_150405") }
	put := func(key string) {
		_, err := files.Upload(ctx, key, strings.NewReader("xlsx"), "")
		require.NoError(t, err)
	}
	expired := "exports/sales/sales_2026-01-01_2026-01-31_" + stamp(10*24*time.Hour) + ".xlsx"
	recent := "exports/sales/sales_2026-02-01_2026-02-28_" + stamp(time.Hour) + ".xlsx"
	unstamped := "exports/sales/manual.xlsx"
	upload := "uploads/receipts/" + stamp(30*24*time.Hour) + ".pdf"
	for _, k := range []string{expired, recent, unstamped, upload} {
		put(k)
	}

	ctrl := gomock.NewController(t)
	jobs := mocks.NewMockJobRepository(ctrl)
	jobs.EXPECT().DeleteFinishedBefore(gomock.Any(), gomock.Any()).Return(int64(0), nil)

	cfg := helpers.LoadTestConfig()
	cfg.FileProcessing.TempDir = ""
	p := workers.NewCleanupProcessor(jobs, files, cfg, helpers.TestLogger())
	require.NoError(t, p.Cleanup(ctx, asynq.NewTask(workers.TypeJobsCleanup, nil)))

	for key, want := range map[string]bool{expired: false, recent: true, unstamped: true, upload: true} {
		ok, err := files.Exists(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, ok, key)
	}
}
