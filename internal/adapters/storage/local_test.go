// internal/adapters/storage/local_test.go
package storage_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/backoffice-be/internal/adapters/storage"
	"github.com/ammerola/backoffice-be/internal/pkg/config"
	"github.com/ammerola/backoffice-be/test/helpers"
)

func newLocal(t *testing.T) *storage.LocalStorage {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir(), helpers.TestLogger())
	require.NoError(t, err)
	return s
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	key, err := s.Upload(ctx, "imports/products/a.xlsx", strings.NewReader("sheet"), "")
	require.NoError(t, err)
	assert.Equal(t, "imports/products/a.xlsx", key)

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := s.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "sheet", string(data))

	url, err := s.GetPresignedURL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "/imports/products/a.xlsx"))

	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_List(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	for _, k := range []string{"exports/sales/2.xlsx", "exports/sales/1.xlsx", "imports/receipts/r.pdf"} {
		_, err := s.Upload(ctx, k, strings.NewReader(k), "")
		require.NoError(t, err)
	}

	keys, err := s.List(ctx, "exports/")
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/sales/1.xlsx", "exports/sales/2.xlsx"}, keys)

	require.NoError(t, s.DeleteMultiple(ctx, keys))
	keys, err = s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"imports/receipts/r.pdf"}, keys)
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	_, err := s.Upload(ctx, "../outside.txt", strings.NewReader("x"), "")
	assert.Error(t, err)

	_, err = s.Download(ctx, "a/../../etc/passwd")
	assert.Error(t, err)
}

func TestNew_Driver(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		wantErr bool
	}{
		{name: "local", driver: "local"},
		{name: "empty_defaults_to_local", driver: ""},
		{name: "unknown", driver: "ftp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Storage: config.StorageConfig{Driver: tt.driver, LocalDir: t.TempDir()}}
			fs, err := storage.New(context.Background(), cfg, helpers.TestLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &storage.LocalStorage{}, fs)
		})
	}
}
