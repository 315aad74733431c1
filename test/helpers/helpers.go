// test/helpers/helpers.go
package helpers

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/backoffice-be/internal/pkg/config"
)

// TestLogger writes debug output under -v and only errors otherwise
func TestLogger() *slog.Logger {
	var w io.Writer = os.Stdout
	level := slog.LevelError
	if testing.Verbose() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// TestRedis is an in-process Redis. Close Server to simulate an outage.
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// SetupTestRedis starts miniredis and a client bound to it
func SetupTestRedis(t testing.TB) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &TestRedis{Client: client, Server: mr}
}

// LoadTestConfig returns a config that passes Validate in the test
// environment; tests mutate it to exercise failures
func LoadTestConfig() *config.Config {
	tmp := os.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Name:        "backoffice-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "bodega",
			Password:           "bodega",
			Name:               "backoffice_test",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			LockTimeout:        2 * time.Second,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Asynq:   config.AsynqConfig{RetryMax: 3},
		Storage: config.StorageConfig{Driver: "local", LocalDir: tmp, PresignTTL: time.Hour},
		FileProcessing: config.FileProcessingConfig{
			PDFMaxSizeMB:      50,
			ExcelMaxSizeMB:    100,
			ProcessingTimeout: 5 * time.Minute,
			TempDir:           tmp,
			TempFileMaxAge:    24 * time.Hour,
		},
		Purchasing: config.PurchasingConfig{
			CacheTTL:           time.Hour,
			ListCacheTTL:       time.Minute,
			EmployeeCacheTTL:   time.Hour,
			ExpiringWindowDays: 7,
			JobRetention:       7 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			RequestIDHeader:   "X-Request-ID",
			UserIDHeader:      "X-User-ID",
		},
	}
}
