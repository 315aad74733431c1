// internal/pkg/logger/handlers_test.go
package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/backoffice-be/internal/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestSanitizationHandler(t *testing.T) {
	tests := []struct {
		name  string
		msg   string
		attrs []any
		check func(t *testing.T, line map[string]any)
	}{
		{
			name:  "redacts_secret_keys",
			msg:   "secrets loaded",
			attrs: []any{slog.String("smtp_password", "hunter2"), slog.String("db_host", "localhost")},
			check: func(t *testing.T, line map[string]any) {
				assert.Equal(t, "***REDACTED***", line["smtp_password"])
				assert.Equal(t, "localhost", line["db_host"])
			},
		},
		{
			name:  "masks_identity_documents",
			msg:   "employee resolved",
			attrs: []any{slog.String("dni", "45678912")},
			check: func(t *testing.T, line map[string]any) {
				assert.Equal(t, "******12", line["dni"])
			},
		},
		{
			name: "masks_credentials_and_emails_in_text",
			msg:  "alert sent to compras@bodega.pe with token=abc123",
			check: func(t *testing.T, line map[string]any) {
				msg := line["msg"].(string)
				assert.NotContains(t, msg, "compras@bodega.pe")
				assert.NotContains(t, msg, "abc123")
			},
		},
		{
			name:  "walks_groups",
			msg:   "request",
			attrs: []any{slog.Group("auth", slog.String("token", "xyz"), slog.Int("status", 200))},
			check: func(t *testing.T, line map[string]any) {
				group := line["auth"].(map[string]any)
				assert.Equal(t, "***REDACTED***", group["token"])
				assert.EqualValues(t, 200, group["status"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := slog.New(logger.NewSanitizationHandler(slog.NewJSONHandler(&buf, nil)))

			l.Info(tt.msg, tt.attrs...)

			tt.check(t, decodeLine(t, &buf))
		})
	}
}

func TestContextHandler_AddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(logger.NewContextHandler(slog.NewJSONHandler(&buf, nil), nil))

	ctx := logger.WithValue(context.Background(), logger.ContextKeyRequestID, "req-1")
	ctx = logger.WithValue(ctx, logger.ContextKeyUserID, "auth0|cajero1")
	l.InfoContext(ctx, "purchase created")

	line := decodeLine(t, &buf)
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "auth0|cajero1", line["user_id"])
	assert.NotContains(t, line, "job_id")
}

func TestSamplingHandler(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(logger.NewSamplingHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}), 0))

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestMultiHandler_RespectsEachLevel(t *testing.T) {
	var all, errorsOnly bytes.Buffer
	l := slog.New(logger.NewMultiHandler(
		slog.NewJSONHandler(&all, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&errorsOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	l.Info("stock refreshed")
	l.Error("stock audit failed")

	assert.Equal(t, 2, strings.Count(all.String(), "\n"))
	assert.Equal(t, 1, strings.Count(errorsOnly.String(), "\n"))
	assert.Contains(t, errorsOnly.String(), "stock audit failed")
}

func TestPrettyTextHandler(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(logger.NewPrettyTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})).
		With(slog.String("service", "worker"))

	l.Debug("hidden")
	l.WithGroup("job").Info("queued", slog.String("type", "purchase:receipt"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "queued")
	assert.Contains(t, out, "service")
	assert.Contains(t, out, "job.type")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
}
