// internal/handlers/health_test.go
package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/backoffice-be/internal/handlers"
	"github.com/ammerola/backoffice-be/test/helpers"
	"github.com/ammerola/backoffice-be/test/mocks"
)

type fakeInspector struct {
	err error
}

func (f fakeInspector) Queues() ([]string, error) {
	return []string{"critical", "default"}, f.err
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Queue: queue, Size: 3, Pending: 2, Active: 1}, nil
}

func (f fakeInspector) Servers() ([]*asynq.ServerInfo, error) {
	return []*asynq.ServerInfo{{}}, nil
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		dbErr          error
		redisDown      bool
		queueErr       error
		expectedStatus int
		expectedHealth string
	}{
		{name: "all_healthy", expectedStatus: http.StatusOK, expectedHealth: "healthy"},
		{name: "redis_down_degrades", redisDown: true, expectedStatus: http.StatusOK, expectedHealth: "degraded"},
		{name: "queue_error_degrades", queueErr: errors.New("NOAUTH"), expectedStatus: http.StatusOK, expectedHealth: "degraded"},
		{name: "database_down_is_unhealthy", dbErr: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable, expectedHealth: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			database := mocks.NewMockHealthChecker(ctrl)
			database.EXPECT().Ping(gomock.Any()).Return(tt.dbErr)
			if tt.dbErr == nil {
				database.EXPECT().Health(gomock.Any()).Return(map[string]interface{}{"total_conns": int32(4)})
			}

			rdb := helpers.SetupTestRedis(t)
			if tt.redisDown {
				rdb.Server.Close()
			}

			h := handlers.NewHealthHandler(database, rdb.Client, fakeInspector{err: tt.queueErr}, "1.2.0", "test", helpers.TestLogger())

			w := httptest.NewRecorder()
			h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var status handlers.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedHealth, status.Status)
			assert.Equal(t, "1.2.0", status.Version)
			assert.Contains(t, status.Services, "database")
		})
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name           string
		dbErr          error
		expectedStatus int
	}{
		{name: "ready", expectedStatus: http.StatusOK},
		{name: "database_not_ready", dbErr: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			database := mocks.NewMockHealthChecker(ctrl)
			database.EXPECT().Ping(gomock.Any()).Return(tt.dbErr)

			h := handlers.NewHealthHandler(database, helpers.SetupTestRedis(t).Client, nil, "1.2.0", "test", helpers.TestLogger())

			w := httptest.NewRecorder()
			h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
		})
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := handlers.NewHealthHandler(nil, nil, nil, "1.2.0", "test", helpers.TestLogger())

	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}
