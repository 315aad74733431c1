// internal/handlers/import_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/backoffice-be/internal/adapters/documents"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/handlers"
	"github.com/ammerola/backoffice-be/internal/pkg/logger"
	"github.com/ammerola/backoffice-be/test/helpers"
	"github.com/ammerola/backoffice-be/test/mocks"
)

type importMocks struct {
	dispatcher *mocks.MockJobDispatcher
	jobs       *mocks.MockJobRepository
	files      *mocks.MockFileStorage
}

func newImportHandler(t *testing.T) (*handlers.ImportHandler, importMocks, string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := importMocks{
		dispatcher: mocks.NewMockJobDispatcher(ctrl),
		jobs:       mocks.NewMockJobRepository(ctrl),
		files:      mocks.NewMockFileStorage(ctrl),
	}
	dir := t.TempDir()
	h := handlers.NewImportHandler(m.dispatcher, m.jobs, m.files, dir, 1<<20, 1<<20, helpers.TestLogger())
	return h, m, dir
}

func uploadRequest(t *testing.T, url, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(logger.WithValue(r.Context(), logger.ContextKeyUserID, userID))
}

func TestImportHandler_ImportReceipt(t *testing.T) {
	receipt := helpers.ReceiptPDF("FACTURA ELECTRONICA F001-000555", "RUC 20512345678")

	t.Run("stores_receipt_and_queues_job", func(t *testing.T) {
		h, m, dir := newImportHandler(t)
		jobID := uuid.New()

		var storedKey string
		m.files.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, key string, data io.Reader, _ string) (string, error) {
				b, err := io.ReadAll(data)
				require.NoError(t, err)
				assert.Equal(t, receipt, b)
				storedKey = key
				return key, nil
			})
		m.dispatcher.EXPECT().
			ImportReceipt(gomock.Any(), gomock.Any(), "auth0|42").
			DoAndReturn(func(_ any, key, _ string) (*domain.AsyncJob, error) {
				assert.Equal(t, storedKey, key)
				return &domain.AsyncJob{ID: jobID, Status: domain.JobPending}, nil
			})

		w := httptest.NewRecorder()
		h.ImportReceipt(w, withUser(uploadRequest(t, "/api/v1/purchases/import", "factura.pdf", receipt), "auth0|42"))

		require.Equal(t, http.StatusAccepted, w.Code)
		var response handlers.JobAccepted
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, jobID.String(), response.JobID)
		assert.True(t, strings.HasPrefix(response.FileKey, "uploads/receipts/"))
		assert.True(t, strings.HasSuffix(response.FileKey, ".pdf"))

		leftovers, _ := filepath.Glob(filepath.Join(dir, "backoffice-upload-*"))
		assert.Empty(t, leftovers)
	})

	t.Run("requires_acting_user", func(t *testing.T) {
		h, _, _ := newImportHandler(t)
		w := httptest.NewRecorder()

		h.ImportReceipt(w, uploadRequest(t, "/api/v1/purchases/import", "factura.pdf", receipt))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects_non_pdf_content", func(t *testing.T) {
		h, _, _ := newImportHandler(t)
		w := httptest.NewRecorder()

		h.ImportReceipt(w, withUser(uploadRequest(t, "/api/v1/purchases/import", "factura.pdf", []byte("just text")), "auth0|42"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "File content is not a valid .pdf document", errorBody(t, w.Body.Bytes()))
	})

	t.Run("rejects_wrong_extension", func(t *testing.T) {
		h, _, _ := newImportHandler(t)
		w := httptest.NewRecorder()

		h.ImportReceipt(w, withUser(uploadRequest(t, "/api/v1/purchases/import", "factura.txt", receipt), "auth0|42"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Only .pdf files are allowed", errorBody(t, w.Body.Bytes()))
	})

	t.Run("removes_upload_when_queueing_fails", func(t *testing.T) {
		h, m, _ := newImportHandler(t)

		m.files.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, key string, _ io.Reader, _ string) (string, error) { return key, nil })
		m.dispatcher.EXPECT().ImportReceipt(gomock.Any(), gomock.Any(), "auth0|42").
			Return(nil, errors.New("failed to queue task"))
		m.files.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		h.ImportReceipt(w, withUser(uploadRequest(t, "/api/v1/purchases/import", "factura.pdf", receipt), "auth0|42"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to queue import job", errorBody(t, w.Body.Bytes()))
	})
}

func TestImportHandler_ImportProducts(t *testing.T) {
	t.Run("queues_workbook", func(t *testing.T) {
		h, m, _ := newImportHandler(t)
		workbook := helpers.Workbook(t,
			documents.ProductColumns,
			[]string{"ARZ-5", "Arroz Extra 5kg", "20", "5", "18.50", "24.90", ""},
		)

		m.files.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, key string, _ io.Reader, _ string) (string, error) {
				assert.True(t, strings.HasPrefix(key, "uploads/products/"))
				return key, nil
			})
		m.dispatcher.EXPECT().ImportProducts(gomock.Any(), gomock.Any()).
			Return(&domain.AsyncJob{ID: uuid.New(), Status: domain.JobPending}, nil)

		w := httptest.NewRecorder()
		h.ImportProducts(w, uploadRequest(t, "/api/v1/products/import", "catalogo.xlsx", workbook))

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("rejects_oversized_file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := handlers.NewImportHandler(mocks.NewMockJobDispatcher(ctrl), mocks.NewMockJobRepository(ctrl),
			mocks.NewMockFileStorage(ctrl), t.TempDir(), 1<<20, 64, helpers.TestLogger())

		content := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 128)...)
		w := httptest.NewRecorder()
		h.ImportProducts(w, uploadRequest(t, "/api/v1/products/import", "catalogo.xlsx", content))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestImportHandler_GetJob(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		job            *domain.AsyncJob
		err            error
		expectedStatus int
	}{
		{
			name:           "completed_job",
			job:            &domain.AsyncJob{ID: id, Type: "import:receipt", Status: domain.JobCompleted, Progress: 100, Result: json.RawMessage(`{"purchase_id":"x"}`)},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown_job",
			err:            fmt.Errorf("%w: %s", domain.ErrJobNotFound, id),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m, _ := newImportHandler(t)
			m.jobs.EXPECT().Get(gomock.Any(), id).Return(tt.job, tt.err)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+id.String(), nil)
			req.SetPathValue("id", id.String())
			w := httptest.NewRecorder()

			h.GetJob(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.job != nil {
				var response domain.AsyncJob
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, domain.JobCompleted, response.Status)
				assert.Equal(t, 100, response.Progress)
			}
		})
	}
}
