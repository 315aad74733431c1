// internal/handlers/import.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/backoffice-be/internal/core/ports"
	"github.com/ammerola/backoffice-be/internal/pkg/logger"
)

const (
	pdfContentType = "application/pdf"
	// xlsx files are zip containers
	zipContentType = "application/zip"
)

var errTooLarge = errors.New("file too large")

// ImportHandler accepts receipt and catalogue uploads and reports on the jobs
// they start
type ImportHandler struct {
	responder
	dispatcher   ports.JobDispatcher
	jobs         ports.JobRepository
	files        ports.FileStorage
	tempDir      string
	maxPDFSize   int64
	maxExcelSize int64
}

// NewImportHandler creates a new import handler. Sizes are in bytes.
func NewImportHandler(
	dispatcher ports.JobDispatcher,
	jobs ports.JobRepository,
	files ports.FileStorage,
	tempDir string,
	maxPDFSize, maxExcelSize int64,
	l *slog.Logger,
) *ImportHandler {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &ImportHandler{
		responder:    responder{logger: l.With(slog.String("handler", "import"))},
		dispatcher:   dispatcher,
		jobs:         jobs,
		files:        files,
		tempDir:      tempDir,
		maxPDFSize:   maxPDFSize,
		maxExcelSize: maxExcelSize,
	}
}

// ImportReceipt handles POST /api/v1/purchases/import. The purchase is
// recorded for the acting user once the worker has read the receipt.
func (h *ImportHandler) ImportReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := logger.UserID(ctx)
	if userID == "" {
		h.respondError(w, http.StatusUnauthorized, "Acting user is required")
		return
	}

	key, ok := h.storeUpload(w, r, "receipts", ".pdf", pdfContentType, h.maxPDFSize)
	if !ok {
		return
	}

	job, err := h.dispatcher.ImportReceipt(ctx, key, userID)
	if err != nil {
		h.discard(r, key)
		h.respondServiceError(w, r, err, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "receipt import queued",
		slog.String("job_id", job.ID.String()),
		slog.String("file_key", key))

	h.respondJSON(w, http.StatusAccepted, JobAccepted{
		JobID:   job.ID.String(),
		Status:  string(job.Status),
		FileKey: key,
		Message: "Receipt import has been queued for processing",
	})
}

// ImportProducts handles POST /api/v1/products/import
func (h *ImportHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, ok := h.storeUpload(w, r, "products", ".xlsx", zipContentType, h.maxExcelSize)
	if !ok {
		return
	}

	job, err := h.dispatcher.ImportProducts(ctx, key)
	if err != nil {
		h.discard(r, key)
		h.respondServiceError(w, r, err, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "product import queued",
		slog.String("job_id", job.ID.String()),
		slog.String("file_key", key))

	h.respondJSON(w, http.StatusAccepted, JobAccepted{
		JobID:   job.ID.String(),
		Status:  string(job.Status),
		FileKey: key,
		Message: "Product import has been queued for processing",
	})
}

// GetJob handles GET /api/v1/jobs/{id}
func (h *ImportHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "job")
	if !ok {
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve job")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

// storeUpload validates the "file" form field, spools it to a temp file and
// stores it under uploads/<folder>/. The temp file is removed before
// returning; files older than the retention window are swept by the cleanup
// job if the process dies first.
func (h *ImportHandler) storeUpload(w http.ResponseWriter, r *http.Request, folder, ext, wantType string, maxSize int64) (string, bool) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required")
		return "", false
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ext) {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("Only %s files are allowed", ext))
		return "", false
	}

	tmp, err := os.CreateTemp(h.tempDir, "backoffice-upload-*"+ext)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create temp file", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return "", false
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := spool(tmp, file, maxSize); err != nil {
		if errors.Is(err, errTooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge, "File exceeds the maximum allowed size")
			return "", false
		}
		h.logger.ErrorContext(ctx, "failed to spool upload", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return "", false
	}

	head := make([]byte, 512)
	n, _ := tmp.ReadAt(head, 0)
	if detected := http.DetectContentType(head[:n]); detected != wantType {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("File content is not a valid %s document", ext))
		return "", false
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return "", false
	}

	key := fmt.Sprintf("uploads/%s/%s%s", folder, uuid.New().String(), ext)
	key, err = h.files.Upload(ctx, key, tmp, header.Header.Get("Content-Type"))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to store upload",
			slog.String("file_key", key),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to store upload")
		return "", false
	}

	return key, true
}

func (h *ImportHandler) discard(r *http.Request, key string) {
	if err := h.files.Delete(r.Context(), key); err != nil {
		h.logger.WarnContext(r.Context(), "failed to delete orphaned upload",
			slog.String("file_key", key),
			slog.String("error", err.Error()))
	}
}

func spool(dst io.Writer, src io.Reader, maxSize int64) error {
	n, err := io.Copy(dst, io.LimitReader(src, maxSize+1))
	if err != nil {
		return err
	}
	if n > maxSize {
		return errTooLarge
	}
	return nil
}
