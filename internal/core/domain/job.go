// internal/core/domain/job.go
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle of an async job
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// AsyncJob tracks a background task started from the API
type AsyncJob struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Employee links an authenticated user to the staff record stamped on purchases
type Employee struct {
	ID       uuid.UUID `json:"id"`
	UserID   string    `json:"user_id"`
	Fullname string    `json:"fullname"`
	DNI      string    `json:"dni"`
}

// Supplier is a read-only reference for purchases
type Supplier struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	RUC  string    `json:"ruc"`
}
