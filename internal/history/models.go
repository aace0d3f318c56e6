package history

import "time"

// Status is the lifecycle state recorded for a capture.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// Record is one capture's latest processing outcome.
type Record struct {
	ID           int64
	CaptureName  string
	Timestamp    string
	Sensor       string
	Status       Status
	OutputPath   string
	NDVI705      *float64
	ErrorMessage string
	RequestID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
