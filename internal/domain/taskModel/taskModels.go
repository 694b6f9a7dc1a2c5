package taskModel

import (
	"context"
	"time"
)

type TaskStatus string
type Step string

const (
	StatusPending     TaskStatus = "pending"
	StatusUploading   TaskStatus = "uploading"
	StatusExtracting  TaskStatus = "extracting"
	StatusChunking    TaskStatus = "chunking"
	StatusVectorizing TaskStatus = "vectorizing"
	StatusCompleted   TaskStatus = "completed"
	StatusFailed      TaskStatus = "failed"

	StepUpload        Step = "upload"
	StepExtraction    Step = "extraction"
	StepChunking      Step = "chunking"
	StepVectorization Step = "vectorization"
)

func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Overall progress is a deterministic function of the active step and that
// step's local progress. Bands must sum to 100 at completion.
var stepBands = map[Step]struct{ Start, Width int }{
	StepUpload:        {0, 25},
	StepExtraction:    {25, 25},
	StepChunking:      {50, 25},
	StepVectorization: {75, 25},
}

// OverallProgress maps a step-local 0-100 value into the step's band.
func OverallProgress(step Step, stepLocal int) int {
	band, ok := stepBands[step]
	if !ok {
		return 0
	}
	if stepLocal < 0 {
		stepLocal = 0
	}
	if stepLocal > 100 {
		stepLocal = 100
	}
	return band.Start + stepLocal*band.Width/100
}

func StatusForStep(step Step) TaskStatus {
	switch step {
	case StepUpload:
		return StatusUploading
	case StepExtraction:
		return StatusExtracting
	case StepChunking:
		return StatusChunking
	case StepVectorization:
		return StatusVectorizing
	}
	return StatusPending
}

type TaskError struct {
	Message string `json:"message"`
	Retry   bool   `json:"can_retry"`
}

// IngestionTask is a snapshot of one ingestion attempt. A retry is a fresh
// task pointing at the same document.
type IngestionTask struct {
	Id         string     `json:"id"`
	DocumentId string     `json:"document_id"`
	TraceId    string     `json:"trace_id"`
	Status     TaskStatus `json:"status"`
	CurrentStep Step      `json:"current_step,omitempty"`

	OverallProgress       int `json:"overall_progress"`
	UploadProgress        int `json:"upload_progress"`
	ExtractionProgress    int `json:"extraction_progress"`
	ChunkingProgress      int `json:"chunking_progress"`
	VectorizationProgress int `json:"vectorization_progress"`

	Error       *TaskError `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt time.Time  `json:"completed_at,omitempty"`
}

type TaskStore interface {
	SaveTask(ctx context.Context, task IngestionTask) error
	GetTask(ctx context.Context, taskId string) (IngestionTask, bool)
	DeleteTask(ctx context.Context, taskId string)
}
