package api

import (
	"time"

	"github.com/docuchat/api/internal/domain/chatModel"
)

type OutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Task not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type ErrorResponse struct {
	Id    string         `json:"id,omitempty"`
	Error *OutgoingError `json:"error"`
}

// ingestion ---------------------

type InitIngestResponse struct {
	TaskId     string `json:"task_id"`
	DocumentId string `json:"document_id"`
	StatusURL  string `json:"status_url"`
}

type StepProgress struct {
	Upload        int `json:"upload"`
	Extraction    int `json:"extraction"`
	Chunking      int `json:"chunking"`
	Vectorization int `json:"vectorization"`
}

type TaskResponse struct {
	Id              string         `json:"id"`
	DocumentId      string         `json:"document_id"`
	Status          string         `json:"status" example:"vectorizing"`
	CurrentStep     string         `json:"current_step,omitempty"`
	OverallProgress int            `json:"overall_progress" example:"82"`
	Steps           StepProgress   `json:"steps"`
	Error           *OutgoingError `json:"error,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

type ActiveTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// chat ---------------------

type ChatRequest struct {
	SessionId   string   `json:"session_id" validate:"required"`
	Message     string   `json:"message" validate:"required"`
	Model       string   `json:"model,omitempty"`
	SearchMode  string   `json:"search_mode,omitempty" example:"hybrid"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

type CreateSessionRequest struct {
	Title string `json:"title,omitempty"`
	Model string `json:"model,omitempty"`
}

type SessionResponse struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionMessagesResponse struct {
	SessionId string              `json:"session_id"`
	Messages  []chatModel.Message `json:"messages"`
}

// documents ---------------------

type DocumentResponse struct {
	Id              string    `json:"id"`
	Filename        string    `json:"filename"`
	Confidentiality string    `json:"confidentiality"`
	Department      string    `json:"department,omitempty"`
	Client          string    `json:"client,omitempty"`
	Processed       bool      `json:"processed"`
	CreatedAt       time.Time `json:"created_at"`
}

type DocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
}
