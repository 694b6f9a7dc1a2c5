package adapter

import (
	"fmt"

	"github.com/docuchat/api/internal/api"
	"github.com/docuchat/api/internal/domain/chatModel"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/domain/taskModel"
)

func ToInitIngestResponse(taskId string, documentId string) api.InitIngestResponse {
	return api.InitIngestResponse{
		TaskId:     taskId,
		DocumentId: documentId,
		StatusURL:  fmt.Sprintf("ingest/status/%s", taskId),
	}
}

func ToTaskResponse(task taskModel.IngestionTask) api.TaskResponse {

	var errorPtr *api.OutgoingError
	if task.Error != nil {
		errorPtr = &api.OutgoingError{
			Message: task.Error.Message,
			Retry:   task.Error.Retry,
		}
	}

	response := api.TaskResponse{
		Id:              task.Id,
		DocumentId:      task.DocumentId,
		Status:          string(task.Status),
		CurrentStep:     string(task.CurrentStep),
		OverallProgress: task.OverallProgress,
		Steps: api.StepProgress{
			Upload:        task.UploadProgress,
			Extraction:    task.ExtractionProgress,
			Chunking:      task.ChunkingProgress,
			Vectorization: task.VectorizationProgress,
		},
		Error:     errorPtr,
		StartedAt: task.StartedAt,
		UpdatedAt: task.UpdatedAt,
	}
	if !task.CompletedAt.IsZero() {
		completed := task.CompletedAt
		response.CompletedAt = &completed
	}
	return response
}

func ToActiveTasksResponse(tasks []taskModel.IngestionTask) api.ActiveTasksResponse {
	response := api.ActiveTasksResponse{Tasks: make([]api.TaskResponse, 0, len(tasks))}
	for _, task := range tasks {
		response.Tasks = append(response.Tasks, ToTaskResponse(task))
	}
	return response
}

func ToSessionResponse(session chatModel.ChatSession) api.SessionResponse {
	return api.SessionResponse{
		Id:        session.Id,
		Title:     session.Title,
		Model:     session.Model,
		CreatedAt: session.CreatedAt,
	}
}

func ToDocumentResponse(doc docModel.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:              doc.Id,
		Filename:        doc.Filename,
		Confidentiality: string(doc.Confidentiality),
		Department:      doc.Department,
		Client:          doc.Client,
		Processed:       doc.Processed,
		CreatedAt:       doc.CreatedAt,
	}
}

func ToDocumentsResponse(docs []docModel.Document) api.DocumentsResponse {
	response := api.DocumentsResponse{Documents: make([]api.DocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		response.Documents = append(response.Documents, ToDocumentResponse(doc))
	}
	return response
}

func BadRequest(id string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Id: id,
		Error: &api.OutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
