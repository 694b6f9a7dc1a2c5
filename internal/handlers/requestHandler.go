package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/docuchat/api/internal/adapter"
	"github.com/docuchat/api/internal/adapter/utils"
	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/internal/ingest"
	"github.com/docuchat/api/internal/storage"
)

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// PostIngestHandler handles the uploading of documents for ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, saves it to a temporary directory, and queues an ingestion task.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document         formData  file    true   "The PDF, DOCX or TXT file to upload"
// @Param        document_name    formData  string  false  "Display name, defaults to the uploaded filename"
// @Param        confidentiality  formData  string  false  "public or confidential, defaults to public"
// @Param        department       formData  string  false  "Owning department"
// @Param        client           formData  string  false  "Related client"
// @Success      202  {object}  api.InitIngestResponse "Accepted - returns task_id and status_url"
// @Failure      400  {object}  api.ErrorResponse "Bad Request - Missing file, unsupported type or file too large"
// @Failure      500  {object}  api.ErrorResponse "Internal Server Error - Storage or Write Error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()

		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		const maxUploadSize = 32 << 20 //32mb
		err := r.ParseMultipartForm(maxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		docName := r.FormValue("document_name")
		if docName == "" {
			docName = fileMetadata.Filename
		}

		if storage.GetDocType(fileMetadata.Filename) == docModel.ERR {
			WriteErrorResponse(w, http.StatusBadRequest, docName, "Unsupported file type")
			return
		}

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
			return
		}

		queueIngestion(w, r, docName, tempFilePath)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// queueIngestion builds the document record and its task and hands both to
// the ingestion service. The temp file is owned by the pipeline from here.
func queueIngestion(w http.ResponseWriter, r *http.Request, docName string, tempFilePath string) {
	traceId := traceFromRequest(r)

	doc := docModel.Document{
		Id:              utils.GetNewUUID(),
		Filename:        docName,
		Confidentiality: docModel.ParseConfidentiality(r.FormValue("confidentiality")),
		Department:      r.FormValue("department"),
		Client:          r.FormValue("client"),
		CreatedAt:       time.Now(),
	}
	task := taskModel.IngestionTask{
		Id:         utils.GetNewUUID(),
		DocumentId: doc.Id,
		TraceId:    traceId,
	}

	// detached from the request context, the queue outlives this handler
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	err := handlerInstance.ingest.Enqueue(ctxC, ingest.Work{
		Task:       task,
		Document:   doc,
		SourcePath: tempFilePath,
	})
	if err != nil {
		logRH.Error("Couldn't queue ingestion", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Could not queue ingestion")
		return
	}

	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitIngestResponse(task.Id, doc.Id))
}

// GetIngestStatusHandler godoc
// @Summary      Get ingestion task status
// @Description  Retrieves the current status and step progress of an ingestion task.
// @Tags         Ingestion
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  api.TaskResponse  "The current status of the task"
// @Failure      404  {object}  api.ErrorResponse "Task not found"
// @Router       /ingest/status/{id} [get]
func GetIngestStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)

		if idString == "" {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Task not found")
			return
		}
		result, isFound := GetTaskStatus(idString, traceFromRequest(r))
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Task not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToTaskResponse(result))
	}
}

// GetActiveIngestsHandler godoc
// @Summary      List active ingestion tasks
// @Description  Returns every task that has not yet completed or failed, oldest first.
// @Tags         Ingestion
// @Produce      json
// @Success      200  {object}  api.ActiveTasksResponse
// @Router       /ingest/active [get]
func GetActiveIngestsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		tasks := handlerInstance.ingest.ActiveTasks(r.Context())
		writeJsonResponse(w, http.StatusOK, adapter.ToActiveTasksResponse(tasks))
	}
}
