package handlers

import (
	"net/http"
	"strconv"

	"github.com/docuchat/api/internal/adapter"
	"github.com/docuchat/api/internal/adapter/utils"
)

// GetDocumentsHandler godoc
// @Summary      List documents
// @Description  Returns every document in the catalog, oldest first, including unprocessed ones.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentsResponse
// @Router       /documents [get]
func GetDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		docs, err := handlerInstance.documents.ListDocuments(r.Context())
		if err != nil {
			logRH.Error("Couldn't list documents", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list documents")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToDocumentsResponse(docs))
	}
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document's vectors, its stored file and its catalog entry.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		id := utils.GetChiURLParam(r, "id")
		doc, found := handlerInstance.documents.GetDocument(r.Context(), id)
		if !found {
			WriteErrorResponse(w, http.StatusNotFound, id, "Document not found")
			return
		}

		// vectors first so a half-deleted document can't be retrieved
		if err := handlerInstance.index.DeleteByDocument(r.Context(), id); err != nil {
			logRH.Error("Couldn't delete document vectors", "documentId", id, "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, id, "Could not delete document vectors")
			return
		}
		if doc.StoragePath != "" {
			if err := handlerInstance.blobs.Delete(doc.StoragePath); err != nil {
				logRH.Warn("Couldn't delete stored file", "path", doc.StoragePath, "err", err)
			}
		}
		if err := handlerInstance.documents.DeleteDocument(r.Context(), id); err != nil {
			logRH.Error("Couldn't delete document record", "documentId", id, "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, id, "Could not delete document")
			return
		}

		writeJsonResponse(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
	}
}

// DeleteAllDocumentsHandler godoc
// @Summary      Delete every document
// @Description  Clears the vector index, all stored files and the whole catalog.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /documents [delete]
func DeleteAllDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		docs, err := handlerInstance.documents.ListDocuments(r.Context())
		if err != nil {
			logRH.Error("Couldn't list documents for deletion", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list documents")
			return
		}

		if err := handlerInstance.index.DeleteAll(r.Context()); err != nil {
			logRH.Error("Couldn't clear vector index", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not clear vector index")
			return
		}

		deleted := 0
		for _, doc := range docs {
			if doc.StoragePath != "" {
				if err := handlerInstance.blobs.Delete(doc.StoragePath); err != nil {
					logRH.Warn("Couldn't delete stored file", "path", doc.StoragePath, "err", err)
				}
			}
			if err := handlerInstance.documents.DeleteDocument(r.Context(), doc.Id); err != nil {
				logRH.Error("Couldn't delete document record", "documentId", doc.Id, "err", err)
				continue
			}
			deleted++
		}

		writeJsonResponse(w, http.StatusOK, map[string]string{"status": "deleted", "count": strconv.Itoa(deleted)})
	}
}
