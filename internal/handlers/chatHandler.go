package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/docuchat/api/internal/adapter"
	"github.com/docuchat/api/internal/adapter/utils"
	"github.com/docuchat/api/internal/api"
	"github.com/docuchat/api/internal/chat"
	"github.com/docuchat/api/internal/domain/chatModel"
	"github.com/docuchat/api/internal/security"
)

// ChatHandler godoc
// @Summary      Run a chat turn with streaming
// @Description  Accepts a message for an existing session and streams the answer back as newline-delimited JSON events: content deltas, one sources event, then done or error.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest  true  "Session ID, message, optional model / search mode / attached document IDs"
// @Success      200      {object}  chatModel.StreamEvent  "NDJSON event stream"
// @Failure      400      {object}  api.ErrorResponse      "Invalid request or search mode"
// @Failure      403      {object}  api.ErrorResponse      "External model paired with confidential attachments"
// @Failure      404      {object}  api.ErrorResponse      "Session not found"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.ChatRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logCH.Error("Couldn't close the Chat handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
			logCH.Warn("Bad Chat Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionId, "Bad Request")
			return
		}

		mode, validMode := chatModel.ParseSearchMode(requestData.SearchMode)
		if !validMode {
			WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionId, "Unknown search mode")
			return
		}

		events, err := handlerInstance.chat.StreamTurn(request.Context(), chat.TurnRequest{
			SessionId:   requestData.SessionId,
			Message:     requestData.Message,
			Model:       requestData.Model,
			Mode:        mode,
			DocumentIDs: requestData.DocumentIDs,
		})
		if err != nil {
			writeChatError(w, requestData.SessionId, err)
			return
		}

		streamEvents(w, events)
		return
	}
	logCH.Warn("Invalid Context by request ", request.RemoteAddr)
}

func writeChatError(w http.ResponseWriter, sessionId string, err error) {
	var accessErr *security.AccessError
	switch {
	case errors.As(err, &accessErr):
		WriteErrorResponse(w, http.StatusForbidden, sessionId, accessErr.Error())
	case errors.Is(err, chat.ErrSessionNotFound):
		WriteErrorResponse(w, http.StatusNotFound, sessionId, "Session not found")
	case errors.Is(err, chat.ErrEmptyMessage):
		WriteErrorResponse(w, http.StatusBadRequest, sessionId, "Message must not be empty")
	default:
		logCH.Error("Chat turn failed before streaming", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, sessionId, "Could not start chat turn")
	}
}

// streamEvents writes one JSON object per line and flushes after each so
// clients see deltas as they are generated.
func streamEvents(w http.ResponseWriter, events <-chan chatModel.StreamEvent) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	encoder := json.NewEncoder(w)
	for event := range events {
		if err := encoder.Encode(event); err != nil {
			logCH.Error("Couldn't write stream event", "err", err)
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
}

// PostSessionHandler godoc
// @Summary      Create a chat session
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request  body      api.CreateSessionRequest  true  "Optional title and model"
// @Success      201      {object}  api.SessionResponse
// @Failure      400      {object}  api.ErrorResponse
// @Router       /sessions [post]
func PostSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		var requestData api.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil && !errors.Is(err, io.EOF) {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}

		session, err := handlerInstance.chat.CreateSession(r.Context(), requestData.Title, requestData.Model)
		if err != nil {
			logCH.Error("Couldn't create session", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not create session")
			return
		}
		writeJsonResponse(w, http.StatusCreated, adapter.ToSessionResponse(session))
	}
}

// GetSessionHandler godoc
// @Summary      Get a chat session
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.SessionResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /sessions/{id} [get]
func GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		id := utils.GetChiURLParam(r, "id")
		session, found := handlerInstance.chat.GetSession(r.Context(), id)
		if !found {
			WriteErrorResponse(w, http.StatusNotFound, id, "Session not found")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(session))
	}
}

// GetSessionMessagesHandler godoc
// @Summary      Get the message history of a session
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.SessionMessagesResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /sessions/{id}/messages [get]
func GetSessionMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		id := utils.GetChiURLParam(r, "id")
		messages, err := handlerInstance.chat.History(r.Context(), id)
		if err != nil {
			if errors.Is(err, chat.ErrSessionNotFound) {
				WriteErrorResponse(w, http.StatusNotFound, id, "Session not found")
				return
			}
			logCH.Error("Couldn't load session history", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, id, "Could not load history")
			return
		}
		writeJsonResponse(w, http.StatusOK, api.SessionMessagesResponse{SessionId: id, Messages: messages})
	}
}

// DeleteSessionHandler godoc
// @Summary      Delete a chat session and its messages
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  api.ErrorResponse
// @Router       /sessions/{id} [delete]
func DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		id := utils.GetChiURLParam(r, "id")
		if err := handlerInstance.chat.DeleteSession(r.Context(), id); err != nil {
			if errors.Is(err, chat.ErrSessionNotFound) {
				WriteErrorResponse(w, http.StatusNotFound, id, "Session not found")
				return
			}
			logCH.Error("Couldn't delete session", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, id, "Could not delete session")
			return
		}
		writeJsonResponse(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
	}
}
