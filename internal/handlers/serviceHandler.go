package handlers

import (
	"context"
	"sync"

	"github.com/docuchat/api/internal/chat"
	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/internal/ingest"
	"github.com/docuchat/api/internal/rag/vectorDB"
	"github.com/docuchat/api/internal/storage"
	"github.com/docuchat/api/pkg/logger_i"
)

var (
	handlerInstance *ServiceHandler //private singleton
	once            sync.Once
	logRH           *logger_i.Logger
	logCH           *logger_i.Logger
)

type ServiceHandler struct {
	ingest    *ingest.Service
	chat      chat.Service
	documents docModel.DocumentStore
	index     vectorDB.Index
	blobs     storage.BlobStorage
}

func InitHandlers(ingestService *ingest.Service, chatService chat.Service, documents docModel.DocumentStore, index vectorDB.Index, blobs storage.BlobStorage) {
	once.Do(func() {
		handlerInstance = &ServiceHandler{
			ingest:    ingestService,
			chat:      chatService,
			documents: documents,
			index:     index,
			blobs:     blobs,
		}

		logRH = logger_i.NewLogger("RequestHandler")
		logCH = logger_i.NewLogger("ChatHandler")
		logRH.Info("Starting request handlers")
	})

}

func GetTaskStatus(id string, traceId string) (result taskModel.IngestionTask, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.ingest.GetStatus(ctxC, id)
	}
	return result, false
}
