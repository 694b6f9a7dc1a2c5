package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docuchat/api/internal/chat"
	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/data/store"
	"github.com/docuchat/api/internal/domain/chatModel"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/internal/handlers"
	"github.com/docuchat/api/internal/ingest"
	"github.com/docuchat/api/internal/rag/embedding/googleEmbedding"
	"github.com/docuchat/api/internal/rag/llm"
	"github.com/docuchat/api/internal/rag/llm/ollamaLLM"
	"github.com/docuchat/api/internal/rag/llm/openaiLLM"
	"github.com/docuchat/api/internal/rag/retrieval"
	"github.com/docuchat/api/internal/rag/vectorDB"
	"github.com/docuchat/api/internal/rag/vectorDB/qdrantDB"
	"github.com/docuchat/api/internal/server"
	"github.com/docuchat/api/internal/storage"
	"github.com/docuchat/api/internal/worker"
	"github.com/docuchat/api/pkg/logger_i"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	//.env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered ingestion channel
	taskChannel := make(chan ingest.Work, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//stores fall back to memory when redis is offline
	var taskStore taskModel.TaskStore
	if redisTasks := store.GetRedisTaskStore(serviceContext); redisTasks != nil {
		taskStore = redisTasks
	} else {
		logger.Error("Redis task store is offline, using in-memory store")
		taskStore = store.InitInMemoryTaskStore()
	}

	var documentStore docModel.DocumentStore
	if redisDocs := store.GetRedisDocumentStore(serviceContext); redisDocs != nil {
		documentStore = redisDocs
	} else {
		logger.Error("Redis document store is offline, using in-memory store")
		documentStore = store.InitInMemoryDocumentStore()
	}

	var sessionStore chatModel.SessionStore
	if redisSessions := store.GetRedisSessionStore(serviceContext); redisSessions != nil {
		sessionStore = redisSessions
	} else {
		logger.Error("Redis session store is offline, using in-memory store")
		sessionStore = store.InitInMemorySessionStore()
	}

	var messageStore chatModel.MessageStore
	if redisMessages := store.GetRedisMessageStore(serviceContext); redisMessages != nil {
		messageStore = redisMessages
	} else {
		logger.Error("Redis message store is offline, using in-memory store")
		messageStore = store.InitInMemoryMessageStore()
	}

	blobStore, err := storage.NewLocalStorage(config.UploadDir())
	if err != nil {
		logger.Error("Couldn't initialize blob storage. Shutting down.", "err", err)
		return
	}

	vectorIndex := qdrantDB.GetQdrantClient(serviceContext)
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey())

	if vectorIndex == nil || embeddingService == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorIndex != nil, "EmbeddingService", embeddingService != nil)
		return
	}

	localGateway := ollamaLLM.GetOllamaGateway()
	externalGateway := openaiLLM.GetOpenAIGateway(serviceContext)
	if externalGateway == nil {
		logger.Warn("External model gateway unavailable, only local models will answer")
	}
	gateway := llm.NewRouter(localGateway, externalGateway)

	logger.Info("Starting ingestion service")
	ingestService := ingest.InitIngestService(ingest.ServiceConfig{
		TaskChannel:       taskChannel,
		DispatcherChannel: dispatcherChannel,
		TaskStore:         taskStore,
		DocumentStore:     documentStore,
	})
	pipeline := ingest.NewPipeline(ingestService, blobStore, embeddingService, vectorIndex)

	chatService := chat.NewService(chat.ServiceConfig{
		Sessions:  sessionStore,
		Messages:  messageStore,
		Documents: documentStore,
		Planner:   retrieval.NewPlanner(vectorIndex, embeddingService),
		Gateway:   gateway,
		Embedder:  embeddingService,
		Cache:     answerCache(vectorIndex),
	})

	handlers.InitHandlers(ingestService, chatService, documentStore, vectorIndex, blobStore)

	//init worker pool
	worker.InitServices(ingestService, pipeline)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// answerCache avoids handing a typed nil to the chat service when qdrant is
// unavailable.
func answerCache(index *qdrantDB.ClientHolder) vectorDB.AnswerCache {
	if index == nil {
		return nil
	}
	return index
}
