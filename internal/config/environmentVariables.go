package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//auth
	NoAuthBypass = true //flip for deployments with a real token
	AuthToken    = "local-dev-token"

	//embeddings
	EmbeddingOutputDimensionality int32 = 1536
	GoogleEmbeddingModel                = "gemini-embedding-001"
	EmbeddingBatchSize                  = 100

	//chunking
	ChunkMaxLen  = 500
	ChunkOverlap = 50

	//retrieval
	DocumentsCollection   = "documents"
	AnswerCacheCollection = "answer-cache"
	CacheSimilarityCutoff = 0.97
	HybridMinSelected     = 3 //selected-set hits required before hybrid fills from the full index
	MinChunks             = 3
	MaxChunks             = 25

	//models
	DefaultLocalModel    = "mistral"
	DefaultExternalModel = "gpt-4o-mini"
	OllamaBaseURL        = "http://localhost:11434"

	//worker pool (ingestion)
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts - WriteTimeout is generous because /chat streams
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 5 * time.Minute
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//ingestion task buffer limit
	BufferLimit = 100

	//timeouts for one ingestion step / one chat turn
	IngestStepTimeout = 5 * time.Minute
	ChatTurnTimeout   = 5 * time.Minute

	//vectorDB
	QdrantHost             = ""
	QdrantPort             = 6333 //http
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DBs we can use
	RedisTaskStore     = 0
	RedisMessageStore  = 1
	RedisSessionStore  = 2
	RedisDocumentStore = 3

	//redis timeouts
	RedisTaskStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL  = time.Duration(0) //messages live until their session is deleted
	RedisSessionStoreTTL  = time.Duration(0)
	RedisDocumentStoreTTL = time.Duration(0)
)

// Secrets and paths come from the environment (godotenv loads .env in main).
func GoogleAPIKey() string { return os.Getenv("GOOGLE_API_KEY") }
func OpenAIAPIKey() string { return os.Getenv("OPENAI_API_KEY") }

func UploadDir() string { return envOr("UPLOAD_DIR", "temporary_data") }

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
