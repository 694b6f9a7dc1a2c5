package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/api/internal/data/store"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/internal/rag/vectorDB"
	"github.com/docuchat/api/internal/storage"
)

type mockEmbedder struct {
	OnEmbedBatch func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

type mockIndex struct {
	Upserted []docModel.ChunkRecord
	OnUpsert func(ctx context.Context, records []docModel.ChunkRecord) error
}

func (m *mockIndex) Upsert(ctx context.Context, records []docModel.ChunkRecord) error {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, records)
	}
	m.Upserted = append(m.Upserted, records...)
	return nil
}

func (m *mockIndex) DeleteByDocument(ctx context.Context, documentId string) error { return nil }
func (m *mockIndex) DeleteAll(ctx context.Context) error                           { return nil }
func (m *mockIndex) Search(ctx context.Context, vector []float32, k int, filter vectorDB.Filter) ([]docModel.ScoredChunk, error) {
	return nil, nil
}

type pipelineFixture struct {
	service  *Service
	pipeline Pipeline
	index    *mockIndex
	embedder *mockEmbedder
	tempDir  string
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	tempDir := t.TempDir()

	blobStore, err := storage.NewLocalStorage(filepath.Join(tempDir, "blobs"))
	require.NoError(t, err)

	service := InitIngestService(ServiceConfig{
		TaskChannel:       make(chan Work, 10),
		DispatcherChannel: make(chan bool, 10),
		TaskStore:         store.InitInMemoryTaskStore(),
		DocumentStore:     store.InitInMemoryDocumentStore(),
	})

	index := &mockIndex{}
	embedder := &mockEmbedder{}
	return &pipelineFixture{
		service:  service,
		pipeline: NewPipeline(service, blobStore, embedder, index),
		index:    index,
		embedder: embedder,
		tempDir:  tempDir,
	}
}

func (f *pipelineFixture) newWork(t *testing.T, content string) Work {
	t.Helper()
	sourcePath := filepath.Join(f.tempDir, "upload.txt")
	require.NoError(t, os.WriteFile(sourcePath, []byte(content), 0640))

	doc := docModel.Document{
		Id:              "doc-1",
		Filename:        "report.txt",
		Confidentiality: docModel.Confidential,
		Department:      "finance",
	}
	// Enqueue persists the Document before the pipeline runs; mirror that here
	// since the fixture hands Work to Run directly.
	require.NoError(t, f.service.DocumentStore.SaveDocument(context.Background(), doc))
	task := taskModel.IngestionTask{Id: "task-1", DocumentId: doc.Id, TraceId: "trace-1"}
	return Work{Task: task, Document: doc, SourcePath: sourcePath}
}

func TestPipeline_Run_Completes(t *testing.T) {
	fixture := newPipelineFixture(t)
	ctx := context.Background()
	work := fixture.newWork(t, strings.Repeat("quarterly revenue grew in every region. ", 40))

	result := fixture.pipeline.Run(ctx, work)

	assert.Equal(t, taskModel.StatusCompleted, result.Status)
	assert.Equal(t, 100, result.OverallProgress)
	assert.Equal(t, 100, result.UploadProgress)
	assert.Equal(t, 100, result.ExtractionProgress)
	assert.Equal(t, 100, result.ChunkingProgress)
	assert.Equal(t, 100, result.VectorizationProgress)
	assert.Nil(t, result.Error)

	doc, found := fixture.service.DocumentStore.GetDocument(ctx, "doc-1")
	require.True(t, found)
	assert.True(t, doc.Processed)
	assert.NotEmpty(t, doc.StoragePath)

	require.NotEmpty(t, fixture.index.Upserted)
	for i, record := range fixture.index.Upserted {
		assert.Equal(t, i, record.Meta.ChunkIndex)
		assert.Equal(t, "doc-1", record.Meta.DocumentId)
		assert.Equal(t, "report.txt", record.Meta.Filename)
		assert.Equal(t, docModel.Confidential, record.Meta.Confidentiality)
		assert.NotEmpty(t, record.Id)
		assert.NotEmpty(t, record.Text)
	}

	// temp upload is cleaned up once the blob is stored
	_, statErr := os.Stat(work.SourcePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipeline_Run_UploadFailureIsRetryable(t *testing.T) {
	fixture := newPipelineFixture(t)
	ctx := context.Background()
	work := fixture.newWork(t, "some content")
	work.SourcePath = filepath.Join(fixture.tempDir, "does-not-exist.txt")

	result := fixture.pipeline.Run(ctx, work)

	assert.Equal(t, taskModel.StatusFailed, result.Status)
	require.NotNil(t, result.Error)
	assert.True(t, result.Error.Retry)
	assert.Equal(t, 0, result.OverallProgress)

	doc, found := fixture.service.DocumentStore.GetDocument(ctx, "doc-1")
	require.True(t, found)
	assert.False(t, doc.Processed)
}

func TestPipeline_Run_EmptyDocumentFailsChunking(t *testing.T) {
	fixture := newPipelineFixture(t)
	ctx := context.Background()
	work := fixture.newWork(t, "")

	result := fixture.pipeline.Run(ctx, work)

	assert.Equal(t, taskModel.StatusFailed, result.Status)
	require.NotNil(t, result.Error)
	assert.False(t, result.Error.Retry)
	assert.Contains(t, result.Error.Message, "no extractable text")

	// progress of the completed steps survives the failure
	assert.Equal(t, 100, result.UploadProgress)
	assert.Equal(t, 100, result.ExtractionProgress)
	assert.Equal(t, 0, result.ChunkingProgress)
	assert.Equal(t, 50, result.OverallProgress)

	doc, found := fixture.service.DocumentStore.GetDocument(ctx, "doc-1")
	require.True(t, found)
	assert.False(t, doc.Processed)
}

func TestPipeline_Run_EmbeddingFailureIsRetryable(t *testing.T) {
	fixture := newPipelineFixture(t)
	fixture.embedder.OnEmbedBatch = func(ctx context.Context, chunks []string) ([][]float32, error) {
		return nil, errors.New("quota exhausted")
	}
	ctx := context.Background()
	work := fixture.newWork(t, strings.Repeat("text to embed ", 100))

	result := fixture.pipeline.Run(ctx, work)

	assert.Equal(t, taskModel.StatusFailed, result.Status)
	require.NotNil(t, result.Error)
	assert.True(t, result.Error.Retry)
	assert.Equal(t, 100, result.ChunkingProgress)
	assert.Equal(t, 0, result.VectorizationProgress)
	assert.Equal(t, 75, result.OverallProgress)
	assert.Empty(t, fixture.index.Upserted)
}

func TestPipeline_Run_SnapshotsReachTaskStore(t *testing.T) {
	fixture := newPipelineFixture(t)
	ctx := context.Background()
	work := fixture.newWork(t, strings.Repeat("searchable paragraph ", 60))

	fixture.pipeline.Run(ctx, work)

	stored, found := fixture.service.TaskStore.GetTask(ctx, "task-1")
	require.True(t, found)
	assert.Equal(t, taskModel.StatusCompleted, stored.Status)
	assert.Equal(t, 100, stored.OverallProgress)
	assert.False(t, stored.CompletedAt.IsZero())
}
