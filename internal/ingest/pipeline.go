package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docuchat/api/internal/adapter/utils"
	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/internal/metrics"
	"github.com/docuchat/api/internal/rag/chunker"
	"github.com/docuchat/api/internal/rag/embedding"
	"github.com/docuchat/api/internal/rag/vectorDB"
	"github.com/docuchat/api/internal/storage"
	"github.com/docuchat/api/pkg/logger_i"
)

// Pipeline runs one ingestion end to end: upload, extraction, chunking,
// vectorization. Run never panics the worker; failures land on the task.
type Pipeline interface {
	Run(ctx context.Context, work Work) taskModel.IngestionTask
}

type pipeline struct {
	service  *Service
	storage  storage.BlobStorage
	embedder embedding.Embedder
	index    vectorDB.Index
	logger   *logger_i.Logger
}

func NewPipeline(service *Service, blobStore storage.BlobStorage, embedder embedding.Embedder, index vectorDB.Index) Pipeline {
	return &pipeline{
		service:  service,
		storage:  blobStore,
		embedder: embedder,
		index:    index,
		logger:   logger_i.NewLogger("IngestPipeline"),
	}
}

func (p *pipeline) Run(ctx context.Context, work Work) taskModel.IngestionTask {
	start := time.Now()
	tracker := newTracker(work.Task, p.service.TaskStore, p.logger)
	defer func() {
		p.service.markDone(work.Task.Id)
		metrics.CaptureTaskMetrics(string(tracker.snapshot().Status), time.Since(start))
	}()

	doc := work.Document

	storagePath, err := p.runUpload(ctx, tracker, &doc, work.SourcePath)
	if err != nil {
		tracker.fail(ctx, err.Error(), true)
		return tracker.snapshot()
	}

	text, err := p.runExtraction(ctx, tracker, storagePath)
	if err != nil {
		tracker.fail(ctx, err.Error(), false)
		return tracker.snapshot()
	}

	chunks, err := p.runChunking(ctx, tracker, text)
	if err != nil {
		tracker.fail(ctx, err.Error(), false)
		return tracker.snapshot()
	}

	if err := p.runVectorization(ctx, tracker, doc, chunks); err != nil {
		tracker.fail(ctx, err.Error(), true)
		return tracker.snapshot()
	}

	doc.Processed = true
	if err := p.service.DocumentStore.SaveDocument(ctx, doc); err != nil {
		tracker.fail(ctx, fmt.Sprintf("marking document processed: %v", err), true)
		return tracker.snapshot()
	}

	tracker.complete(ctx)
	p.logger.Info("Ingestion completed", "taskId", work.Task.Id, "documentId", doc.Id, "chunks", len(chunks))
	return tracker.snapshot()
}

// runUpload moves the buffered upload into blob storage and records the
// final path on the document.
func (p *pipeline) runUpload(ctx context.Context, tracker *tracker, doc *docModel.Document, sourcePath string) (string, error) {
	defer func(t time.Time) { metrics.CaptureStepMetrics(string(taskModel.StepUpload), time.Since(t)) }(time.Now())
	tracker.enterStep(ctx, taskModel.StepUpload)

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	tracker.setStepProgress(ctx, 50)

	path, err := p.storage.Save(doc.Filename, data)
	if err != nil {
		return "", fmt.Errorf("storing upload: %w", err)
	}
	if removeErr := os.Remove(sourcePath); removeErr != nil && !os.IsNotExist(removeErr) {
		p.logger.Warn("Couldn't remove temp upload", "path", sourcePath, "err", removeErr)
	}

	doc.StoragePath = path
	if err := p.service.DocumentStore.SaveDocument(ctx, *doc); err != nil {
		return "", fmt.Errorf("saving document record: %w", err)
	}
	tracker.setStepProgress(ctx, 100)
	return path, nil
}

func (p *pipeline) runExtraction(ctx context.Context, tracker *tracker, storagePath string) (string, error) {
	defer func(t time.Time) { metrics.CaptureStepMetrics(string(taskModel.StepExtraction), time.Since(t)) }(time.Now())
	tracker.enterStep(ctx, taskModel.StepExtraction)

	text, err := p.storage.ReadText(storagePath)
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	tracker.setStepProgress(ctx, 100)
	return text, nil
}

func (p *pipeline) runChunking(ctx context.Context, tracker *tracker, text string) ([]string, error) {
	defer func(t time.Time) { metrics.CaptureStepMetrics(string(taskModel.StepChunking), time.Since(t)) }(time.Now())
	tracker.enterStep(ctx, taskModel.StepChunking)

	chunks, err := chunker.Chunk(text, config.ChunkMaxLen, config.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunking text: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document has no extractable text")
	}
	tracker.setStepProgress(ctx, 100)
	return chunks, nil
}

// runVectorization embeds in batches so progress moves between external
// calls rather than jumping from 0 to 100.
func (p *pipeline) runVectorization(ctx context.Context, tracker *tracker, doc docModel.Document, chunks []string) error {
	defer func(t time.Time) {
		metrics.CaptureStepMetrics(string(taskModel.StepVectorization), time.Since(t))
	}(time.Now())
	tracker.enterStep(ctx, taskModel.StepVectorization)

	batchSize := config.EmbeddingBatchSize
	batchCount := (len(chunks) + batchSize - 1) / batchSize
	records := make([]docModel.ChunkRecord, 0, len(chunks))

	for batch := 0; batch < batchCount; batch++ {
		startIdx := batch * batchSize
		endIdx := min(startIdx+batchSize, len(chunks))

		vectors, err := p.embedder.EmbedBatch(ctx, chunks[startIdx:endIdx])
		if err != nil {
			return fmt.Errorf("embedding batch %d: %w", batch+1, err)
		}

		for i, vector := range vectors {
			chunkIndex := startIdx + i
			records = append(records, docModel.ChunkRecord{
				Id:     utils.GetNewUUID(),
				Text:   chunks[chunkIndex],
				Vector: vector,
				Meta: docModel.ChunkMeta{
					DocumentId:      doc.Id,
					Filename:        doc.Filename,
					Confidentiality: doc.Confidentiality,
					Department:      doc.Department,
					Client:          doc.Client,
					ChunkIndex:      chunkIndex,
				},
			})
		}

		// Hold the last few points of the band for the index write.
		tracker.setStepProgress(ctx, (batch+1)*90/batchCount)
	}

	if err := p.index.Upsert(ctx, records); err != nil {
		return fmt.Errorf("upserting vectors: %w", err)
	}
	tracker.setStepProgress(ctx, 100)
	return nil
}
