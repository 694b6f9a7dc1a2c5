package ingest

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/internal/metrics"
	"github.com/docuchat/api/pkg/logger_i"
)

// Work is one queued ingestion. SourcePath is the temp file the upload
// handler buffered; the upload step moves it into blob storage.
type Work struct {
	Task       taskModel.IngestionTask
	Document   docModel.Document
	SourcePath string
}

type Service struct {
	TaskChannel       chan Work
	RequestCount      int64
	DispatcherChannel chan bool
	TaskStore         taskModel.TaskStore
	DocumentStore     docModel.DocumentStore

	mu     sync.RWMutex
	active map[string]struct{}
	logger *logger_i.Logger
}

type ServiceConfig struct {
	TaskChannel       chan Work
	DispatcherChannel chan bool
	TaskStore         taskModel.TaskStore
	DocumentStore     docModel.DocumentStore
}

func InitIngestService(cfg ServiceConfig) *Service {
	return &Service{
		TaskChannel:       cfg.TaskChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		TaskStore:         cfg.TaskStore,
		DocumentStore:     cfg.DocumentStore,
		active:            make(map[string]struct{}),
		logger:            logger_i.NewLogger("IngestService"),
	}
}

// Enqueue registers the task as pending and hands it to the worker pool.
// The send is blocking so a full queue backpressures the upload endpoint.
func (s *Service) Enqueue(ctx context.Context, work Work) error {
	work.Task.Status = taskModel.StatusPending
	work.Task.StartedAt = time.Now()
	work.Task.UpdatedAt = work.Task.StartedAt

	if err := s.TaskStore.SaveTask(ctx, work.Task); err != nil {
		return err
	}
	if err := s.DocumentStore.SaveDocument(ctx, work.Document); err != nil {
		return err
	}

	s.markActive(work.Task.Id)
	metrics.IncrementTasksInQueue()
	s.TaskChannel <- work
	s.logger.Info("Queued ingestion task", "taskId", work.Task.Id, "documentId", work.Document.Id)

	// Ingestion involves batch embedding calls that can run for minutes, so
	// every task also nudges the dispatcher the way bursts of requests do.
	accurateCount := atomic.AddInt64(&s.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || len(s.TaskChannel) > 0 {
		metrics.StartDispatcherSignalCount()
		s.DispatcherChannel <- true
	}
	return nil
}

func (s *Service) GetStatus(ctx context.Context, taskId string) (taskModel.IngestionTask, bool) {
	return s.TaskStore.GetTask(ctx, taskId)
}

// ActiveTasks returns the non-terminal tasks ordered by start time.
func (s *Service) ActiveTasks(ctx context.Context) []taskModel.IngestionTask {
	s.mu.RLock()
	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	tasks := make([]taskModel.IngestionTask, 0, len(ids))
	for _, id := range ids {
		task, found := s.TaskStore.GetTask(ctx, id)
		if !found || task.Status.Terminal() {
			s.markDone(id)
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].StartedAt.Equal(tasks[j].StartedAt) {
			return tasks[i].Id < tasks[j].Id
		}
		return tasks[i].StartedAt.Before(tasks[j].StartedAt)
	})
	return tasks
}

func (s *Service) markActive(taskId string) {
	s.mu.Lock()
	s.active[taskId] = struct{}{}
	s.mu.Unlock()
}

func (s *Service) markDone(taskId string) {
	s.mu.Lock()
	delete(s.active, taskId)
	s.mu.Unlock()
}
