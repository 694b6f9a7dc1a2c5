package store

import (
	"context"
	"sync"

	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/pkg/logger_i"
)

var inMemTaskLogger = logger_i.NewLogger("InMem TaskStore")

type InMemoryTaskStore struct {
	taskMutex *sync.RWMutex
	taskMap   map[string]taskModel.IngestionTask
}

func InitInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{
		taskMutex: new(sync.RWMutex),
		taskMap:   make(map[string]taskModel.IngestionTask),
	}
}

func (store *InMemoryTaskStore) SaveTask(ctx context.Context, task taskModel.IngestionTask) error {
	store.taskMutex.Lock()
	defer store.taskMutex.Unlock()
	store.taskMap[task.Id] = task
	inMemTaskLogger.Debug("Saved task snapshot", "taskId", task.Id, "status", task.Status)
	return nil
}

func (store *InMemoryTaskStore) GetTask(ctx context.Context, taskId string) (taskModel.IngestionTask, bool) {
	store.taskMutex.RLock()
	defer store.taskMutex.RUnlock()
	result, found := store.taskMap[taskId]
	return result, found
}

func (store *InMemoryTaskStore) DeleteTask(ctx context.Context, taskId string) {
	store.taskMutex.Lock()
	defer store.taskMutex.Unlock()
	delete(store.taskMap, taskId)
}
