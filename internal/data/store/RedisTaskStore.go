package store

import (
	"context"
	"encoding/json"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/data/redisStore"
	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/pkg/logger_i"
)

type RedisTaskStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisTaskStore(ctx context.Context) *RedisTaskStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisTaskStore)
	if inner == nil {
		return nil
	}
	return &RedisTaskStore{
		store:  inner,
		logger: logger_i.NewLogger("TaskStore"),
	}
}

func (s *RedisTaskStore) SaveTask(ctx context.Context, task taskModel.IngestionTask) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "taskId", task.Id)
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, task.Id, data, config.RedisTaskStoreTTL)
	if err == nil {
		log.Debug("Saved task snapshot to Redis", "status", task.Status, "progress", task.OverallProgress)
	}
	return err
}

func (s *RedisTaskStore) GetTask(ctx context.Context, taskId string) (taskModel.IngestionTask, bool) {
	var task taskModel.IngestionTask
	val, err := s.store.Get(ctx, taskId)
	if s.store.IsNil(err) {
		return task, false
	} else if err != nil {
		return task, false
	}

	if err = json.Unmarshal([]byte(val), &task); err != nil {
		return task, false
	}
	return task, true
}

func (s *RedisTaskStore) DeleteTask(ctx context.Context, taskId string) {
	if err := s.store.Del(ctx, taskId); err != nil {
		s.logger.Error("Error deleting task from Redis", "taskId", taskId, "error", err)
		return
	}
	s.logger.Debug("Task deleted from Redis", "taskId", taskId)
}

func TestTaskStore(store *redisStore.Store) *RedisTaskStore {
	return &RedisTaskStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
