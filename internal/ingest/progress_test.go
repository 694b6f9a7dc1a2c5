package ingest

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/api/internal/data/redisStore"
	"github.com/docuchat/api/internal/data/store"
	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/pkg/logger_i"
)

// A step timeout expires the pipeline context; the terminal snapshot must
// still reach the production store.
func TestTracker_FailPersistsTerminalStateOnExpiredContext(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	taskStore := store.TestTaskStore(redisStore.NewTestStore(client))

	task := taskModel.IngestionTask{Id: "task-1", DocumentId: "doc-1", Status: taskModel.StatusPending}
	tracker := newTracker(task, taskStore, logger_i.NewLogger("test"))

	ctx, cancel := context.WithCancel(context.Background())
	tracker.enterStep(ctx, taskModel.StepVectorization)
	cancel()

	tracker.fail(ctx, "embedding chunks: context deadline exceeded", true)

	saved, found := taskStore.GetTask(context.Background(), "task-1")
	require.True(t, found)
	assert.Equal(t, taskModel.StatusFailed, saved.Status)
	require.NotNil(t, saved.Error)
	assert.True(t, saved.Error.Retry)
	assert.False(t, saved.CompletedAt.IsZero())
}

func TestTracker_CompletePersistsOnExpiredContext(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	taskStore := store.TestTaskStore(redisStore.NewTestStore(client))

	task := taskModel.IngestionTask{Id: "task-2", DocumentId: "doc-2", Status: taskModel.StatusVectorizing}
	tracker := newTracker(task, taskStore, logger_i.NewLogger("test"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tracker.complete(ctx)

	saved, found := taskStore.GetTask(context.Background(), "task-2")
	require.True(t, found)
	assert.Equal(t, taskModel.StatusCompleted, saved.Status)
	assert.Equal(t, 100, saved.OverallProgress)
}
