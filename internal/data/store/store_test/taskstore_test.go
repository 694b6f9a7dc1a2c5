package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/data/redisStore"
	"github.com/docuchat/api/internal/data/store"
	"github.com/docuchat/api/internal/domain/taskModel"
)

func TestRedisTaskStore_Lifecycle(t *testing.T) {
	// 1. Start miniredis
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	internalStore := redisStore.NewTestStore(client)
	taskStore := store.TestTaskStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	taskID := "task_abc_123"

	testTask := taskModel.IngestionTask{
		Id:              taskID,
		DocumentId:      "doc_1",
		Status:          taskModel.StatusVectorizing,
		CurrentStep:     taskModel.StepVectorization,
		OverallProgress: 80,
		UploadProgress:  100,
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		// Test Save
		err := taskStore.SaveTask(ctx, testTask)
		if err != nil {
			t.Fatalf("SaveTask failed: %v", err)
		}

		// Test Get
		retrievedTask, found := taskStore.GetTask(ctx, taskID)
		if !found {
			t.Fatal("Task was saved but not found in Redis")
		}

		if retrievedTask.OverallProgress != testTask.OverallProgress {
			t.Errorf("Data mismatch! Got %d, want %d",
				retrievedTask.OverallProgress, testTask.OverallProgress)
		}
		if retrievedTask.Status != taskModel.StatusVectorizing {
			t.Errorf("Status mismatch! Got %s, want %s", retrievedTask.Status, taskModel.StatusVectorizing)
		}
	})

	t.Run("Get Non-Existent Task", func(t *testing.T) {
		_, found := taskStore.GetTask(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Task", func(t *testing.T) {
		taskStore.DeleteTask(ctx, taskID)

		// Verify it's gone from miniredis
		if mr.Exists(taskID) {
			t.Error("Task still exists in Redis after DeleteTask call")
		}
	})
}

func TestRedisTaskStore_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	taskStore := store.TestTaskStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	task := taskModel.IngestionTask{Id: "race-task"}

	const workers = 50
	for i := 0; i < workers; i++ {
		go func() {
			_ = taskStore.SaveTask(ctx, task)
			_, _ = taskStore.GetTask(ctx, "race-task")
		}()
	}
}
