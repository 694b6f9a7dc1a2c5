package ingest

import (
	"context"
	"time"

	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/pkg/logger_i"
)

// tracker owns all writes to one task for the duration of a pipeline run.
// Overall progress never moves backwards, even when a step reports a lower
// local value than a previous snapshot implied.
type tracker struct {
	task   taskModel.IngestionTask
	store  taskModel.TaskStore
	logger *logger_i.Logger
}

func newTracker(task taskModel.IngestionTask, store taskModel.TaskStore, logger *logger_i.Logger) *tracker {
	return &tracker{task: task, store: store, logger: logger}
}

func (t *tracker) enterStep(ctx context.Context, step taskModel.Step) {
	t.task.CurrentStep = step
	t.task.Status = taskModel.StatusForStep(step)
	t.setStepProgress(ctx, 0)
}

// setStepProgress records the active step's local progress and derives the
// overall value from it.
func (t *tracker) setStepProgress(ctx context.Context, local int) {
	if local < 0 {
		local = 0
	}
	if local > 100 {
		local = 100
	}

	switch t.task.CurrentStep {
	case taskModel.StepUpload:
		t.task.UploadProgress = local
	case taskModel.StepExtraction:
		t.task.ExtractionProgress = local
	case taskModel.StepChunking:
		t.task.ChunkingProgress = local
	case taskModel.StepVectorization:
		t.task.VectorizationProgress = local
	}

	overall := taskModel.OverallProgress(t.task.CurrentStep, local)
	if overall > t.task.OverallProgress {
		t.task.OverallProgress = overall
	}
	t.save(ctx)
}

// fail freezes the task with whatever progress it reached. The step-local
// progress of completed steps is preserved for the status endpoint. Terminal
// saves run on a detached context so a step timeout cannot leave the task
// stuck in a non-terminal status.
func (t *tracker) fail(ctx context.Context, message string, retry bool) {
	t.task.Status = taskModel.StatusFailed
	t.task.Error = &taskModel.TaskError{Message: message, Retry: retry}
	t.task.CompletedAt = time.Now()
	t.save(context.WithoutCancel(ctx))
}

func (t *tracker) complete(ctx context.Context) {
	t.task.Status = taskModel.StatusCompleted
	t.task.OverallProgress = 100
	t.task.CompletedAt = time.Now()
	t.save(context.WithoutCancel(ctx))
}

func (t *tracker) snapshot() taskModel.IngestionTask {
	return t.task
}

func (t *tracker) save(ctx context.Context) {
	t.task.UpdatedAt = time.Now()
	if err := t.store.SaveTask(ctx, t.task); err != nil {
		t.logger.Error("Failed to persist task snapshot", "taskId", t.task.Id, "err", err)
	}
}
