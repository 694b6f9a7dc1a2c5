package worker

import (
	"context"
	"sync/atomic"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/domain/taskModel"
	"github.com/docuchat/api/internal/ingest"
	"github.com/docuchat/api/internal/metrics"
)

func executeTask(work ingest.Work) {
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, work.Task.TraceId)

	// One ingestion can spend minutes in batch embedding calls; the step
	// timeout bounds the whole run rather than each step individually.
	ctx, cancel := context.WithTimeout(ctxTrace, config.IngestStepTimeout)
	defer cancel()

	logger.Debug("Processing ingestion task:", "taskId:", work.Task.Id)
	result := _pipeline.Run(ctx, work)

	if result.Status == taskModel.StatusFailed {
		logger.Warn("Ingestion task failed", "taskId", result.Id, "error", result.Error)
	}
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}
