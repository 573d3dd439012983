// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"reviewgate/internal/common/config"
	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes or fails the job itself and returns the error it
// failed with, if any.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// JobRecorder receives per-job telemetry.
type JobRecorder interface {
	RecordJobProcessed(ctx context.Context, taskType, status string)
	RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string)
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. Returns nil when the worker is
// disabled in cfg.
func NewWorker(client zbc.Client, taskType string, cfg config.WorkerConfig, handler JobHandler, rec JobRecorder, log logger.Logger) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})
	if !cfg.Enabled {
		log.Info("worker disabled", nil)
		return nil
	}

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler, rec, log)).
		MaxJobsActive(cfg.MaxJobsActive)
	if cfg.Timeout > 0 {
		step = step.Timeout(config.GetDuration(cfg.Timeout))
	}

	w := &CamundaWorker{
		worker:   step.Open(),
		logger:   log,
		taskType: taskType,
	}
	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": cfg.MaxJobsActive,
		"timeout_ms":    cfg.Timeout,
	})
	return w
}

// instrument adapts handler to the Zeebe callback and records metrics.
func instrument(taskType string, handler JobHandler, rec JobRecorder, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		status := "completed"
		if err := handler.Handle(client, job); err != nil {
			status = "failed"
			code := string(errors.Normalize(err).Code)
			metrics.WorkerJobsFailed.WithLabelValues(taskType, code).Inc()
			log.Warn("job failed", map[string]interface{}{
				"jobKey":    job.Key,
				"errorCode": code,
			})
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		if rec != nil {
			ctx := context.Background()
			rec.RecordJobProcessed(ctx, taskType, status)
			rec.RecordJobDuration(ctx, taskType, elapsed, status)
		}
	}
}

func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
