package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard/internal/analysis"
	"github.com/cuongbtq/jobboard/internal/worker/domain"
)

// processTask claims a task, runs its analysis with timeout and heartbeat,
// and records the outcome
func (w *Worker) processTask(ctx context.Context, msg *taskMessage) error {
	task, err := w.storage.ClaimTask(ctx, msg.TaskID, w.workerID, w.staleAfter)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskInProgress):
			// the owner may have died; come back once its heartbeat can go stale
			w.pause(ctx, w.heartbeatInterval)
			return domain.NewRetryableError(err)
		case errors.Is(err, domain.ErrTaskAlreadyClaimed), errors.Is(err, domain.ErrTaskNotFound):
			return fmt.Errorf("task %s not claimable: %w", msg.TaskID, err)
		default:
			return domain.NewRetryableError(fmt.Errorf("failed to claim task: %w", err))
		}
	}

	if task.RetryCount > task.MaxRetries {
		return w.handleFailure(context.WithoutCancel(ctx), task, domain.ErrTaskAbandoned)
	}

	taskCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	heartbeatDone := make(chan struct{})
	go w.sendTaskHeartbeat(taskCtx, task.TaskID, heartbeatDone)

	_, err = w.analyzer.Analyze(taskCtx, task.ApplicationID)
	close(heartbeatDone)

	// bookkeeping must survive shutdown of the worker context
	storeCtx := context.WithoutCancel(ctx)

	if err == nil {
		if updateErr := w.storage.CompleteTask(storeCtx, task.TaskID); updateErr != nil {
			w.logger.Error("Failed to mark task COMPLETED",
				slog.String("task_id", task.TaskID),
				slog.Any("error", updateErr),
			)
		}
		w.logger.Info("Task completed successfully",
			slog.String("task_id", task.TaskID),
			slog.String("application_id", task.ApplicationID),
		)
		return nil
	}

	if ctx.Err() != nil {
		// shutting down: leave the task RUNNING so it is reclaimed once stale
		return domain.NewRetryableError(fmt.Errorf("task interrupted: %w", err))
	}

	return w.handleFailure(storeCtx, task, err)
}

func (w *Worker) handleFailure(ctx context.Context, task *domain.Task, cause error) error {
	permanent := errors.Is(cause, analysis.ErrApplicationNotFound)

	if !permanent && task.RetryCount < task.MaxRetries {
		w.logger.Info("Task will be retried",
			slog.String("task_id", task.TaskID),
			slog.Int("retry_count", task.RetryCount),
			slog.Int("max_retries", task.MaxRetries),
			slog.Any("error", cause),
		)
		if err := w.storage.RetryTask(ctx, task.TaskID, cause.Error()); err != nil {
			w.logger.Error("Failed to reschedule task",
				slog.String("task_id", task.TaskID),
				slog.Any("error", err),
			)
		}
		return domain.NewRetryableError(fmt.Errorf("analysis failed: %w", cause))
	}

	if err := w.storage.FailTask(ctx, task.TaskID, task.ApplicationID, cause.Error()); err != nil {
		w.logger.Error("Failed to mark task FAILED",
			slog.String("task_id", task.TaskID),
			slog.Any("error", err),
		)
		// redeliver so the task is reclaimed once stale and the failure recorded
		return domain.NewRetryableError(fmt.Errorf("failed to record task failure: %w", err))
	}

	if permanent {
		return fmt.Errorf("analysis failed permanently: %w", cause)
	}
	return fmt.Errorf("%w: %v", domain.ErrMaxRetriesExceeded, cause)
}

// sendTaskHeartbeat periodically updates the task's heartbeat timestamp
func (w *Worker) sendTaskHeartbeat(ctx context.Context, taskID string, done <-chan struct{}) {
	ticker := time.NewTicker(w.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.storage.UpdateHeartbeat(ctx, taskID); err != nil {
				w.logger.Warn("Failed to update task heartbeat",
					slog.String("task_id", taskID),
					slog.Any("error", err),
				)
			}
		}
	}
}

func (w *Worker) pause(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-w.stopChan:
	}
}
