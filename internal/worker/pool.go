package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Debug("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg := <-w.tasksChan:
			w.handleMessage(ctx, workerName, msg)
		}
	}
}

// handleMessage processes one task and settles its delivery
func (w *Worker) handleMessage(ctx context.Context, workerName string, msg *taskMessage) {
	w.logger.Info("Worker received task",
		slog.String("worker_name", workerName),
		slog.String("task_id", msg.TaskID),
		slog.Uint64("delivery_tag", msg.delivery.DeliveryTag),
	)

	started := time.Now()
	err := w.processTask(ctx, msg)
	if err == nil {
		w.metrics.observe(outcomeAcked, started)
		if ackErr := msg.delivery.Ack(false); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("task_id", msg.TaskID),
				slog.Any("error", ackErr),
			)
		}
		return
	}

	requeue := shouldRequeueTask(err)
	if requeue {
		w.metrics.observe(outcomeRequeued, started)
	} else {
		w.metrics.observe(outcomeDropped, started)
	}
	w.logger.Warn("Task processing did not complete",
		slog.String("worker_name", workerName),
		slog.String("task_id", msg.TaskID),
		slog.Bool("requeue", requeue),
		slog.Any("error", err),
	)

	if nackErr := msg.delivery.Nack(false, requeue); nackErr != nil {
		w.logger.Error("Failed to NACK message",
			slog.String("task_id", msg.TaskID),
			slog.Any("error", nackErr),
		)
	}
}

// shouldRequeueTask determines if a task should be requeued based on the error type
func shouldRequeueTask(err error) bool {
	switch {
	case errors.Is(err, domain.ErrTaskAlreadyClaimed),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrMaxRetriesExceeded),
		errors.Is(err, domain.ErrInvalidMessage):
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
