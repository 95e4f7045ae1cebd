// Package worker consumes analysis tasks from RabbitMQ and runs them on a
// fixed pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobboard/internal/analysis"
	"github.com/cuongbtq/jobboard/internal/worker/domain"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

// TaskStore is the task bookkeeping the worker needs
type TaskStore interface {
	ClaimTask(ctx context.Context, taskID, workerID string, staleAfter time.Duration) (*domain.Task, error)
	CompleteTask(ctx context.Context, taskID string) error
	RetryTask(ctx context.Context, taskID, errorMsg string) error
	FailTask(ctx context.Context, taskID, applicationID, errorMsg string) error
	UpdateHeartbeat(ctx context.Context, taskID string) error
}

// Analyzer runs one application analysis
type Analyzer interface {
	Analyze(ctx context.Context, applicationID string) (*analysis.Result, error)
}

// Consumer delivers queue messages with manual acknowledgement
type Consumer interface {
	Consume(consumerTag string, prefetchCount int) (<-chan amqp.Delivery, error)
	QueueName() string
}

// Config holds worker configuration
type Config struct {
	Logger            *slog.Logger
	Storage           TaskStore
	Analyzer          Analyzer
	Consumer          Consumer
	Concurrency       int
	PrefetchCount     int
	JobTimeout        time.Duration
	HeartbeatInterval time.Duration
	StaleAfter        time.Duration
	// Registerer receives the worker's task metrics; nil keeps them private
	Registerer prometheus.Registerer
}

// taskMessage is a decoded delivery waiting for a pool goroutine
type taskMessage struct {
	TaskID   string
	delivery amqp.Delivery
}

// Worker represents the background analysis worker
type Worker struct {
	workerID          string
	logger            *slog.Logger
	storage           TaskStore
	analyzer          Analyzer
	consumer          Consumer
	concurrency       int
	prefetchCount     int
	jobTimeout        time.Duration
	heartbeatInterval time.Duration
	staleAfter        time.Duration
	metrics           *metrics

	tasksChan chan *taskMessage
	wg        sync.WaitGroup
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = cfg.Concurrency
	}

	return &Worker{
		workerID:          "worker-" + uuid.NewString(),
		logger:            cfg.Logger,
		storage:           cfg.Storage,
		analyzer:          cfg.Analyzer,
		consumer:          cfg.Consumer,
		concurrency:       cfg.Concurrency,
		prefetchCount:     prefetch,
		jobTimeout:        cfg.JobTimeout,
		heartbeatInterval: cfg.HeartbeatInterval,
		staleAfter:        cfg.StaleAfter,
		metrics:           newMetrics(cfg.Registerer),
		tasksChan:         make(chan *taskMessage),
		stopChan:          make(chan struct{}),
	}
}

// ID returns the identifier this worker records on claimed tasks
func (w *Worker) ID() string {
	return w.workerID
}

// Start subscribes to the queue and processes tasks until ctx is canceled
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to set up consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.startMessageDispatcher(ctx, deliveries)
	}()

	<-ctx.Done()
	w.logger.Info("Worker context canceled, stopping...")

	return nil
}

// Stop gracefully stops the worker and waits for in-flight tasks
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
