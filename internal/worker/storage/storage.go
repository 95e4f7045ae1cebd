package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard/internal/worker/domain"
	"github.com/cuongbtq/jobboard/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

// Storage handles analysis task bookkeeping for the worker
type Storage struct {
	client *postgresql.Client
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(client *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		client: client,
		logger: logger,
	}
}

// ClaimTask moves a PENDING task, or a RUNNING task whose heartbeat is older
// than staleAfter, to RUNNING under workerID. Reclaiming a stale task counts
// as a retry.
func (s *Storage) ClaimTask(ctx context.Context, taskID, workerID string, staleAfter time.Duration) (*domain.Task, error) {
	query := `
		UPDATE analysis_tasks
		SET status = $1,
		    retry_count = CASE WHEN status = $1 THEN retry_count + 1 ELSE retry_count END,
		    worker_id = $2,
		    started_at = NOW(),
		    last_heartbeat_at = NOW(),
		    updated_at = NOW()
		WHERE task_id = $3
		  AND (status = $4
		       OR (status = $1 AND last_heartbeat_at < NOW() - make_interval(secs => $5)))
		RETURNING task_id, application_id, retry_count, max_retries
	`

	var task domain.Task
	err := s.client.GetDB().GetContext(ctx, &task, query,
		domain.TaskStatusRunning, workerID, taskID, domain.TaskStatusPending, staleAfter.Seconds())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.claimFailure(ctx, taskID, workerID)
		}
		return nil, fmt.Errorf("failed to claim task: %w", err)
	}

	s.logger.Info("Task claimed successfully",
		slog.String("task_id", taskID),
		slog.String("worker_id", workerID),
		slog.String("application_id", task.ApplicationID),
	)

	return &task, nil
}

// claimFailure explains why a claim matched no row
func (s *Storage) claimFailure(ctx context.Context, taskID, workerID string) error {
	var status string
	err := s.client.GetDB().GetContext(ctx, &status, `SELECT status FROM analysis_tasks WHERE task_id = $1`, taskID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrTaskNotFound
	case err != nil:
		return fmt.Errorf("failed to read task status: %w", err)
	case status == domain.TaskStatusRunning:
		return domain.ErrTaskInProgress
	}

	s.logger.Warn("Failed to claim task - already finished",
		slog.String("task_id", taskID),
		slog.String("worker_id", workerID),
		slog.String("status", status),
	)
	return domain.ErrTaskAlreadyClaimed
}

// CompleteTask marks the task COMPLETED
func (s *Storage) CompleteTask(ctx context.Context, taskID string) error {
	query := `
		UPDATE analysis_tasks
		SET status = $1,
		    error_message = NULL,
		    completed_at = NOW(),
		    updated_at = NOW()
		WHERE task_id = $2
	`

	if _, err := s.client.GetDB().ExecContext(ctx, query, domain.TaskStatusCompleted, taskID); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return nil
}

// RetryTask returns the task to PENDING with one more retry counted
func (s *Storage) RetryTask(ctx context.Context, taskID, errorMsg string) error {
	query := `
		UPDATE analysis_tasks
		SET status = $1,
		    worker_id = NULL,
		    retry_count = retry_count + 1,
		    error_message = $2,
		    updated_at = NOW()
		WHERE task_id = $3
	`

	if _, err := s.client.GetDB().ExecContext(ctx, query, domain.TaskStatusPending, errorMsg, taskID); err != nil {
		return fmt.Errorf("failed to reschedule task: %w", err)
	}

	s.logger.Info("Task rescheduled",
		slog.String("task_id", taskID),
	)
	return nil
}

// FailTask marks the task FAILED and records the failure on its application
func (s *Storage) FailTask(ctx context.Context, taskID, applicationID, errorMsg string) error {
	return s.client.WithTx(ctx, func(tx *sqlx.Tx) error {
		taskQuery := `
			UPDATE analysis_tasks
			SET status = $1,
			    error_message = $2,
			    completed_at = NOW(),
			    updated_at = NOW()
			WHERE task_id = $3
		`
		if _, err := tx.ExecContext(ctx, taskQuery, domain.TaskStatusFailed, errorMsg, taskID); err != nil {
			return fmt.Errorf("failed to mark task failed: %w", err)
		}

		applicationQuery := `
			UPDATE applications
			SET status = CASE
			        WHEN status IN ('pending', 'analysis_failed') THEN 'analysis_failed'::application_status
			        ELSE status
			    END,
			    analysis_error = $1,
			    updated_at = NOW()
			WHERE id = $2
		`
		if _, err := tx.ExecContext(ctx, applicationQuery, errorMsg, applicationID); err != nil {
			return fmt.Errorf("failed to mark application analysis failed: %w", err)
		}

		s.logger.Warn("Task failed permanently",
			slog.String("task_id", taskID),
			slog.String("application_id", applicationID),
			slog.String("error", errorMsg),
		)
		return nil
	})
}

// UpdateHeartbeat updates last_heartbeat_at for a running task
func (s *Storage) UpdateHeartbeat(ctx context.Context, taskID string) error {
	query := `
		UPDATE analysis_tasks
		SET last_heartbeat_at = NOW(),
		    updated_at = NOW()
		WHERE task_id = $1 AND status = $2
	`

	result, err := s.client.GetDB().ExecContext(ctx, query, taskID, domain.TaskStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to update task heartbeat: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Warn("Task heartbeat update - no rows affected (task may not be running)",
			slog.String("task_id", taskID),
		)
	}

	return nil
}
