package domain

import "errors"

var (
	// ErrTaskNotFound is returned when a task row does not exist
	ErrTaskNotFound = errors.New("analysis task not found")

	// ErrTaskAlreadyClaimed is returned when the task already finished or another worker owns it
	ErrTaskAlreadyClaimed = errors.New("analysis task already claimed or finished")

	// ErrTaskInProgress is returned when another worker holds the task with a fresh heartbeat
	ErrTaskInProgress = errors.New("analysis task is running on another worker")

	// ErrInvalidMessage is returned when a queue message cannot be decoded
	ErrInvalidMessage = errors.New("invalid task message")

	// ErrMaxRetriesExceeded is returned when a task has exhausted its retries
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrTaskAbandoned is recorded when reclaims of a stale task used up its retries
	ErrTaskAbandoned = errors.New("analysis task abandoned by stopped workers")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
