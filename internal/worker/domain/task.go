package domain

// Task is an analysis task claimed by a worker
type Task struct {
	TaskID        string `db:"task_id"`
	ApplicationID string `db:"application_id"`
	RetryCount    int    `db:"retry_count"`
	MaxRetries    int    `db:"max_retries"`
}

// TaskMessage is the body published to the analysis queue
type TaskMessage struct {
	TaskID string `json:"task_id"`
}
