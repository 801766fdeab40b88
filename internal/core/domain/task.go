package domain

import "time"

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeRebuildIndex rebuilds the vector index from the parsed docs directory
	TaskTypeRebuildIndex TaskType = "rebuild_index"
	// TaskTypeScanPipeline runs the full scan -> parse -> index pipeline for a target
	TaskTypeScanPipeline TaskType = "scan_pipeline"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a background job to be processed by workers
type Task struct {
	// ID is the unique identifier for this task
	ID string `json:"id"`

	// Type identifies what kind of task this is
	Type TaskType `json:"type"`

	// Payload contains task-specific data
	// For scan_pipeline: {"target": "https://example.com"}
	// For rebuild_index: {} (empty)
	Payload map[string]string `json:"payload"`

	// Status is the current state of the task
	Status TaskStatus `json:"status"`

	// Attempts is how many times this task has been attempted
	Attempts int `json:"attempts"`

	// MaxAttempts is the maximum retry count before giving up
	MaxAttempts int `json:"max_attempts"`

	// Error contains the last error message if failed
	Error string `json:"error,omitempty"`

	// CreatedAt is when the task was enqueued
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified
	UpdatedAt time.Time `json:"updated_at"`

	// StartedAt is when processing began (nil if not started)
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when processing finished (nil if not complete)
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTask creates a task with defaults applied.
func NewTask(taskType TaskType, payload map[string]string) *Task {
	if payload == nil {
		payload = map[string]string{}
	}
	now := time.Now()
	return &Task{
		ID:          GenerateID(),
		Type:        taskType,
		Payload:     payload,
		Status:      TaskStatusPending,
		MaxAttempts: 3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Target returns the scan target from the payload, if any
func (t *Task) Target() string {
	return t.Payload["target"]
}

// MarkProcessing transitions the task into the processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.Attempts++
	t.StartedAt = &now
	t.UpdatedAt = now
}

// MarkCompleted transitions the task into the completed state
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// MarkFailed transitions the task into the failed state
func (t *Task) MarkFailed(reason string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.Error = reason
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// CanRetry reports whether the task has attempts left
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// Retry resets the task to pending for another attempt, recording the
// failure reason from the attempt that just ended.
func (t *Task) Retry(reason string) {
	t.Status = TaskStatusPending
	t.Error = reason
	t.StartedAt = nil
	t.UpdatedAt = time.Now()
}
