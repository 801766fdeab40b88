package driven

import (
	"context"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// TaskQueue handles background task queuing and processing.
// Index rebuilds and scan pipelines run as queued tasks so they never race
// the serving path.
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing.
	Enqueue(ctx context.Context, task *domain.Task) error

	// DequeueWithTimeout retrieves the next available task, waiting up to
	// timeout seconds. Returns nil, nil if the timeout is reached with no
	// tasks available. The task is marked as processing and will not be
	// returned to other workers.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error)

	// Ack acknowledges successful completion of a task.
	Ack(ctx context.Context, taskID string) error

	// Nack indicates task processing failed and should be retried.
	// If max retries are exceeded the task is moved to the failed state.
	Nack(ctx context.Context, taskID string, reason string) error

	// GetTask retrieves a task by ID (for status checking).
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// Ping checks if the queue backend is healthy.
	Ping(ctx context.Context) error

	// Close cleans up resources.
	Close() error
}
