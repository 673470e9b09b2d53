package driven

import (
	"context"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// TaskQueue hands creation tasks from the API to workers.
// Each task is delivered to at most one consumer and is never retried.
type TaskQueue interface {
	// Enqueue adds a task to the tail of the queue.
	Enqueue(ctx context.Context, task domain.Task) error

	// Dequeue blocks until a task is available or ctx is done.
	Dequeue(ctx context.Context) (domain.Task, error)
}
