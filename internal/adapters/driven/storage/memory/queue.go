package memory

import (
	"context"
	"fmt"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// Ensure TaskQueue implements the interface.
var _ driven.TaskQueue = (*TaskQueue)(nil)

// DefaultQueueCapacity is used when NewTaskQueue is given a non-positive capacity.
const DefaultQueueCapacity = 128

// TaskQueue is a bounded in-process queue. Producers block while it is full.
type TaskQueue struct {
	tasks chan domain.Task
}

// NewTaskQueue creates a queue holding up to capacity pending tasks.
func NewTaskQueue(capacity int) *TaskQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &TaskQueue{tasks: make(chan domain.Task, capacity)}
}

// Enqueue adds a task, waiting for room if the queue is full.
func (q *TaskQueue) Enqueue(ctx context.Context, task domain.Task) error {
	if task.Params == nil {
		return fmt.Errorf("%w: task has no params", domain.ErrInvalidInput)
	}
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue waits for the next task.
func (q *TaskQueue) Dequeue(ctx context.Context) (domain.Task, error) {
	select {
	case task := <-q.tasks:
		return task, nil
	case <-ctx.Done():
		return domain.Task{}, ctx.Err()
	}
}

// Len returns the number of pending tasks.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}
