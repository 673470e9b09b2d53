package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// taskQueue implements driven.TaskQueue as a Redis list. Producers push on
// the left and consumers pop from the right, so delivery is FIFO.
type taskQueue struct {
	store        *Store
	pollInterval time.Duration
}

var _ driven.TaskQueue = (*taskQueue)(nil)

func (q *taskQueue) listKey() string {
	return q.store.key("tasks")
}

// Enqueue appends the task.
func (q *taskQueue) Enqueue(ctx context.Context, task domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}
	if err := q.store.client.LPush(ctx, q.listKey(), payload).Err(); err != nil {
		return fmt.Errorf("enqueueing task: %w", err)
	}
	return nil
}

// Dequeue blocks until a task arrives or ctx is done.
func (q *taskQueue) Dequeue(ctx context.Context) (domain.Task, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Task{}, err
		}

		res, err := q.store.client.BRPop(ctx, q.pollInterval, q.listKey()).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return domain.Task{}, ctx.Err()
			}
			return domain.Task{}, fmt.Errorf("dequeueing task: %w", err)
		}

		// BRPOP replies with the list name followed by the element.
		var task domain.Task
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return domain.Task{}, fmt.Errorf("decoding task: %w", err)
		}
		return task, nil
	}
}
