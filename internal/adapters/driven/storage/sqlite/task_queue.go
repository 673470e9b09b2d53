package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// taskQueue implements driven.TaskQueue on the tasks table so that
// API and worker processes can share one database.
type taskQueue struct {
	store        *Store
	pollInterval time.Duration
}

var _ driven.TaskQueue = (*taskQueue)(nil)

// Enqueue appends the task.
func (q *taskQueue) Enqueue(ctx context.Context, task domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}
	if _, err := q.store.db.ExecContext(ctx,
		"INSERT INTO tasks (payload, enqueued_at) VALUES (?, CURRENT_TIMESTAMP)", payload); err != nil {
		return fmt.Errorf("enqueueing task: %w", err)
	}
	return nil
}

// Dequeue claims the oldest task, polling until one appears or ctx is done.
func (q *taskQueue) Dequeue(ctx context.Context) (domain.Task, error) {
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	for {
		task, ok, err := q.claim(ctx)
		if err != nil {
			return domain.Task{}, err
		}
		if ok {
			return task, nil
		}

		select {
		case <-ctx.Done():
			return domain.Task{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// claim removes and returns the head of the queue in one statement.
func (q *taskQueue) claim(ctx context.Context) (domain.Task, bool, error) {
	var payload []byte
	err := q.store.db.QueryRowContext(ctx, `
		DELETE FROM tasks
		WHERE id = (SELECT id FROM tasks ORDER BY id LIMIT 1)
		RETURNING payload
	`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, false, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return domain.Task{}, false, ctx.Err()
		}
		return domain.Task{}, false, fmt.Errorf("claiming task: %w", err)
	}

	var task domain.Task
	if err := json.Unmarshal(payload, &task); err != nil {
		return domain.Task{}, false, fmt.Errorf("decoding task: %w", err)
	}
	return task, true, nil
}
