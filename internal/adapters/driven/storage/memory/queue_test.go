package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

func testTask(id string) domain.Task {
	q := "cancer"
	return domain.Task{
		Job:    domain.Job{ID: id, Status: domain.JobStatusInProgress},
		Params: domain.FilterSetParams{FullTextSearchQuery: &q},
	}
}

func TestTaskQueue_FIFO(t *testing.T) {
	q := NewTaskQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testTask("a")))
	require.NoError(t, q.Enqueue(ctx, testTask("b")))
	assert.Equal(t, 2, q.Len())

	first, err := q.Dequeue(ctx)
	require.NoError(t, err)
	second, err := q.Dequeue(ctx)
	require.NoError(t, err)

	assert.Equal(t, "a", first.Job.ID)
	assert.Equal(t, "b", second.Job.ID)
}

func TestTaskQueue_Enqueue_RejectsMissingParams(t *testing.T) {
	q := NewTaskQueue(1)

	err := q.Enqueue(context.Background(), domain.Task{Job: domain.Job{ID: "a"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTaskQueue_Dequeue_RespectsContext(t *testing.T) {
	q := NewTaskQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTaskQueue_Enqueue_BlocksWhenFull(t *testing.T) {
	q := NewTaskQueue(1)
	require.NoError(t, q.Enqueue(context.Background(), testTask("a")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, testTask("b"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewTaskQueue_DefaultCapacity(t *testing.T) {
	q := NewTaskQueue(0)
	assert.Equal(t, DefaultQueueCapacity, cap(q.tasks))
}
