package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
	"github.com/custodia-labs/litmapper/internal/core/ports/driving"
	"github.com/custodia-labs/litmapper/internal/logger"
)

// Ensure Worker implements the interface.
var _ driving.Worker = (*Worker)(nil)

// Dequeue failures back off exponentially between these bounds.
const (
	minDequeueBackoff = 50 * time.Millisecond
	maxDequeueBackoff = 5 * time.Second
)

// TaskHandler processes one dequeued task.
type TaskHandler interface {
	Handle(ctx context.Context, task domain.Task) error
}

// Worker runs a fixed pool of consumers over a task queue.
// Tasks run at most once: a failed task is recorded on its job and dropped.
type Worker struct {
	queue       driven.TaskQueue
	handler     TaskHandler
	concurrency int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWorker creates a worker with the given number of consumers.
func NewWorker(queue driven.TaskQueue, handler TaskHandler, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		queue:       queue,
		handler:     handler,
		concurrency: concurrency,
	}
}

// Start launches the consumers and returns immediately.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil // Already running
	}
	w.running = true

	ctx, w.cancel = context.WithCancel(ctx)
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.consume(ctx, i)
	}
	logger.Info("worker: started %d consumers", w.concurrency)
	return nil
}

// Stop cancels in-flight tasks and waits for the consumers to exit.
// Cancelled tasks release their reservations and fail their jobs.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.cancel()
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

// Wait blocks until every consumer has exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) consume(ctx context.Context, id int) {
	defer w.wg.Done()
	backoff := minDequeueBackoff
	for {
		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("worker %d: dequeue: %v (retrying in %s)", id, err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(2*backoff, maxDequeueBackoff)
			continue
		}
		backoff = minDequeueBackoff

		logger.Debug("worker %d: running job %s", id, task.Job.ID)
		if err := w.handler.Handle(ctx, task); err != nil {
			logger.Error("worker %d: job %s failed: %v", id, task.Job.ID, err)
			continue
		}
		logger.Info("worker %d: job %s succeeded", id, task.Job.ID)
	}
}
