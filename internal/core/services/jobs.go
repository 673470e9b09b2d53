package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
	"github.com/custodia-labs/litmapper/internal/core/ports/driving"
)

// Ensure JobService implements the interface.
var _ driving.JobService = (*JobService)(nil)

// JobService records jobs and hands their tasks to the queue.
type JobService struct {
	store driven.JobStore
	queue driven.TaskQueue
}

// NewJobService creates a job service.
func NewJobService(store driven.JobStore, queue driven.TaskQueue) *JobService {
	return &JobService{store: store, queue: queue}
}

// Start saves an in-progress job and enqueues the creation task.
func (s *JobService) Start(ctx context.Context, params domain.Params, force bool) (*domain.Job, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	job := domain.NewJob()
	if err := s.Save(ctx, job); err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(ctx, domain.Task{Job: *job, Params: params, Force: force}); err != nil {
		return nil, fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	return job, nil
}

// Get returns the job record.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.store.GetJob(ctx, id)
}

// Save validates and stores a job, assigning an id on first save.
func (s *JobService) Save(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	if job.ID == "" {
		job.ID = newJobID()
	}
	if err := s.store.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func newJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
