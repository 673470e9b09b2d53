package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// jobStore implements driven.JobStore with one JSON string per job.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

// GetJob retrieves a job by ID.
func (s *jobStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	data, err := s.store.client.Get(ctx, s.store.key("job", id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	var job domain.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decoding job %s: %w", id, err)
	}
	return &job, nil
}

// SaveJob creates or replaces the job record.
func (s *jobStore) SaveJob(ctx context.Context, job *domain.Job) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidInput
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job: %w", err)
	}
	if err := s.store.client.Set(ctx, s.store.key("job", job.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("saving job: %w", err)
	}
	return nil
}
