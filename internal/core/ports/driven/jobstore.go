package driven

import (
	"context"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// JobStore persists job records by id.
type JobStore interface {
	// GetJob retrieves a job. Returns domain.ErrJobNotFound if absent.
	GetJob(ctx context.Context, id string) (*domain.Job, error)

	// SaveJob creates or replaces the record for job.ID.
	SaveJob(ctx context.Context, job *domain.Job) error
}
