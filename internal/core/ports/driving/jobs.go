package driving

import (
	"context"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// JobService starts background creation and reports its progress.
type JobService interface {
	// Start records a new job and enqueues its task.
	Start(ctx context.Context, params domain.Params, force bool) (*domain.Job, error)

	// Get returns the job record. Returns domain.ErrJobNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Job, error)
}
