package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

// GetJob retrieves a job by ID.
func (s *jobStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, status, status_detail, result_url
		FROM jobs WHERE id = ?
	`, id)

	var (
		job            domain.Job
		status         string
		detail, result sql.NullString
	)
	if err := row.Scan(&job.ID, &status, &detail, &result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	job.Status = domain.JobStatus(status)
	job.StatusDetail = detail.String
	job.ResultURL = result.String
	return &job, nil
}

// SaveJob creates or replaces the job record.
func (s *jobStore) SaveJob(ctx context.Context, job *domain.Job) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO jobs (id, status, status_detail, result_url, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			status_detail = excluded.status_detail,
			result_url = excluded.result_url,
			updated_at = excluded.updated_at
	`, job.ID, string(job.Status), nullString(job.StatusDetail), nullString(job.ResultURL))
	if err != nil {
		return fmt.Errorf("saving job: %w", err)
	}
	return nil
}
