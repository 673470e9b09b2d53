package domain

import "fmt"

// JobStatus is the lifecycle state of a creation job.
type JobStatus string

const (
	JobStatusFailed     JobStatus = "failed"
	JobStatusInProgress JobStatus = "in progress"
	JobStatusSuccess    JobStatus = "success"
)

// Job is the client-visible record of a background creation request.
type Job struct {
	// ID is assigned on first save.
	ID string `json:"job_id"`

	// Status is the lifecycle state.
	Status JobStatus `json:"status"`

	// StatusDetail describes the current stage, or the error on failure.
	StatusDetail string `json:"status_detail,omitempty"`

	// ResultURL points at the finished resource. Required on success.
	ResultURL string `json:"result_url,omitempty"`
}

// NewJob returns a job in its initial state.
func NewJob() *Job {
	return &Job{Status: JobStatusInProgress, StatusDetail: "Starting"}
}

// Validate enforces that successful jobs carry a result URL.
func (j *Job) Validate() error {
	switch j.Status {
	case JobStatusFailed, JobStatusInProgress:
	case JobStatusSuccess:
		if j.ResultURL == "" {
			return fmt.Errorf("%w: successful job must have a result URL", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown job status %q", ErrInvalidInput, j.Status)
	}
	return nil
}

// Done reports whether the job reached a terminal state.
func (j *Job) Done() bool {
	return j.Status == JobStatusFailed || j.Status == JobStatusSuccess
}

// Location is the API path of the job status.
func (j *Job) Location() string {
	return "/info/job/" + j.ID
}

// StageDetail is the status detail shown while a resource kind is built.
func StageDetail(kind ResourceKind) string {
	switch kind {
	case KindFilterSet:
		return "Creating filter set"
	case KindClustering:
		return "Clustering"
	case KindArticleGroup:
		return "Generating article group summaries"
	default:
		return string(kind)
	}
}
