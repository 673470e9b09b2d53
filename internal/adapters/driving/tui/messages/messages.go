// Package messages defines Bubbletea message types for the job monitor.
package messages

import (
	"time"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// ViewType identifies which view is active.
type ViewType int

const (
	// ViewJobs lists the watched jobs.
	ViewJobs ViewType = iota
	// ViewResult shows a finished resource.
	ViewResult
)

// String returns the view name.
func (v ViewType) String() string {
	switch v {
	case ViewJobs:
		return "jobs"
	case ViewResult:
		return "result"
	default:
		return "unknown"
	}
}

// PollTick triggers the next round of job status requests.
type PollTick struct {
	At time.Time
}

// JobPolled carries the latest record for one job.
type JobPolled struct {
	ID  string
	Job *domain.Job
	Err error
}

// ResultRequested asks the app to load the resource a job produced.
type ResultRequested struct {
	Kind domain.ResourceKind
	Hash string
}

// ResultLoaded carries a finished resource back to the app.
type ResultLoaded struct {
	Kind   domain.ResourceKind
	Hash   string
	Result domain.Result
	Err    error
}

// ViewChanged switches the active view.
type ViewChanged struct {
	View ViewType
}
