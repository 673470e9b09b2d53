package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driving"
	"github.com/custodia-labs/litmapper/internal/logger"
)

// Pipeline builds the resource chain of a task, keeping its job current.
type Pipeline struct {
	resources driving.ResourceService
	jobs      *JobService
}

// NewPipeline creates a pipeline.
func NewPipeline(resources driving.ResourceService, jobs *JobService) *Pipeline {
	return &Pipeline{resources: resources, jobs: jobs}
}

// Handle creates each resource of the task's chain in dependency order.
// Each stage updates the job's status detail. On success the job records
// the URL of the final resource; on failure, including a panic, the job
// is marked failed with the error text and the error is returned.
func (p *Pipeline) Handle(ctx context.Context, task domain.Task) (err error) {
	job := task.Job
	logger.Section(fmt.Sprintf("Job %s", job.ID))

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		if err == nil {
			return
		}
		job.Status = domain.JobStatusFailed
		job.StatusDetail = err.Error()
		job.ResultURL = ""
		if saveErr := p.jobs.Save(context.WithoutCancel(ctx), &job); saveErr != nil {
			logger.Error("Failed to record failure of job %s: %v", job.ID, saveErr)
		}
	}()

	for _, params := range domain.Chain(task.Params) {
		job.Status = domain.JobStatusInProgress
		job.StatusDetail = domain.StageDetail(params.Kind())
		if err := p.jobs.Save(ctx, &job); err != nil {
			return err
		}
		logger.Info("%s (job %s)", job.StatusDetail, job.ID)

		if err := p.resources.Make(ctx, params, task.Force); err != nil {
			return fmt.Errorf("%s: %w", params.Kind(), err)
		}
	}

	job.Status = domain.JobStatusSuccess
	job.StatusDetail = ""
	job.ResultURL = domain.ResultURL(task.Params)
	return p.jobs.Save(ctx, &job)
}
