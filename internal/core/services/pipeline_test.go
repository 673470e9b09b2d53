package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litmapper/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/litmapper/internal/core/domain"
)

func newTestPipeline(c *countingCreator) (*Pipeline, *ResourceService, *recordingJobStore) {
	resources, _ := newTestResources(c, WaitOptions{})
	store := newRecordingJobStore()
	jobs := NewJobService(store, memory.NewTaskQueue(4))
	return NewPipeline(resources, jobs), resources, store
}

func startTask(t *testing.T, store *recordingJobStore, p domain.Params) domain.Task {
	t.Helper()
	job := &domain.Job{ID: "job1", Status: domain.JobStatusInProgress, StatusDetail: "Starting"}
	require.NoError(t, store.SaveJob(context.Background(), job))
	return domain.Task{Job: *job, Params: p}
}

func TestPipeline_Handle_Success(t *testing.T) {
	c := newCountingCreator()
	pipeline, resources, store := newTestPipeline(c)
	ctx := context.Background()
	p := domain.NewArticleGroupParams(domain.NewClusteringParams(sampleFilterSet()))

	require.NoError(t, pipeline.Handle(ctx, startTask(t, store, p)))

	job, err := store.GetJob(ctx, "job1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusSuccess, job.Status)
	assert.Empty(t, job.StatusDetail)
	assert.Equal(t, domain.ResultURL(p), job.ResultURL)

	assert.Equal(t, []string{
		"Starting",
		"Creating filter set",
		"Clustering",
		"Generating article group summaries",
		"",
	}, store.details())

	for _, step := range domain.Chain(p) {
		_, err := resources.Find(ctx, step)
		assert.NoError(t, err, "%s should be stored", step.Kind())
	}
}

func TestPipeline_Handle_ReusesExistingResources(t *testing.T) {
	c := newCountingCreator()
	pipeline, _, store := newTestPipeline(c)
	ctx := context.Background()
	p := domain.NewClusteringParams(sampleFilterSet())

	require.NoError(t, pipeline.Handle(ctx, startTask(t, store, p)))
	require.NoError(t, pipeline.Handle(ctx, startTask(t, store, p)))
	assert.Equal(t, 1, c.count(domain.KindFilterSet))
	assert.Equal(t, 1, c.count(domain.KindClustering))

	task := startTask(t, store, p)
	task.Force = true
	require.NoError(t, pipeline.Handle(ctx, task))
	assert.Equal(t, 2, c.count(domain.KindFilterSet))
	assert.Equal(t, 2, c.count(domain.KindClustering))
}

func TestPipeline_Handle_FailureMarksJob(t *testing.T) {
	c := newCountingCreator()
	c.fail[domain.KindClustering] = domain.ErrClusteringFailed
	pipeline, resources, store := newTestPipeline(c)
	ctx := context.Background()
	p := domain.NewClusteringParams(sampleFilterSet())

	err := pipeline.Handle(ctx, startTask(t, store, p))
	assert.ErrorIs(t, err, domain.ErrClusteringFailed)

	job, err := store.GetJob(ctx, "job1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Contains(t, job.StatusDetail, domain.ErrClusteringFailed.Error())
	assert.Empty(t, job.ResultURL)

	_, err = resources.Find(ctx, p.FilterSet)
	assert.NoError(t, err)
	_, err = resources.Find(ctx, p)
	assert.ErrorIs(t, err, domain.ErrResourceDoesNotExist)
}

func TestPipeline_Handle_PanicMarksJob(t *testing.T) {
	c := newCountingCreator()
	c.panics[domain.KindFilterSet] = true
	pipeline, resources, store := newTestPipeline(c)
	ctx := context.Background()
	p := sampleFilterSet()

	err := pipeline.Handle(ctx, startTask(t, store, p))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creator exploded")

	job, err := store.GetJob(ctx, "job1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)

	_, err = resources.Find(ctx, p)
	assert.ErrorIs(t, err, domain.ErrResourceDoesNotExist)
}

func TestPipeline_Handle_CancelledContext(t *testing.T) {
	c := newCountingCreator()
	pipeline, _, store := newTestPipeline(c)
	ctx, cancel := context.WithCancel(context.Background())
	task := startTask(t, store, sampleFilterSet())
	cancel()

	err := pipeline.Handle(ctx, task)
	assert.True(t, errors.Is(err, context.Canceled))

	job, err := store.GetJob(context.Background(), "job1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
}
