package mcp

import (
	"context"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// mockResourceService is a mock implementation of driving.ResourceService.
type mockResourceService struct {
	result   domain.Result
	articles []domain.Article
	err      error

	evictedKind domain.ResourceKind
	evictedHash string
}

func (m *mockResourceService) Find(_ context.Context, _ domain.Params) (domain.Result, error) {
	return m.result, m.err
}

func (m *mockResourceService) FindHash(_ context.Context, _ domain.ResourceKind, _ string) (domain.Result, error) {
	return m.result, m.err
}

func (m *mockResourceService) Make(_ context.Context, _ domain.Params, _ bool) error {
	return m.err
}

func (m *mockResourceService) Evict(_ context.Context, kind domain.ResourceKind, hash string) error {
	if m.err != nil {
		return m.err
	}
	m.evictedKind, m.evictedHash = kind, hash
	return nil
}

func (m *mockResourceService) FilterSetArticles(_ context.Context, _ string) ([]domain.Article, error) {
	return m.articles, m.err
}

// mockJobService is a mock implementation of driving.JobService.
type mockJobService struct {
	job *domain.Job
	err error

	started domain.Params
	force   bool
}

func (m *mockJobService) Start(_ context.Context, params domain.Params, force bool) (*domain.Job, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.started, m.force = params, force
	return m.job, nil
}

func (m *mockJobService) Get(_ context.Context, _ string) (*domain.Job, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.job, nil
}
