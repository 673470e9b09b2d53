package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/litmapper/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// --- Shared mocks for resource and job tests ---

// failingCache wraps a memory cache and injects errors.
type failingCache struct {
	*memory.CacheStore
	reserveErr error
	setErr     error
	deleteErr  error
}

func (c *failingCache) Reserve(ctx context.Context, ns, key string) ([]byte, bool, error) {
	if c.reserveErr != nil {
		return nil, false, c.reserveErr
	}
	return c.CacheStore.Reserve(ctx, ns, key)
}

func (c *failingCache) Set(ctx context.Context, ns, key string, value []byte) error {
	if c.setErr != nil && len(value) > 0 {
		return c.setErr
	}
	return c.CacheStore.Set(ctx, ns, key, value)
}

func (c *failingCache) Delete(ctx context.Context, ns, key string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	return c.CacheStore.Delete(ctx, ns, key)
}

// recordingJobStore remembers every saved job state.
type recordingJobStore struct {
	*memory.JobStore
	mu      sync.Mutex
	history []domain.Job
}

func newRecordingJobStore() *recordingJobStore {
	return &recordingJobStore{JobStore: memory.NewJobStore()}
}

func (s *recordingJobStore) SaveJob(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	s.history = append(s.history, *job)
	s.mu.Unlock()
	return s.JobStore.SaveJob(ctx, job)
}

func (s *recordingJobStore) details() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	for i, j := range s.history {
		out[i] = j.StatusDetail
	}
	return out
}

// countingCreator returns fixed results per kind and counts calls.
type countingCreator struct {
	mu     sync.Mutex
	calls  map[domain.ResourceKind]int
	fail   map[domain.ResourceKind]error
	panics map[domain.ResourceKind]bool
}

func newCountingCreator() *countingCreator {
	return &countingCreator{
		calls:  make(map[domain.ResourceKind]int),
		fail:   make(map[domain.ResourceKind]error),
		panics: make(map[domain.ResourceKind]bool),
	}
}

func (c *countingCreator) create(_ context.Context, params domain.Params) (domain.Result, error) {
	kind := params.Kind()
	c.mu.Lock()
	c.calls[kind]++
	err := c.fail[kind]
	shouldPanic := c.panics[kind]
	c.mu.Unlock()

	if shouldPanic {
		panic("creator exploded")
	}
	if err != nil {
		return nil, err
	}
	switch kind {
	case domain.KindFilterSet:
		return &domain.FilterSetResult{ArticleIDs: []int64{1, 2, 3}}, nil
	case domain.KindClustering:
		return domain.BlankClusteringResult(), nil
	default:
		return domain.BlankArticleGroupResult(), nil
	}
}

func (c *countingCreator) count(kind domain.ResourceKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[kind]
}

func (c *countingCreator) registry() *Registry {
	r := NewRegistry()
	r.Register(domain.KindFilterSet, Entry{Namespace: NamespaceFilterSets, Create: c.create})
	r.Register(domain.KindClustering, Entry{Namespace: NamespaceClusterings, Create: c.create})
	r.Register(domain.KindArticleGroup, Entry{Namespace: NamespaceArticleGroups, Create: c.create})
	return r
}

func strPtr(s string) *string { return &s }

func sampleFilterSet() domain.FilterSetParams {
	return domain.FilterSetParams{FullTextSearchQuery: strPtr("cancer")}
}
