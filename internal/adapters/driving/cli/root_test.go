package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litmapper/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// mockResourceService is a mock implementation of driving.ResourceService.
type mockResourceService struct {
	result   domain.Result
	articles []domain.Article
	err      error

	gotKind domain.ResourceKind
	gotHash string
}

func (m *mockResourceService) Find(_ context.Context, _ domain.Params) (domain.Result, error) {
	return m.result, m.err
}

func (m *mockResourceService) FindHash(_ context.Context, kind domain.ResourceKind, hash string) (domain.Result, error) {
	m.gotKind, m.gotHash = kind, hash
	return m.result, m.err
}

func (m *mockResourceService) Make(_ context.Context, _ domain.Params, _ bool) error { return m.err }

func (m *mockResourceService) Evict(_ context.Context, kind domain.ResourceKind, hash string) error {
	m.gotKind, m.gotHash = kind, hash
	return m.err
}

func (m *mockResourceService) FilterSetArticles(_ context.Context, hash string) ([]domain.Article, error) {
	m.gotHash = hash
	return m.articles, m.err
}

// mockJobService replays a sequence of records per job id.
type mockJobService struct {
	mu       sync.Mutex
	records  map[string][]*domain.Job
	startErr error

	started domain.Params
	force   bool
}

func (m *mockJobService) Start(_ context.Context, params domain.Params, force bool) (*domain.Job, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.started, m.force = params, force
	job := &domain.Job{ID: "job-1", Status: domain.JobStatusInProgress, StatusDetail: "Starting"}
	return job, nil
}

func (m *mockJobService) Get(_ context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := m.records[id]
	if len(seq) == 0 {
		return nil, domain.ErrJobNotFound
	}
	job := seq[0]
	if len(seq) > 1 {
		m.records[id] = seq[1:]
	}
	return job, nil
}

// mockLoader records saved batches.
type mockLoader struct {
	batches [][]domain.ArticleRecord
	err     error
}

func (m *mockLoader) SaveArticles(_ context.Context, records []domain.ArticleRecord) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, append([]domain.ArticleRecord(nil), records...))
	return nil
}

type testServices struct {
	resources *mockResourceService
	jobs      *mockJobService
	loader    *mockLoader
	config    *memory.ConfigStore
}

// setupTestServices installs mocks and returns a cleanup function.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		resources: &mockResourceService{},
		jobs:      &mockJobService{records: map[string][]*domain.Job{}},
		loader:    &mockLoader{},
		config:    memory.NewConfigStore(nil),
	}
	SetServices(&Services{
		Resources:   ts.resources,
		Jobs:        ts.jobs,
		Articles:    ts.loader,
		ConfigStore: ts.config,
		Config:      domain.DefaultConfig(),
	})
	return ts, func() {
		SetServices(nil)
		SetBootstrap(nil)
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag to its default so tests do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRoot_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	_, err := execute(t, "", "job", "status", "abc")

	require.Error(t, err)
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestRoot_BootstrapBuildsAndClosesServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	jobs := &mockJobService{records: map[string][]*domain.Job{
		"abc": {{ID: "abc", Status: domain.JobStatusInProgress, StatusDetail: "Clustering"}},
	}}
	var (
		gotOpts Options
		closed  bool
	)
	SetBootstrap(func(_ context.Context, opts Options) (*Services, error) {
		gotOpts = opts
		return &Services{
			Resources: &mockResourceService{},
			Jobs:      jobs,
			Close:     func() error { closed = true; return nil },
		}, nil
	})

	out, err := execute(t, "", "--config", "/tmp/lit.toml", "job", "status", "abc")

	require.NoError(t, err)
	assert.Contains(t, out, "Clustering")
	assert.Equal(t, "/tmp/lit.toml", gotOpts.ConfigPath)
	assert.False(t, gotOpts.ConfigOnly)
	assert.True(t, closed)
	assert.Nil(t, svc)
}

func TestRoot_BootstrapError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)
	SetBootstrap(func(context.Context, Options) (*Services, error) {
		return nil, errors.New("redis unreachable")
	})

	_, err := execute(t, "", "job", "status", "abc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialising services: redis unreachable")
}

func TestRoot_StandaloneSkipsBootstrap(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	called := false
	SetBootstrap(func(context.Context, Options) (*Services, error) {
		called = true
		return nil, errors.New("should not run")
	})

	_, err := execute(t, "", "version")

	require.NoError(t, err)
	assert.False(t, called)
}

func TestRoot_ConfigCommandsAskForConfigOnly(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	var gotOpts Options
	SetBootstrap(func(_ context.Context, opts Options) (*Services, error) {
		gotOpts = opts
		return &Services{ConfigStore: memory.NewConfigStore(nil), Config: domain.DefaultConfig()}, nil
	})

	_, err := execute(t, "", "config", "show")

	require.NoError(t, err)
	assert.True(t, gotOpts.ConfigOnly)
}

func TestVersionCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "", "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "litmapper version test-version-1.0.0")
}
