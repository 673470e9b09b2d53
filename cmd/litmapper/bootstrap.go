package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/litmapper/internal/adapters/driven/config/file"
	"github.com/custodia-labs/litmapper/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/litmapper/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/litmapper/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/litmapper/internal/adapters/driven/entities/prose"
	"github.com/custodia-labs/litmapper/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/litmapper/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/litmapper/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/litmapper/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/litmapper/internal/adapters/driving/cli"
	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
	"github.com/custodia-labs/litmapper/internal/core/services"
	"github.com/custodia-labs/litmapper/internal/logger"
)

// closers collects cleanup functions and runs them in reverse order.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := openConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := services.LoadConfig(configStore)

	svc := &cli.Services{ConfigStore: configStore, Config: cfg}
	if opts.ConfigOnly {
		return svc, nil
	}

	var cleanup closers
	fail := func(err error) (*cli.Services, error) {
		_ = cleanup.close()
		return nil, err
	}

	b := &backends{cfg: cfg, cleanup: &cleanup}

	cache, err := b.cacheStore(ctx)
	if err != nil {
		return fail(fmt.Errorf("cache store: %w", err))
	}
	jobStore, err := b.jobStore(ctx)
	if err != nil {
		return fail(fmt.Errorf("job store: %w", err))
	}
	queue, err := b.taskQueue(ctx)
	if err != nil {
		return fail(fmt.Errorf("task queue: %w", err))
	}
	articles, loader, err := b.articleStore(ctx)
	if err != nil {
		return fail(fmt.Errorf("article store: %w", err))
	}
	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return fail(fmt.Errorf("embedding: %w", err))
	}
	cleanup.add(embedder.Close)
	if err := checkEmbeddingDimensions(ctx, articles, embedder); err != nil {
		return fail(err)
	}

	resources := services.NewResourceService(cache, articles, embedder, prose.New(), services.WaitOptions{
		Interval:    cfg.Worker.PollInterval,
		MaxAttempts: cfg.Worker.MaxAttempts,
	})
	jobs := services.NewJobService(jobStore, queue)
	worker := services.NewWorker(queue, services.NewPipeline(resources, jobs), cfg.Worker.Concurrency)

	logger.Debug("backends: cache=%s jobs=%s queue=%s articles=%s embedding=%s",
		cfg.Cache.Backend, cfg.Jobs.Backend, cfg.Queue.Backend, cfg.Articles.Backend, cfg.Embedding.Provider)

	svc.Resources = resources
	svc.Jobs = jobs
	svc.Worker = worker
	svc.Articles = loader
	svc.Watch = func(ctx context.Context) error {
		return configStore.Watch(ctx, func() {
			logger.SetVerbose(configStore.GetBool(services.KeyLogVerbose))
			logger.Info("config reloaded from %s", configStore.Path())
		})
	}
	svc.Close = func() error {
		return errors.Join(worker.Stop(), cleanup.close())
	}
	return svc, nil
}

func openConfig(path string) (*file.ConfigStore, error) {
	if path != "" {
		return file.Open(path)
	}
	return file.NewConfigStore("")
}

// backends opens each configured storage backend once and shares
// connections between the stores that select it.
type backends struct {
	cfg     domain.Config
	cleanup *closers

	sqlite *sqlite.Store
	redis  map[string]*redis.Store
}

func (b *backends) sqliteStore() (*sqlite.Store, error) {
	if b.sqlite != nil {
		return b.sqlite, nil
	}
	s, err := sqlite.NewStore(b.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	b.cleanup.add(s.Close)
	b.sqlite = s
	return s, nil
}

func (b *backends) redisStore(ctx context.Context, url string) (*redis.Store, error) {
	if s, ok := b.redis[url]; ok {
		return s, nil
	}
	s, err := redis.NewStore(ctx, url)
	if err != nil {
		return nil, err
	}
	b.cleanup.add(s.Close)
	if b.redis == nil {
		b.redis = make(map[string]*redis.Store)
	}
	b.redis[url] = s
	return s, nil
}

func (b *backends) cacheStore(ctx context.Context) (driven.CacheStore, error) {
	switch b.cfg.Cache.Backend {
	case domain.BackendMemory:
		return memory.NewCacheStore(), nil
	case domain.BackendSQLite:
		s, err := b.sqliteStore()
		if err != nil {
			return nil, err
		}
		return s.CacheStore(), nil
	case domain.BackendRedis:
		s, err := b.redisStore(ctx, b.cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return s.CacheStore(), nil
	}
	return nil, unknownBackend(b.cfg.Cache.Backend)
}

func (b *backends) jobStore(ctx context.Context) (driven.JobStore, error) {
	switch b.cfg.Jobs.Backend {
	case domain.BackendMemory:
		return memory.NewJobStore(), nil
	case domain.BackendSQLite:
		s, err := b.sqliteStore()
		if err != nil {
			return nil, err
		}
		return s.JobStore(), nil
	case domain.BackendRedis:
		s, err := b.redisStore(ctx, b.cfg.Jobs.RedisURL)
		if err != nil {
			return nil, err
		}
		return s.JobStore(), nil
	}
	return nil, unknownBackend(b.cfg.Jobs.Backend)
}

func (b *backends) taskQueue(ctx context.Context) (driven.TaskQueue, error) {
	q := b.cfg.Queue
	switch q.Backend {
	case domain.BackendMemory:
		return memory.NewTaskQueue(q.Capacity), nil
	case domain.BackendSQLite:
		s, err := b.sqliteStore()
		if err != nil {
			return nil, err
		}
		return s.TaskQueue(q.PollInterval), nil
	case domain.BackendRedis:
		s, err := b.redisStore(ctx, q.RedisURL)
		if err != nil {
			return nil, err
		}
		return s.TaskQueue(q.PollInterval), nil
	}
	return nil, unknownBackend(q.Backend)
}

func (b *backends) articleStore(ctx context.Context) (driven.ArticleStore, driven.ArticleLoader, error) {
	switch b.cfg.Articles.Backend {
	case domain.BackendMemory:
		s := memory.NewArticleStore()
		return s, s, nil
	case domain.BackendSQLite:
		s, err := b.sqliteStore()
		if err != nil {
			return nil, nil, err
		}
		articles := s.ArticleStore()
		return articles, articles, nil
	case domain.BackendPostgres:
		s, err := postgres.Open(ctx, b.cfg.Articles.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		b.cleanup.add(s.Close)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return nil, nil, unknownBackend(b.cfg.Articles.Backend)
}

func newEmbedder(cfg domain.EmbeddingConfig) (driven.EmbeddingService, error) {
	var next driven.EmbeddingService
	switch cfg.Provider {
	case "ollama":
		next = ollama.NewEmbeddingService(ollama.Config{BaseURL: cfg.BaseURL, Model: cfg.Model})
	case "openai":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		s, err := openai.NewEmbeddingService(openai.Config{APIKey: apiKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
		if err != nil {
			return nil, err
		}
		next = s
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	return ratelimit.Wrap(next, ratelimit.Config{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}), nil
}

// checkEmbeddingDimensions compares the model's vector size with a stored
// article embedding. Either side may be unknown: an empty corpus, or a
// model that only reports its size after the first request.
func checkEmbeddingDimensions(ctx context.Context, articles driven.ArticleStore, embedder driven.EmbeddingService) error {
	want := embedder.Dimensions()
	if want == 0 {
		return nil
	}
	one := 1
	ids, err := articles.FilterArticles(ctx, "", &one)
	if err != nil {
		return fmt.Errorf("sampling articles: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	embeddings, err := articles.GetEmbeddings(ctx, ids)
	if err != nil {
		return fmt.Errorf("sampling embeddings: %w", err)
	}
	v, ok := embeddings[ids[0]]
	if !ok {
		return nil
	}
	if len(v) != want {
		return fmt.Errorf("embedding: model %s has %d dimensions, article embeddings have %d",
			embedder.ModelName(), want, len(v))
	}
	logger.Debug("embedding dimensions: %d", want)
	return nil
}

func unknownBackend(name string) error {
	return fmt.Errorf("unknown backend %q", name)
}
