package services

import (
	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// Configuration keys in dot notation.
const (
	KeyDataDir = "data_dir"

	KeyCacheBackend  = "cache.backend"
	KeyCacheRedisURL = "cache.redis_url"
	KeyJobsBackend   = "jobs.backend"
	KeyJobsRedisURL  = "jobs.redis_url"

	KeyQueueBackend      = "queue.backend"
	KeyQueueRedisURL     = "queue.redis_url"
	KeyQueuePollInterval = "queue.poll_interval"
	KeyQueueCapacity     = "queue.capacity"

	KeyArticlesBackend     = "articles.backend"
	KeyArticlesPostgresDSN = "articles.postgres_dsn"

	KeyEmbeddingProvider          = "embedding.provider"
	KeyEmbeddingBaseURL           = "embedding.base_url"
	KeyEmbeddingModel             = "embedding.model"
	KeyEmbeddingAPIKey            = "embedding.api_key"
	KeyEmbeddingRequestsPerSecond = "embedding.requests_per_second"
	KeyEmbeddingBurst             = "embedding.burst"

	KeyWorkerConcurrency  = "worker.concurrency"
	KeyWorkerPollInterval = "worker.poll_interval"
	KeyWorkerMaxAttempts  = "worker.max_attempts"

	KeyHTTPAddr   = "http.addr"
	KeyLogVerbose = "log.verbose"
)

// LoadConfig resolves the runtime configuration, falling back to
// domain.DefaultConfig for every key the store does not set.
func LoadConfig(store driven.ConfigStore) domain.Config {
	cfg := domain.DefaultConfig()

	str := func(key string, dst *string) {
		if v := store.GetString(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if _, ok := store.Get(key); ok {
			*dst = store.GetInt(key)
		}
	}

	str(KeyDataDir, &cfg.DataDir)

	str(KeyCacheBackend, &cfg.Cache.Backend)
	str(KeyCacheRedisURL, &cfg.Cache.RedisURL)
	str(KeyJobsBackend, &cfg.Jobs.Backend)
	str(KeyJobsRedisURL, &cfg.Jobs.RedisURL)

	str(KeyQueueBackend, &cfg.Queue.Backend)
	str(KeyQueueRedisURL, &cfg.Queue.RedisURL)
	if d := store.GetDuration(KeyQueuePollInterval); d > 0 {
		cfg.Queue.PollInterval = d
	}
	num(KeyQueueCapacity, &cfg.Queue.Capacity)

	str(KeyArticlesBackend, &cfg.Articles.Backend)
	str(KeyArticlesPostgresDSN, &cfg.Articles.PostgresDSN)

	str(KeyEmbeddingProvider, &cfg.Embedding.Provider)
	str(KeyEmbeddingBaseURL, &cfg.Embedding.BaseURL)
	str(KeyEmbeddingModel, &cfg.Embedding.Model)
	str(KeyEmbeddingAPIKey, &cfg.Embedding.APIKey)
	if _, ok := store.Get(KeyEmbeddingRequestsPerSecond); ok {
		cfg.Embedding.RequestsPerSecond = store.GetFloat(KeyEmbeddingRequestsPerSecond)
	}
	num(KeyEmbeddingBurst, &cfg.Embedding.Burst)

	num(KeyWorkerConcurrency, &cfg.Worker.Concurrency)
	if d := store.GetDuration(KeyWorkerPollInterval); d > 0 {
		cfg.Worker.PollInterval = d
	}
	num(KeyWorkerMaxAttempts, &cfg.Worker.MaxAttempts)

	str(KeyHTTPAddr, &cfg.HTTP.Addr)
	cfg.Log.Verbose = store.GetBool(KeyLogVerbose)

	return cfg
}
