package domain

import "time"

// Storage backends selectable for the cache, job and queue stores.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the resolved runtime configuration.
type Config struct {
	// DataDir holds the SQLite database. Defaults to ~/.litmapper/data.
	DataDir string

	Cache     StoreConfig
	Jobs      StoreConfig
	Queue     QueueConfig
	Articles  ArticlesConfig
	Embedding EmbeddingConfig
	Worker    WorkerConfig
	HTTP      HTTPConfig
	Log       LogConfig
}

// StoreConfig selects a key-value backend.
type StoreConfig struct {
	Backend  string
	RedisURL string
}

// QueueConfig selects the task queue backend.
type QueueConfig struct {
	Backend  string
	RedisURL string

	// PollInterval is how often a durable queue is checked for new tasks.
	PollInterval time.Duration

	// Capacity bounds the in-memory queue.
	Capacity int
}

// ArticlesConfig selects the article store.
type ArticlesConfig struct {
	Backend     string
	PostgresDSN string
}

// EmbeddingConfig configures the term embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string
	BaseURL  string
	Model    string
	APIKey   string

	// RequestsPerSecond throttles calls to the provider. Zero disables throttling.
	RequestsPerSecond float64
	Burst             int
}

// WorkerConfig configures background task execution.
type WorkerConfig struct {
	// Concurrency is the number of tasks processed in parallel.
	Concurrency int

	// PollInterval is the delay between checks of an in-progress dependency.
	PollInterval time.Duration

	// MaxAttempts bounds dependency checks. Zero waits indefinitely.
	MaxAttempts int
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string
}

// LogConfig configures diagnostic output.
type LogConfig struct {
	Verbose bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Cache:    StoreConfig{Backend: BackendSQLite},
		Jobs:     StoreConfig{Backend: BackendSQLite},
		Queue:    QueueConfig{Backend: BackendSQLite, PollInterval: time.Second, Capacity: 128},
		Articles: ArticlesConfig{Backend: BackendSQLite},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			BaseURL:  "http://localhost:11434",
			Model:    "nomic-embed-text",
		},
		Worker: WorkerConfig{Concurrency: 2, PollInterval: time.Second},
		HTTP:   HTTPConfig{Addr: ":8000"},
	}
}
