package memory

import (
	"sync"
	"time"

	"github.com/custodia-labs/litmapper/internal/adapters/driven/config/value"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for testing.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a config store seeded with values.
func NewConfigStore(values map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	return value.String(v)
}

func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	return value.Int(v)
}

func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	return value.Bool(v)
}

func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	return value.Float(v)
}

func (s *ConfigStore) GetDuration(key string) time.Duration {
	v, _ := s.Get(key)
	return value.Duration(v)
}

func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	return value.StringSlice(v)
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path returns a placeholder path.
func (s *ConfigStore) Path() string { return ":memory:" }
