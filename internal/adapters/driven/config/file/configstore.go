package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/litmapper/internal/adapters/driven/config/value"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// EnvPrefix marks environment variables that override file values.
const EnvPrefix = "LITMAPPER_"

// DefaultFileName is used when NewConfigStore is given a directory.
const DefaultFileName = "config.toml"

// ConfigStore is a file-based implementation of driven.ConfigStore.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
	env      map[string]any
}

// NewConfigStore opens config.toml in configDir.
// If configDir is empty, defaults to ~/.litmapper.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".litmapper")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}
	return Open(filepath.Join(configDir, DefaultFileName))
}

// Open loads the configuration file at path. A missing file is not an
// error; it is created on the first Set or Save.
func Open(path string) (*ConfigStore, error) {
	if _, err := formatOf(path); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: path,
		data:     make(map[string]any),
		env:      make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a configuration value by key. Environment overrides win.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if val, ok := s.env[key]; ok {
		return val, true
	}
	val, ok := s.data[key]
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

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the file values. Environment overrides are never written.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to disk (caller must hold lock).
func (s *ConfigStore) save() error {
	format, err := formatOf(s.filePath)
	if err != nil {
		return err
	}

	nested := unflattenMap(s.data)
	var data []byte
	switch format {
	case formatYAML:
		data, err = yaml.Marshal(nested)
	default:
		data, err = toml.Marshal(nested)
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads the .env file, the configuration file and the environment.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	envFile := filepath.Join(filepath.Dir(s.filePath), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}
	s.env = envOverrides(os.Environ())

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	loaded, err := decode(s.filePath, data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	s.data = flattenMap(loaded, "")
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Keys returns every key set by the file or the environment, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(s.data)+len(s.env))
	for k := range s.data {
		seen[k] = true
	}
	for k := range s.env {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ==================== Helper Functions ====================

type fileFormat int

const (
	formatTOML fileFormat = iota
	formatYAML
)

func formatOf(path string) (fileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
}

func decode(path string, data []byte) (map[string]any, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	loaded := make(map[string]any)
	switch format {
	case formatYAML:
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = toml.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = make(map[string]any)
	}
	return loaded, nil
}

// envOverrides maps LITMAPPER_SECTION__KEY=value entries to "section.key".
func envOverrides(environ []string) map[string]any {
	out := make(map[string]any)
	for _, kv := range environ {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if key != "" {
			out[key] = val
		}
	}
	return out
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// unflattenMap is the inverse of flattenMap.
func unflattenMap(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := result
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return result
}
