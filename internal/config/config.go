package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider kinds understood by the provider factory.
const (
	KindOpenAI      = "openai"
	KindAnthropic   = "anthropic"
	KindGoogle      = "google"
	KindOllama      = "ollama"
	KindHuggingFace = "huggingface"
)

// Cache drivers.
const (
	CacheNone   = ""
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheValkey = "valkey"
)

var knownKinds = []string{KindOpenAI, KindAnthropic, KindGoogle, KindOllama, KindHuggingFace}

// Config holds the modeldemo configuration.
type Config struct {
	HTTP       HTTPConfig                `yaml:"http"`
	Logging    LoggingConfig             `yaml:"logging"`
	Auth       AuthConfig                `yaml:"auth"`
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Completion CompletionConfig          `yaml:"completion"`
	Embedding  EmbeddingConfig           `yaml:"embedding"`
	Cache      CacheConfig               `yaml:"cache"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings for the HTTP server.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ProviderConfig holds connection settings for one model provider.
// Kind defaults to the map key, so a provider named "openai" needs no kind.
type ProviderConfig struct {
	Kind       string `yaml:"kind"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// CompletionConfig selects the provider and model for text generation.
type CompletionConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Mode      string `yaml:"mode"` // chat (default) | text
	MaxTokens int    `yaml:"max_tokens"`
	// Temperature left unset uses the provider default. An explicit 0 is sent
	// as the smallest positive float32 since the wire format omits zero.
	Temperature *float32 `yaml:"temperature"`
}

// EmbeddingConfig selects the provider and model for embeddings.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"` // 0 = provider default
	Instruction string `yaml:"instruction"`
}

// CacheConfig holds the optional embedding cache settings. Empty driver disables caching.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // "" | memory | redis | valkey
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`     // 0 = no expiry
	MaxEntries       int      `yaml:"max_entries"` // memory driver only
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes, substituting ${VAR} references first.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	for name, p := range c.Providers {
		if p.Kind == "" {
			p.Kind = name
		}
		p.Kind = strings.ToLower(p.Kind)
		if p.TimeoutSec <= 0 {
			p.TimeoutSec = 60
		}
		c.Providers[name] = p
	}
	if c.Completion.Mode == "" {
		c.Completion.Mode = "chat"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "modeldemo:"
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 10000
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	for name, p := range c.Providers {
		if !isKnownKind(p.Kind) {
			return fmt.Errorf("providers.%s.kind must be one of %s, got %q",
				name, strings.Join(knownKinds, ", "), p.Kind)
		}
	}
	if err := c.validateCompletion(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	return c.validateCache()
}

func (c *Config) validateCompletion() error {
	if c.Completion.Provider == "" {
		return nil
	}
	if _, ok := c.Providers[c.Completion.Provider]; !ok {
		return fmt.Errorf("completion.provider %q is not defined in providers", c.Completion.Provider)
	}
	switch c.Completion.Mode {
	case "chat", "text":
	default:
		return fmt.Errorf("completion.mode must be \"chat\" or \"text\", got %q", c.Completion.Mode)
	}
	if c.Completion.MaxTokens < 0 {
		return fmt.Errorf("completion.max_tokens must be non-negative, got %d", c.Completion.MaxTokens)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if c.Embedding.Provider == "" {
		return nil
	}
	p, ok := c.Providers[c.Embedding.Provider]
	if !ok {
		return fmt.Errorf("embedding.provider %q is not defined in providers", c.Embedding.Provider)
	}
	if p.Kind == KindAnthropic {
		return fmt.Errorf("embedding.provider %q: anthropic does not offer embeddings", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must be non-negative, got %d", c.Embedding.Dimensions)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Driver {
	case CacheNone, CacheMemory:
	case CacheRedis, CacheValkey:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be empty, \"memory\", \"redis\" or \"valkey\", got %q", c.Cache.Driver)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must be non-negative, got %d", c.Cache.TTLSec)
	}
	return nil
}

func isKnownKind(kind string) bool {
	for _, k := range knownKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
