package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		Providers: map[string]ProviderConfig{
			"openai": {APIKey: "test-key"},
			"local":  {Kind: "ollama", BaseURL: "http://localhost:11434/v1"},
		},
		Completion: CompletionConfig{Provider: "openai", Model: "gpt-4"},
		Embedding:  EmbeddingConfig{Provider: "local", Model: "nomic-embed-text"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownProviderKind(t *testing.T) {
	cfg := validConfig()
	cfg.Providers["mystery"] = ProviderConfig{Kind: "cohere"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), `providers.mystery.kind`) {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_UndefinedCompletionProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Completion.Provider = "google"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for undefined provider")
	}
	expected := `completion.provider "google" is not defined in providers`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_CompletionModes(t *testing.T) {
	for _, mode := range []string{"chat", "text"} {
		t.Run("mode="+mode, func(t *testing.T) {
			cfg := validConfig()
			cfg.Completion.Mode = mode
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid mode %q: %v", mode, err)
			}
		})
	}

	cfg := validConfig()
	cfg.Completion.Mode = "stream"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestValidate_AnthropicEmbeddingRejected(t *testing.T) {
	cfg := validConfig()
	cfg.Providers["claude"] = ProviderConfig{Kind: KindAnthropic, APIKey: "k"}
	cfg.ApplyDefaults()
	cfg.Embedding.Provider = "claude"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for anthropic embeddings")
	}
}

func TestValidate_RedisCacheNeedsAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = CacheRedis

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing cache addrs")
	}

	cfg.Cache.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownCacheDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = "memcached"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown cache driver")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Providers: map[string]ProviderConfig{"OpenAI": {}}}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Completion.Mode != "chat" {
		t.Errorf("expected Mode=chat, got %q", cfg.Completion.Mode)
	}
	if cfg.Cache.KeyPrefix != "modeldemo:" {
		t.Errorf("expected KeyPrefix='modeldemo:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.MaxEntries != 10000 {
		t.Errorf("expected MaxEntries=10000, got %d", cfg.Cache.MaxEntries)
	}
	p := cfg.Providers["OpenAI"]
	if p.Kind != "openai" {
		t.Errorf("expected kind derived from name, got %q", p.Kind)
	}
	if p.TimeoutSec != 60 {
		t.Errorf("expected TimeoutSec=60, got %d", p.TimeoutSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:       HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Completion: CompletionConfig{Mode: "text"},
		Cache:      CacheConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Completion.Mode != "text" {
		t.Errorf("expected Mode=text, got %q", cfg.Completion.Mode)
	}
	if cfg.Cache.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Cache.KeyPrefix)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("MODELDEMO_TEST_KEY", "sk-from-env")

	cfg, err := Parse([]byte(`
providers:
  openai:
    api_key: ${MODELDEMO_TEST_KEY}
    base_url: ${MODELDEMO_TEST_UNSET:-https://api.openai.com/v1}
completion:
  provider: openai
  model: gpt-4
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := cfg.Providers["openai"]
	if p.APIKey != "sk-from-env" {
		t.Errorf("expected api key from env, got %q", p.APIKey)
	}
	if p.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base url, got %q", p.BaseURL)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := []byte("embedding:\n  provider: hf\n  model: sentence-transformers/all-MiniLM-L6-v2\n" +
		"providers:\n  hf:\n    kind: huggingface\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers["hf"].Kind != KindHuggingFace {
		t.Errorf("unexpected kind %q", cfg.Providers["hf"].Kind)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
