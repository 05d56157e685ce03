// Package provider is the composition root for model providers: it maps
// configuration onto adapters and wraps them in the decorator chain.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/modeldemo/internal/config"
	"github.com/kailas-cloud/modeldemo/internal/db"
	"github.com/kailas-cloud/modeldemo/internal/db/memory"
	dbRedis "github.com/kailas-cloud/modeldemo/internal/db/redis"
	"github.com/kailas-cloud/modeldemo/internal/domain"
	"github.com/kailas-cloud/modeldemo/internal/metrics"
	"github.com/kailas-cloud/modeldemo/internal/repository/embcache"
	hfTransport "github.com/kailas-cloud/modeldemo/internal/transport/huggingface"
	openaiTransport "github.com/kailas-cloud/modeldemo/internal/transport/openai"
	completionuc "github.com/kailas-cloud/modeldemo/internal/usecase/completion"
	embeddinguc "github.com/kailas-cloud/modeldemo/internal/usecase/embedding"
)

// Default endpoints of the OpenAI-compatible APIs.
const (
	OpenAIBaseURL    = "https://api.openai.com/v1"
	AnthropicBaseURL = "https://api.anthropic.com/v1/"
	GoogleBaseURL    = "https://generativelanguage.googleapis.com/v1beta/openai/"
	OllamaBaseURL    = "http://localhost:11434/v1"
)

// BaseURL returns the configured base URL or the default for kind.
func BaseURL(p config.ProviderConfig) string {
	if p.BaseURL != "" {
		return p.BaseURL
	}
	switch p.Kind {
	case config.KindAnthropic:
		return AnthropicBaseURL
	case config.KindGoogle:
		return GoogleBaseURL
	case config.KindOllama:
		return OllamaBaseURL
	default:
		return OpenAIBaseURL
	}
}

func lookup(cfg *config.Config, name string) (config.ProviderConfig, error) {
	if name == "" {
		return config.ProviderConfig{}, fmt.Errorf("no provider configured: %w", domain.ErrUnsupported)
	}
	p, ok := cfg.Providers[name]
	if !ok {
		return config.ProviderConfig{}, fmt.Errorf("provider %q is not defined", name)
	}
	return p, nil
}

func apiKey(p config.ProviderConfig) string {
	// Ollama ignores the key but go-openai always sends the header.
	if p.APIKey == "" && p.Kind == config.KindOllama {
		return "ollama"
	}
	return p.APIKey
}

func httpClient(p config.ProviderConfig) *http.Client {
	return &http.Client{Timeout: time.Duration(p.TimeoutSec) * time.Second}
}

// NewCompleter builds the configured completion provider wrapped in instrumentation.
// An empty completion.provider yields domain.ErrUnsupported.
func NewCompleter(cfg *config.Config, logger *zap.Logger) (domain.Completer, error) {
	name := cfg.Completion.Provider
	p, err := lookup(cfg, name)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	var base domain.Completer
	switch p.Kind {
	case config.KindHuggingFace:
		base = hfTransport.NewCompleter(&hfTransport.Config{
			Token:    p.APIKey,
			Model:    cfg.Completion.Model,
			Provider: name,
		})
	default:
		base = openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:      apiKey(p),
			BaseURL:     BaseURL(p),
			Model:       cfg.Completion.Model,
			Provider:    name,
			HTTPClient:  httpClient(p),
			Mode:        domain.CompletionMode(cfg.Completion.Mode),
			MaxTokens:   cfg.Completion.MaxTokens,
			Temperature: cfg.Completion.Temperature,
		})
	}

	return completionuc.NewInstrumentedCompleter(base, name, cfg.Completion.Model, logger), nil
}

// NewEmbedder builds the embedding decorator chain:
// adapter -> cached (when cache is non-nil) -> instrumented -> instruction prefix.
// The instruction is outermost, so cache keys include it.
func NewEmbedder(cfg *config.Config, cache db.KVStore, logger *zap.Logger) (domain.Embedder, error) {
	name := cfg.Embedding.Provider
	p, err := lookup(cfg, name)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	model := cfg.Embedding.Model

	var base domain.Embedder
	switch p.Kind {
	case config.KindAnthropic:
		return nil, fmt.Errorf("embedding provider %q: %w", name, domain.ErrUnsupported)
	case config.KindHuggingFace:
		base = hfTransport.NewEmbedder(&hfTransport.Config{
			Token:    p.APIKey,
			Model:    model,
			Provider: name,
		})
	default:
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     apiKey(p),
			BaseURL:    BaseURL(p),
			Model:      model,
			Provider:   name,
			HTTPClient: httpClient(p),
			Dimensions: cfg.Embedding.Dimensions,
		})
	}

	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Options{
			KeyPrefix: cfg.Cache.KeyPrefix,
			Namespace: cacheNamespace(name, model, cfg.Embedding.Dimensions),
			TTL:       time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, name, model, logger)

	if cfg.Embedding.Instruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Embedding.Instruction), nil
	}
	return embedder, nil
}

func cacheNamespace(provider, model string, dims int) string {
	ns := provider + "/" + model
	if dims > 0 {
		ns += fmt.Sprintf("/%d", dims)
	}
	return ns
}

// NewCacheStore opens the configured cache store and waits for it to be ready.
// Returns (nil, nil) when caching is disabled.
func NewCacheStore(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	var store db.Store
	switch cfg.Driver {
	case config.CacheNone:
		return nil, nil //nolint:nilnil // caching disabled
	case config.CacheMemory:
		store = memory.NewStore(memory.Options{
			MaxEntries:    cfg.MaxEntries,
			SweepInterval: time.Duration(cfg.TTLSec) * time.Second,
		})
	case config.CacheRedis, config.CacheValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	return store, nil
}
