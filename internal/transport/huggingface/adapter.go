package huggingface

import (
	"context"

	"github.com/kailas-cloud/modeldemo/internal/domain"
)

// Config holds the Inference API settings.
type Config struct {
	Token    string
	Model    string
	Provider string
}

// Embedder produces embeddings through feature-extraction inference.
type Embedder struct {
	api      inference
	model    string
	provider string
}

// NewEmbedder creates a Hugging Face embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{
		api:      newInferenceClient(cfg.Token, cfg.Model),
		model:    cfg.Model,
		provider: cfg.Provider,
	}
}

// Embed implements domain.Embedder. The Inference API reports no token usage.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := e.api.featureExtraction(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, &domain.ProviderError{Provider: e.provider, Op: "embed", Err: err}
	}
	if len(vec) == 0 {
		return domain.EmbeddingResult{}, &domain.ProviderError{Provider: e.provider, Op: "embed", Message: "empty response"}
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// Completer produces text through text-generation inference.
type Completer struct {
	api      inference
	model    string
	provider string
}

// NewCompleter creates a Hugging Face completion provider.
func NewCompleter(cfg *Config) *Completer {
	return &Completer{
		api:      newInferenceClient(cfg.Token, cfg.Model),
		model:    cfg.Model,
		provider: cfg.Provider,
	}
}

// Complete implements domain.Completer. Text generation is always a raw continuation.
func (c *Completer) Complete(ctx context.Context, prompt string) (domain.CompletionResult, error) {
	texts, err := c.api.textGeneration(ctx, prompt)
	if err != nil {
		return domain.CompletionResult{}, &domain.ProviderError{Provider: c.provider, Op: "complete", Err: err}
	}
	if len(texts) == 0 {
		return domain.CompletionResult{}, &domain.ProviderError{Provider: c.provider, Op: "complete", Message: "empty response"}
	}
	return domain.CompletionResult{
		Text:     texts[0],
		Provider: c.provider,
		Model:    c.model,
		Metadata: map[string]string{"mode": string(domain.ModeText)},
	}, nil
}
