package openai

import (
	"context"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/modeldemo/internal/domain"
)

// Completer is a completion provider using the OpenAI-compatible API.
// Chat mode sends the prompt as a single user message to /chat/completions;
// text mode sends it for raw continuation to /completions.
type Completer struct {
	client      *openai.Client
	model       string
	mode        domain.CompletionMode
	maxTokens   int
	temperature float32
	provider    string
}

// NewCompleter creates an OpenAI-compatible completion provider. Empty mode means chat.
func NewCompleter(cfg *Config) *Completer {
	mode := cfg.Mode
	if mode == "" {
		mode = domain.ModeChat
	}
	return &Completer{
		client:      newClient(cfg),
		model:       cfg.Model,
		mode:        mode,
		maxTokens:   cfg.MaxTokens,
		temperature: wireTemperature(cfg.Temperature),
		provider:    cfg.Provider,
	}
}

// Complete implements domain.Completer.
func (c *Completer) Complete(ctx context.Context, prompt string) (domain.CompletionResult, error) {
	if c.mode == domain.ModeText {
		return c.completeText(ctx, prompt)
	}
	return c.completeChat(ctx, prompt)
}

// HealthCheck verifies API availability via ListModels.
func (c *Completer) HealthCheck(ctx context.Context) error {
	return listModels(ctx, c.client)
}

func (c *Completer) completeChat(ctx context.Context, prompt string) (domain.CompletionResult, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.CompletionResult{}, parseAPIError(c.provider, "complete", err)
	}
	if len(resp.Choices) == 0 {
		return domain.CompletionResult{}, emptyResponse(c.provider, "complete")
	}

	choice := resp.Choices[0]
	result := domain.CompletionResult{
		Text:         choice.Message.Content,
		Provider:     c.provider,
		Model:        c.modelOr(resp.Model),
		ID:           resp.ID,
		FinishReason: string(choice.FinishReason),
		Usage: domain.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Metadata: map[string]string{"mode": string(domain.ModeChat)},
	}
	if resp.SystemFingerprint != "" {
		result.Metadata["system_fingerprint"] = resp.SystemFingerprint
	}
	return result, nil
}

func (c *Completer) completeText(ctx context.Context, prompt string) (domain.CompletionResult, error) {
	req := openai.CompletionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.client.CreateCompletion(ctx, req)
	if err != nil {
		return domain.CompletionResult{}, parseAPIError(c.provider, "complete", err)
	}
	if len(resp.Choices) == 0 {
		return domain.CompletionResult{}, emptyResponse(c.provider, "complete")
	}

	choice := resp.Choices[0]
	return domain.CompletionResult{
		Text:         choice.Text,
		Provider:     c.provider,
		Model:        c.modelOr(resp.Model),
		ID:           resp.ID,
		FinishReason: string(choice.FinishReason),
		Usage:        legacyUsage(resp.Usage),
		Metadata:     map[string]string{"mode": string(domain.ModeText)},
	}, nil
}

func (c *Completer) modelOr(reported string) string {
	if reported != "" {
		return reported
	}
	return c.model
}

// legacyUsage copies the usage block of a /completions response.
// Some compatible servers omit it entirely.
func legacyUsage(u *openai.Usage) domain.Usage {
	if u == nil {
		return domain.Usage{}
	}
	return domain.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

// wireTemperature maps a configured temperature onto the request field.
// The request omits a zero temperature, so an explicit 0 becomes the
// smallest positive float32.
func wireTemperature(t *float32) float32 {
	switch {
	case t == nil:
		return 0
	case *t == 0:
		return math.SmallestNonzeroFloat32
	default:
		return *t
	}
}
