package domain

import "context"

// Completer maps a prompt to generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (CompletionResult, error)
}

// CompletionMode selects how a prompt is sent to the provider.
type CompletionMode string

const (
	// ModeChat sends the prompt as a single user message to a chat model.
	ModeChat CompletionMode = "chat"
	// ModeText sends the raw prompt to a base completion model.
	ModeText CompletionMode = "text"
)

// Valid reports whether m is a known mode.
func (m CompletionMode) Valid() bool {
	return m == ModeChat || m == ModeText
}

// Usage is the token accounting reported by a provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResult is the generated text plus whatever metadata the provider returned.
type CompletionResult struct {
	Text         string            `json:"text"`
	Provider     string            `json:"provider"`
	Model        string            `json:"model"`
	ID           string            `json:"id,omitempty"`
	FinishReason string            `json:"finish_reason,omitempty"`
	Usage        Usage             `json:"usage"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}
