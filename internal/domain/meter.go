package domain

import "context"

type meterKey struct{}

// TokenMeter accumulates provider token usage for one unit of work
// (an HTTP request or a CLI command). Calls are sequential within that unit,
// so the meter is not synchronized.
type TokenMeter struct {
	EmbeddingTokens  int
	CompletionTokens int
	EmbeddingCalls   int
	CompletionCalls  int
}

// NewContextWithMeter returns a context carrying a fresh meter.
func NewContextWithMeter(ctx context.Context) (context.Context, *TokenMeter) {
	m := &TokenMeter{}
	return context.WithValue(ctx, meterKey{}, m), m
}

// MeterFromContext extracts the meter from context. Returns nil if not set.
func MeterFromContext(ctx context.Context) *TokenMeter {
	m, _ := ctx.Value(meterKey{}).(*TokenMeter)
	return m
}

// AddEmbedding records one embedding call. Cache hits record zero tokens.
func (m *TokenMeter) AddEmbedding(tokens int) {
	if m != nil {
		m.EmbeddingCalls++
		m.EmbeddingTokens += tokens
	}
}

// AddCompletion records one completion call.
func (m *TokenMeter) AddCompletion(tokens int) {
	if m != nil {
		m.CompletionCalls++
		m.CompletionTokens += tokens
	}
}
