package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result    EmbeddingResult
	err       error
	got       string
	healthErr error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

func (s *stubEmbedder) HealthCheck(context.Context) error { return s.healthErr }

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: Vector{0.1, 0.2, 0.3}}}
	emb := NewInstructionEmbedder(inner, "query: ")

	result, err := emb.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "query: hello world" {
		t.Errorf("expected prepended text, got %q", inner.got)
	}
	if result.Dimensions() != 3 {
		t.Errorf("expected 3-element vector, got %d", result.Dimensions())
	}
}

func TestInstructionEmbedder_ErrorPropagation(t *testing.T) {
	innerErr := &ProviderError{Provider: "openai", Op: "embed", Err: errors.New("provider down")}
	inner := &stubEmbedder{err: innerErr}
	emb := NewInstructionEmbedder(inner, "query: ")

	_, err := emb.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrProviderError) {
		t.Errorf("expected provider error, got %v", err)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Provider != "openai" {
		t.Errorf("expected *ProviderError in chain, got %v", err)
	}
}

func TestInstructionEmbedder_EmptyInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: Vector{0.5}}}
	emb := NewInstructionEmbedder(inner, "")

	if _, err := emb.Embed(context.Background(), "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "test" {
		t.Errorf("expected 'test', got %q", inner.got)
	}
}

func TestInstructionEmbedder_HealthCheckDelegates(t *testing.T) {
	down := errors.New("down")
	emb := NewInstructionEmbedder(&stubEmbedder{healthErr: down}, "q: ")

	if err := emb.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected inner health error, got %v", err)
	}
}

type plainEmbedder struct{}

func (plainEmbedder) Embed(context.Context, string) (EmbeddingResult, error) {
	return EmbeddingResult{}, nil
}

func TestInstructionEmbedder_HealthCheckUnsupported(t *testing.T) {
	emb := NewInstructionEmbedder(plainEmbedder{}, "q: ")

	if err := emb.HealthCheck(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestTokenMeter(t *testing.T) {
	ctx, m := NewContextWithMeter(context.Background())
	MeterFromContext(ctx).AddEmbedding(7)
	MeterFromContext(ctx).AddEmbedding(0)
	MeterFromContext(ctx).AddCompletion(12)

	if m.EmbeddingCalls != 2 || m.EmbeddingTokens != 7 {
		t.Errorf("embedding: calls=%d tokens=%d", m.EmbeddingCalls, m.EmbeddingTokens)
	}
	if m.CompletionCalls != 1 || m.CompletionTokens != 12 {
		t.Errorf("completion: calls=%d tokens=%d", m.CompletionCalls, m.CompletionTokens)
	}

	// nil meter is a no-op
	MeterFromContext(context.Background()).AddEmbedding(1)
}
