package completion

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/modeldemo/internal/domain"
	"github.com/kailas-cloud/modeldemo/internal/metrics"
)

// InstrumentedCompleter wraps a Completer with metrics, logging and token metering.
type InstrumentedCompleter struct {
	inner    domain.Completer
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedCompleter wraps a completer with observability.
func NewInstrumentedCompleter(inner domain.Completer, provider, model string, logger *zap.Logger) *InstrumentedCompleter {
	return &InstrumentedCompleter{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Complete delegates to the inner completer and records the outcome.
func (p *InstrumentedCompleter) Complete(ctx context.Context, prompt string) (domain.CompletionResult, error) {
	start := time.Now()

	result, err := p.inner.Complete(ctx, prompt)

	duration := time.Since(start)
	metrics.CompletionRequestDuration.WithLabelValues(p.provider, p.model).Observe(duration.Seconds())

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(p.provider, p.model, "complete").Inc()
		p.logger.Error("Completion request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.CompletionResult{}, err //nolint:wrapcheck // pass-through decorator
	}

	metrics.CompletionRequestsTotal.WithLabelValues(p.provider, p.model, "success").Inc()
	u := result.Usage
	if u.TotalTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(p.provider, p.model, "prompt").Add(float64(u.PromptTokens))
		metrics.CompletionTokensTotal.WithLabelValues(p.provider, p.model, "completion").Add(float64(u.CompletionTokens))
		metrics.CompletionTokensTotal.WithLabelValues(p.provider, p.model, "total").Add(float64(u.TotalTokens))
	}
	domain.MeterFromContext(ctx).AddCompletion(u.TotalTokens)

	p.logger.Debug("Completion request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.String("finish_reason", result.FinishReason),
		zap.Int("total_tokens", u.TotalTokens),
	)

	return result, nil
}

// HealthCheck delegates to the inner completer when it supports health checks.
// Returns domain.ErrUnsupported when it does not.
func (p *InstrumentedCompleter) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through decorator
	}
	return domain.ErrUnsupported
}
