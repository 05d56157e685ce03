// Package completion implements the completion invoker: one prompt in, one result out.
package completion

import (
	"context"
	"strings"

	"github.com/kailas-cloud/modeldemo/internal/domain"
)

// Service sends prompts to a configured completion provider.
type Service struct {
	completer domain.Completer
}

// New creates a completion service.
func New(completer domain.Completer) *Service {
	return &Service{completer: completer}
}

// Invoke sends prompt to the provider and returns its result.
// A blank prompt fails with domain.ErrEmptyPrompt before any provider call.
// Provider errors are returned as-is: no interpretation, no retry.
func (s *Service) Invoke(ctx context.Context, prompt string) (domain.CompletionResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return domain.CompletionResult{}, domain.ErrEmptyPrompt
	}
	return s.completer.Complete(ctx, prompt) //nolint:wrapcheck // provider errors surface unchanged
}
