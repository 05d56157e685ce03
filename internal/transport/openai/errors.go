package openai

import (
	"encoding/json"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/modeldemo/internal/domain"
)

// parseAPIError converts a go-openai error into a *domain.ProviderError.
// The result always matches domain.ErrProviderError, which the HTTP layer maps to 502.
func parseAPIError(provider, op string, err error) error {
	pe := &domain.ProviderError{Provider: provider, Op: op, Err: err}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		pe.StatusCode = reqErr.HTTPStatusCode
		if detail := extractDetail(reqErr.Body); detail != "" {
			pe.Message = detail
		} else {
			pe.Message = string(reqErr.Body)
		}
		return pe
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		pe.StatusCode = apiErr.HTTPStatusCode
		pe.Message = apiErr.Message
		return pe
	}

	return pe
}

// emptyResponse reports a successful call that carried no choices or vectors.
func emptyResponse(provider, op string) error {
	return &domain.ProviderError{Provider: provider, Op: op, Message: "empty response"}
}

// extractDetail pulls a readable message out of a JSON error body.
// Handles {"detail": "..."} and {"error": {"message": "..."}} shapes.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error.Message
}
