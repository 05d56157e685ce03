package domain

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrProviderError signals a model provider failure (auth, network, invalid model, bad response).
	ErrProviderError = errors.New("provider error")
	// ErrVectorDimMismatch signals vectors of different lengths.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyVector signals a zero-length vector.
	ErrEmptyVector = errors.New("empty vector")
	// ErrEmptyPrompt signals a blank completion prompt.
	ErrEmptyPrompt = errors.New("prompt must not be empty")
	// ErrEmptyText signals a blank text to embed.
	ErrEmptyText = errors.New("text must not be empty")
	// ErrUnsupported signals a capability the provider does not offer.
	ErrUnsupported = errors.New("not supported by provider")
)

// ProviderError describes a failed call to a model provider.
// errors.Is matches both ErrProviderError and the underlying cause.
type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Provider + " " + e.Op + ": " + ErrProviderError.Error()
	if e.StatusCode != 0 {
		msg += " (status " + strconv.Itoa(e.StatusCode) + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProviderError}
	}
	return []error{ErrProviderError, e.Err}
}

// DimensionMismatchError wraps ErrVectorDimMismatch with both lengths.
type DimensionMismatchError struct {
	Left  int
	Right int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: %d != %d", ErrVectorDimMismatch.Error(), e.Left, e.Right)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrVectorDimMismatch }
