package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/modeldemo/internal/domain"
	logpkg "github.com/kailas-cloud/modeldemo/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrEmptyPrompt, http.StatusBadRequest, CodeEmptyInput),
	sentinelHandler(domain.ErrEmptyText, http.StatusBadRequest, CodeEmptyInput),
	sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeVectorDimMismatch),
	sentinelHandler(domain.ErrEmptyVector, http.StatusBadRequest, CodeEmptyVector),
	sentinelHandler(domain.ErrUnsupported, http.StatusNotImplemented, CodeNotSupported),
	sentinelHandler(domain.ErrProviderError, http.StatusBadGateway, CodeProviderError),
}

// safeSentinels are the errors whose message may be shown to clients.
var safeSentinels = []error{
	domain.ErrEmptyPrompt,
	domain.ErrEmptyText,
	domain.ErrVectorDimMismatch,
	domain.ErrEmptyVector,
	domain.ErrUnsupported,
	domain.ErrProviderError,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range safeSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
