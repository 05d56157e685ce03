package chi

import (
	"math"

	"github.com/kailas-cloud/modeldemo/internal/domain"
)

// ErrorCode is the machine-readable error code in every error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeUnauthorized      ErrorCode = "unauthorized"
	CodeEmptyInput        ErrorCode = "empty_input"
	CodeVectorDimMismatch ErrorCode = "vector_dimension_mismatch"
	CodeEmptyVector       ErrorCode = "empty_vector"
	CodeProviderError     ErrorCode = "provider_error"
	CodeNotSupported      ErrorCode = "not_supported"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CompletionRequest is the body of POST /v1/completions.
type CompletionRequest struct {
	Prompt string `json:"prompt"`
}

// EmbeddingRequest is the body of POST /v1/embeddings.
type EmbeddingRequest struct {
	Text string `json:"text"`
}

// EmbeddingResponse is the result of POST /v1/embeddings.
type EmbeddingResponse struct {
	Embedding  domain.Vector `json:"embedding"`
	Dimensions int           `json:"dimensions"`
	Usage      domain.Usage  `json:"usage"`
}

// SimilarityRequest is the body of POST /v1/similarity.
type SimilarityRequest struct {
	A domain.Vector `json:"a"`
	B domain.Vector `json:"b"`
}

// SimilarityResponse carries a score; Score is null when the similarity is undefined.
type SimilarityResponse struct {
	Score   *float64 `json:"score"`
	Defined bool     `json:"defined"`
}

// CompareRequest is the body of POST /v1/compare.
type CompareRequest struct {
	Documents []string `json:"documents"`
}

// PairResponse is the similarity of documents I and J.
type PairResponse struct {
	I int `json:"i"`
	J int `json:"j"`
	SimilarityResponse
}

// CompareResponse is the result of POST /v1/compare.
type CompareResponse struct {
	Dimensions int            `json:"dimensions"`
	Pairs      []PairResponse `json:"pairs"`
}

// RankRequest is the body of POST /v1/rank.
type RankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

// MatchResponse is one ranked document.
type MatchResponse struct {
	Index    int    `json:"index"`
	Document string `json:"document"`
	SimilarityResponse
}

// RankResponse is the result of POST /v1/rank.
type RankResponse struct {
	Matches []MatchResponse `json:"matches"`
}

// HealthResponse is the result of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func scoreToResponse(score float64) SimilarityResponse {
	if math.IsNaN(score) {
		return SimilarityResponse{}
	}
	return SimilarityResponse{Score: &score, Defined: true}
}
