// Package chi exposes the completion and embedding services over HTTP.
package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/modeldemo/internal/domain"
	logpkg "github.com/kailas-cloud/modeldemo/internal/logger"
	"github.com/kailas-cloud/modeldemo/internal/usecase/comparator"
	completionuc "github.com/kailas-cloud/modeldemo/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/modeldemo/internal/usecase/health"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers. A nil completion or comparator service
// answers its routes with 501.
type Server struct {
	completion *completionuc.Service
	comparator *comparator.Service
	health     *healthuc.Service
	logger     *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	completion *completionuc.Service,
	cmp *comparator.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		completion: completion,
		comparator: cmp,
		health:     health,
		logger:     logger,
	}
}

// Routes registers all handlers on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/completions", s.CreateCompletion)
		r.Post("/embeddings", s.CreateEmbedding)
		r.Post("/similarity", s.Similarity)
		r.Post("/compare", s.Compare)
		r.Post("/rank", s.Rank)
	})
}

// CreateCompletion handles POST /v1/completions.
func (s *Server) CreateCompletion(w http.ResponseWriter, r *http.Request) {
	if s.completion == nil {
		s.handleDomainError(w, r, domain.ErrUnsupported)
		return
	}
	var req CompletionRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, meter := domain.NewContextWithMeter(r.Context())
	result, err := s.completion.Invoke(ctx, req.Prompt)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, meter)
	writeJSON(w, http.StatusOK, result)
}

// CreateEmbedding handles POST /v1/embeddings.
func (s *Server) CreateEmbedding(w http.ResponseWriter, r *http.Request) {
	if s.comparator == nil {
		s.handleDomainError(w, r, domain.ErrUnsupported)
		return
	}
	var req EmbeddingRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, meter := domain.NewContextWithMeter(r.Context())
	result, err := s.comparator.Embed(ctx, req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, meter)
	writeJSON(w, http.StatusOK, EmbeddingResponse{
		Embedding:  result.Embedding,
		Dimensions: result.Dimensions(),
		Usage: domain.Usage{
			PromptTokens: result.PromptTokens,
			TotalTokens:  result.TotalTokens,
		},
	})
}

// Similarity handles POST /v1/similarity. It needs no provider.
func (s *Server) Similarity(w http.ResponseWriter, r *http.Request) {
	var req SimilarityRequest
	if !s.decode(w, r, &req) {
		return
	}

	score, err := s.similarity(req.A, req.B)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, scoreToResponse(score))
}

// Compare handles POST /v1/compare.
func (s *Server) Compare(w http.ResponseWriter, r *http.Request) {
	if s.comparator == nil {
		s.handleDomainError(w, r, domain.ErrUnsupported)
		return
	}
	var req CompareRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Documents) < 2 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "at least two documents are required")
		return
	}

	ctx, meter := domain.NewContextWithMeter(r.Context())
	cmp, err := s.comparator.Compare(ctx, req.Documents)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := CompareResponse{Pairs: make([]PairResponse, len(cmp.Pairs))}
	if len(cmp.Vectors) > 0 {
		resp.Dimensions = len(cmp.Vectors[0])
	}
	for i, p := range cmp.Pairs {
		resp.Pairs[i] = PairResponse{I: p.I, J: p.J, SimilarityResponse: scoreToResponse(p.Score)}
	}

	setUsageHeaders(w, meter)
	writeJSON(w, http.StatusOK, resp)
}

// Rank handles POST /v1/rank.
func (s *Server) Rank(w http.ResponseWriter, r *http.Request) {
	if s.comparator == nil {
		s.handleDomainError(w, r, domain.ErrUnsupported)
		return
	}
	var req RankRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "documents must not be empty")
		return
	}

	ctx, meter := domain.NewContextWithMeter(r.Context())
	matches, err := s.comparator.Rank(ctx, req.Query, req.Documents)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := RankResponse{Matches: make([]MatchResponse, len(matches))}
	for i, m := range matches {
		resp.Matches[i] = MatchResponse{Index: m.Index, Document: m.Document, SimilarityResponse: scoreToResponse(m.Score)}
	}

	setUsageHeaders(w, meter)
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func (s *Server) similarity(a, b domain.Vector) (float64, error) {
	if s.comparator != nil {
		return s.comparator.Similarity(a, b) //nolint:wrapcheck // mapped by handleDomainError
	}
	return domain.CosineSimilarity(a, b) //nolint:wrapcheck // mapped by handleDomainError
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		logpkg.FromContextOr(r.Context(), s.logger).Debug("invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request")
		return false
	}
	return true
}

func setUsageHeaders(w http.ResponseWriter, meter *domain.TokenMeter) {
	if meter.EmbeddingCalls > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(meter.EmbeddingTokens))
	}
	if meter.CompletionCalls > 0 {
		w.Header().Set("X-Completion-Tokens", strconv.Itoa(meter.CompletionTokens))
	}
}
