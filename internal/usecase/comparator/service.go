// Package comparator embeds documents and scores them by cosine similarity.
package comparator

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/kailas-cloud/modeldemo/internal/domain"
	"github.com/kailas-cloud/modeldemo/internal/metrics"
)

// PairScore is the similarity of documents I and J (I < J).
// Score is NaN when either vector has zero magnitude.
type PairScore struct {
	I     int
	J     int
	Score float64
}

// Comparison holds one vector per input document and every pairwise score.
type Comparison struct {
	Vectors []domain.Vector
	Pairs   []PairScore
}

// Match is a document scored against a query.
type Match struct {
	Index    int
	Document string
	Score    float64
}

// Service pairs an embedding provider with the similarity formula.
type Service struct {
	embedder domain.Embedder
}

// New creates a comparator service.
func New(embedder domain.Embedder) *Service {
	return &Service{embedder: embedder}
}

// Embed returns the provider's vector for text, unmodified.
func (s *Service) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingResult{}, domain.ErrEmptyText
	}
	return s.embedder.Embed(ctx, text) //nolint:wrapcheck // provider errors surface unchanged
}

// Similarity returns the cosine similarity of a and b.
func (s *Service) Similarity(a, b domain.Vector) (float64, error) {
	score, err := domain.CosineSimilarity(a, b)
	switch {
	case err != nil:
		metrics.SimilarityComputationsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("similarity: %w", err)
	case math.IsNaN(score):
		metrics.SimilarityComputationsTotal.WithLabelValues("undefined").Inc()
	default:
		metrics.SimilarityComputationsTotal.WithLabelValues("ok").Inc()
	}
	return score, nil
}

// Compare embeds every document in order and scores every unordered pair.
func (s *Service) Compare(ctx context.Context, documents []string) (Comparison, error) {
	vectors, err := s.embedAll(ctx, documents)
	if err != nil {
		return Comparison{}, err
	}

	pairs := make([]PairScore, 0, len(vectors)*(len(vectors)-1)/2)
	for i := range vectors {
		for j := i + 1; j < len(vectors); j++ {
			score, err := s.Similarity(vectors[i], vectors[j])
			if err != nil {
				return Comparison{}, fmt.Errorf("documents %d and %d: %w", i, j, err)
			}
			pairs = append(pairs, PairScore{I: i, J: j, Score: score})
		}
	}

	return Comparison{Vectors: vectors, Pairs: pairs}, nil
}

// Rank orders documents by descending similarity to query.
// Undefined (NaN) scores sort last; ties keep input order.
func (s *Service) Rank(ctx context.Context, query string, documents []string) ([]Match, error) {
	q, err := s.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	vectors, err := s.embedAll(ctx, documents)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(documents))
	for i, v := range vectors {
		score, err := s.Similarity(q.Embedding, v)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		matches[i] = Match{Index: i, Document: documents[i], Score: score}
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		aNaN, bNaN := math.IsNaN(a.Score), math.IsNaN(b.Score)
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return 1
		case bNaN:
			return -1
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	return matches, nil
}

func (s *Service) embedAll(ctx context.Context, documents []string) ([]domain.Vector, error) {
	vectors := make([]domain.Vector, len(documents))
	for i, doc := range documents {
		res, err := s.Embed(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		vectors[i] = res.Embedding
	}
	return vectors, nil
}
