package service

import (
	"context"

	"rag-mentor/internal/models"

	"go.uber.org/zap"
)

// Embedder maps free text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator asks the language model for an answer to an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// KnowledgeSearcher answers filtered nearest-neighbor queries over the
// knowledge base. Implemented by repository.KnowledgeRepository and the
// in-memory store.
type KnowledgeSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, filter models.Filter, topK int) ([]models.ScoredUnit, error)
}

// RetrievalService embeds a query and ranks knowledge units against it.
type RetrievalService struct {
	embedder Embedder
	searcher KnowledgeSearcher
	topK     int
	logger   *zap.Logger
}

func NewRetrievalService(embedder Embedder, searcher KnowledgeSearcher, topK int, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		searcher: searcher,
		topK:     topK,
		logger:   logger,
	}
}

// Retrieve returns up to topK knowledge units matching the filter, ranked by
// similarity to queryText. topK <= 0 uses the configured default. An empty
// result is not an error; an embedding failure is, and is never papered over
// with a degraded substitute.
func (s *RetrievalService) Retrieve(ctx context.Context, queryText string, filter models.Filter, topK int) ([]models.ScoredUnit, error) {
	if queryText == "" {
		return nil, &ValidationError{Msg: "query text is empty"}
	}
	if topK <= 0 {
		topK = s.topK
	}

	embedding, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}

	results, err := s.searcher.SearchSimilar(ctx, embedding, filter, topK)
	if err != nil {
		return nil, &StoreError{Err: err}
	}

	s.logger.Info("Knowledge retrieval completed",
		zap.Int("results", len(results)),
		zap.Int("top_k", topK),
	)

	return results, nil
}
