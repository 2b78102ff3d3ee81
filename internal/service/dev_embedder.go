package service

import (
	"context"
	"hash/fnv"
	"math/rand"

	"go.uber.org/zap"
)

// DeterministicEmbedder produces hash-seeded pseudo-random vectors: the same
// text always maps to the same vector, different texts almost never collide.
// It carries no semantics whatsoever and exists only so the service and the
// ingestion CLI can run locally without a GigaChat credential. It is selected
// exclusively by RAG_DEV_EMBEDDINGS=true at composition time and must never
// back a production knowledge base.
type DeterministicEmbedder struct {
	dim int
}

func NewDeterministicEmbedder(dim int, logger *zap.Logger) *DeterministicEmbedder {
	logger.Warn("Using deterministic dev embeddings: similarity ranking is meaningless",
		zap.Int("dimension", dim),
	)
	return &DeterministicEmbedder{dim: dim}
}

func (e *DeterministicEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, e.dim)
	for i := range vec {
		vec[i] = rng.Float32()
	}
	return vec, nil
}
