package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rag-mentor/internal/models"

	"github.com/google/uuid"
)

// MemoryKnowledgeStore is an in-process knowledge store implementing the
// same search contract as KnowledgeRepository: filter predicate, cosine
// ranking, ku_id tie-break, topK limit. Used by tests and by local runs
// without Postgres.
type MemoryKnowledgeStore struct {
	mu    sync.RWMutex
	dim   int
	units map[string]*models.KnowledgeUnit
}

func NewMemoryKnowledgeStore(embedDimension int) *MemoryKnowledgeStore {
	return &MemoryKnowledgeStore{
		dim:   embedDimension,
		units: make(map[string]*models.KnowledgeUnit),
	}
}

func (s *MemoryKnowledgeStore) Upsert(ctx context.Context, ku *models.KnowledgeUnit) error {
	if len(ku.Embedding) != s.dim {
		return fmt.Errorf("embedding dimension mismatch for %q: got %d, want %d", ku.KuID, len(ku.Embedding), s.dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *ku
	if existing, ok := s.units[ku.KuID]; ok {
		clone.CreatedAt = existing.CreatedAt
	} else if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	clone.UpdatedAt = time.Now()
	s.units[ku.KuID] = &clone
	return nil
}

func (s *MemoryKnowledgeStore) SearchSimilar(ctx context.Context, embedding []float32, filter models.Filter, topK int) ([]models.ScoredUnit, error) {
	if len(embedding) != s.dim {
		return nil, fmt.Errorf("query embedding dimension mismatch: got %d, want %d", len(embedding), s.dim)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []models.ScoredUnit
	for _, ku := range s.units {
		if !filter.Matches(ku) {
			continue
		}
		results = append(results, models.ScoredUnit{
			Unit:       ku,
			Similarity: cosineSimilarity(embedding, ku.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Unit.KuID < results[j].Unit.KuID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryKnowledgeStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.units)), nil
}

// MemoryStoryStore collects stories in memory. Used by tests.
type MemoryStoryStore struct {
	mu      sync.Mutex
	stories []*models.StudentStory
}

func NewMemoryStoryStore() *MemoryStoryStore {
	return &MemoryStoryStore{}
}

func (s *MemoryStoryStore) Create(ctx context.Context, story *models.StudentStory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}
	if story.Metadata == "" {
		story.Metadata = "{}"
	}
	clone := *story
	s.stories = append(s.stories, &clone)
	return nil
}

// Stories returns a snapshot of everything stored so far.
func (s *MemoryStoryStore) Stories() []*models.StudentStory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.StudentStory, len(s.stories))
	copy(out, s.stories)
	return out
}
