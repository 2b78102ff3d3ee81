package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rag-mentor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

type fakeSearcher struct {
	results []models.ScoredUnit
	err     error
	gotTopK int
}

func (f *fakeSearcher) SearchSimilar(ctx context.Context, embedding []float32, filter models.Filter, topK int) ([]models.ScoredUnit, error) {
	f.gotTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > topK {
		return f.results[:topK], nil
	}
	return f.results, nil
}

type fakeGenerator struct {
	answer    string
	err       error
	gotPrompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.gotPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newChatService(embedder Embedder, searcher KnowledgeSearcher, generator Generator) *ChatService {
	logger := zap.NewNop()
	retrieval := NewRetrievalService(embedder, searcher, 8, logger)
	return NewChatService(retrieval, NewPromptAssembler(), generator, 30*time.Second, logger)
}

func TestChatHappyPath(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: []models.ScoredUnit{
		{Unit: &models.KnowledgeUnit{KuID: "ku_1", Title: "Открытие", Content: "текст"}, Similarity: 0.8},
		{Unit: &models.KnowledgeUnit{KuID: "ku_2", Title: "Калибровка", Content: "текст"}, Similarity: 0.6},
	}}
	generator := &fakeGenerator{answer: "совет"}
	svc := newChatService(&fakeEmbedder{vec: []float32{1, 0}}, searcher, generator)

	answer, usedKuIDs, err := svc.Chat(context.Background(), "как начать разговор", nil, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "совет", answer)
	assert.Equal(t, []string{"ku_1", "ku_2"}, usedKuIDs)
	assert.Equal(t, 8, searcher.gotTopK)
	assert.Contains(t, generator.gotPrompt, "как начать разговор")
	assert.Contains(t, generator.gotPrompt, "Открытие")
}

func TestChatEmptyMessage(t *testing.T) {
	t.Parallel()

	svc := newChatService(&fakeEmbedder{vec: []float32{1}}, &fakeSearcher{}, &fakeGenerator{answer: "x"})

	_, _, err := svc.Chat(context.Background(), "   ", nil, models.Filter{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestChatEmbedderFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("provider unreachable")
	svc := newChatService(&fakeEmbedder{err: cause}, &fakeSearcher{}, &fakeGenerator{answer: "x"})

	_, _, err := svc.Chat(context.Background(), "вопрос", nil, models.Filter{})
	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.ErrorIs(t, err, cause)
}

func TestChatStoreFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	svc := newChatService(&fakeEmbedder{vec: []float32{1}}, &fakeSearcher{err: cause}, &fakeGenerator{answer: "x"})

	_, _, err := svc.Chat(context.Background(), "вопрос", nil, models.Filter{})
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
}

func TestChatGeneratorFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("timeout")
	svc := newChatService(&fakeEmbedder{vec: []float32{1}}, &fakeSearcher{}, &fakeGenerator{err: cause})

	answer, usedKuIDs, err := svc.Chat(context.Background(), "вопрос", nil, models.Filter{})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	// No degraded answer leaks through the error path.
	assert.Empty(t, answer)
	assert.Nil(t, usedKuIDs)
}

func TestChatEmptyRetrievalStillGenerates(t *testing.T) {
	t.Parallel()

	generator := &fakeGenerator{answer: "общий совет"}
	svc := newChatService(&fakeEmbedder{vec: []float32{1}}, &fakeSearcher{}, generator)

	answer, usedKuIDs, err := svc.Chat(context.Background(), "вопрос", nil, models.Filter{Stage: []string{"SOS"}})
	require.NoError(t, err)
	assert.Equal(t, "общий совет", answer)
	assert.Empty(t, usedKuIDs)
	assert.Contains(t, generator.gotPrompt, "Нет релевантных техник")
}

func TestRetrieveValidation(t *testing.T) {
	t.Parallel()

	retrieval := NewRetrievalService(&fakeEmbedder{vec: []float32{1}}, &fakeSearcher{}, 8, zap.NewNop())

	_, err := retrieval.Retrieve(context.Background(), "", models.Filter{}, 0)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestRetrieveExplicitTopK(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{}
	retrieval := NewRetrievalService(&fakeEmbedder{vec: []float32{1}}, searcher, 8, zap.NewNop())

	_, err := retrieval.Retrieve(context.Background(), "вопрос", models.Filter{}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, searcher.gotTopK)
}
