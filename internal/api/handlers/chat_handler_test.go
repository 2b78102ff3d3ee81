package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rag-mentor/internal/api"
	"rag-mentor/internal/api/handlers"
	"rag-mentor/internal/models"
	"rag-mentor/internal/repository"
	"rag-mentor/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

type stubGenerator struct {
	answer string
	err    error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

type testEnv struct {
	app     *fiber.App
	stories *repository.MemoryStoryStore
}

func newTestEnv(t *testing.T, embedder service.Embedder, generator service.Generator, units ...*models.KnowledgeUnit) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	store := repository.NewMemoryKnowledgeStore(2)
	for _, ku := range units {
		require.NoError(t, store.Upsert(context.Background(), ku))
	}
	stories := repository.NewMemoryStoryStore()

	retrieval := service.NewRetrievalService(embedder, store, 8, logger)
	chatService := service.NewChatService(retrieval, service.NewPromptAssembler(), generator, 30*time.Second, logger)
	storyService := service.NewStoryService(stories, logger)

	app := api.SetupRouter(
		handlers.NewChatHandler(chatService, logger),
		handlers.NewStoryHandler(storyService, logger),
		handlers.NewHealthHandler(true),
		logger,
	)

	return &testEnv{app: app, stories: stories}
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestChatEndpoint(t *testing.T) {
	t.Parallel()

	ku := &models.KnowledgeUnit{
		KuID:         "ku_opener",
		Title:        "Открытие",
		Content:      "подойди и поздоровайся",
		UserLevelFit: []string{"новичок"},
		Stage:        []string{"Знакомство_холодное"},
		Embedding:    []float32{1, 0},
	}
	env := newTestEnv(t, &stubEmbedder{vec: []float32{1, 0}}, &stubGenerator{answer: "конкретный совет"}, ku)

	resp := postJSON(t, env.app, "/chat", map[string]any{
		"user_message": "как начать разговор",
		"convo_history": []map[string]string{
			{"role": "user", "content": "привет"},
		},
		"filters": map[string]any{
			"level": "новичок",
			"stage": []string{"Знакомство_холодное"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Answer    string   `json:"answer"`
		UsedKuIDs []string `json:"used_ku_ids"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "конкретный совет", body.Answer)
	assert.Equal(t, []string{"ku_opener"}, body.UsedKuIDs)
}

func TestChatEndpointEmptyMessage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubEmbedder{vec: []float32{1, 0}}, &stubGenerator{answer: "x"})

	resp := postJSON(t, env.app, "/chat", map[string]any{"user_message": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// An embedding provider failure must come back as an error status with an
// error body, never as 200 with a warning string in the answer field.
func TestChatEndpointEmbedderFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubEmbedder{err: errors.New("provider unreachable")}, &stubGenerator{answer: "x"})

	resp := postJSON(t, env.app, "/chat", map[string]any{"user_message": "вопрос"})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body struct {
		Error  string `json:"error"`
		Answer string `json:"answer"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Error)
	assert.Empty(t, body.Answer)
}

func TestChatEndpointGeneratorFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubEmbedder{vec: []float32{1, 0}}, &stubGenerator{err: errors.New("missing credentials")})

	resp := postJSON(t, env.app, "/chat", map[string]any{"user_message": "вопрос"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestChatEndpointNoMatches(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubEmbedder{vec: []float32{1, 0}}, &stubGenerator{answer: "общий ответ"})

	resp := postJSON(t, env.app, "/chat", map[string]any{
		"user_message": "вопрос",
		"filters":      map[string]any{"stage": []string{"SOS"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Answer    string   `json:"answer"`
		UsedKuIDs []string `json:"used_ku_ids"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "общий ответ", body.Answer)
	assert.NotNil(t, body.UsedKuIDs)
	assert.Empty(t, body.UsedKuIDs)
}

func TestStoryEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubEmbedder{vec: []float32{1, 0}}, &stubGenerator{answer: "x"})

	userID := int64(42)
	resp := postJSON(t, env.app, "/student_story", map[string]any{
		"telegram_user_id": userID,
		"level":            "новичок",
		"stage":            []string{"Свидание"},
		"text":             "всё получилось",
		"outcome":          "успех",
		"used_ku_ids":      []string{"ku_opener"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body.Status)

	stored := env.stories.Stories()
	require.Len(t, stored, 1)
	assert.Equal(t, "всё получилось", stored[0].Text)
	assert.Equal(t, models.OutcomeSuccess, stored[0].Outcome)
	assert.Equal(t, "новичок", stored[0].Level)
	assert.Equal(t, []string{"Свидание"}, stored[0].Stage)
	assert.Equal(t, []string{"ku_opener"}, stored[0].UsedKuIDs)
	require.NotNil(t, stored[0].TelegramUserID)
	assert.Equal(t, userID, *stored[0].TelegramUserID)
}

func TestStoryEndpointValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubEmbedder{vec: []float32{1, 0}}, &stubGenerator{answer: "x"})

	resp := postJSON(t, env.app, "/student_story", map[string]any{
		"text":    "",
		"outcome": "успех",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, env.app, "/student_story", map[string]any{
		"text":    "текст",
		"outcome": "не знаю",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubEmbedder{vec: []float32{1, 0}}, &stubGenerator{answer: "x"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status              string `json:"status"`
		GeneratorConfigured bool   `json:"generator_configured"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body.Status)
	assert.True(t, body.GeneratorConfigured)
}

func TestRootEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubEmbedder{vec: []float32{1, 0}}, &stubGenerator{answer: "x"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
