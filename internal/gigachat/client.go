// Package gigachat adapts the GigaChat API to the capability interfaces the
// chat pipeline consumes: generation goes through the gigago SDK, embeddings
// through the REST API with an OAuth bearer token.
package gigachat

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"rag-mentor/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// REST API base. Documentation: https://developers.sber.ru/docs/ru/gigachat/api/main
	apiBaseURL = "https://gigachat.devices.sberbank.ru/api/v1"
	oauthURL   = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

	// Refresh the token slightly before the provider expires it.
	tokenExpiryMargin = time.Minute
)

type Client struct {
	client     *gigago.Client
	model      *gigago.GenerativeModel
	cfg        *config.GigaChatConfig
	dim        int
	logger     *zap.Logger
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New creates a GigaChat client. A missing API key is a configuration error,
// not a degraded mode: construction fails instead of falling back to fake
// vectors.
func New(ctx context.Context, cfg *config.GigaChatConfig, embedDimension int, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GIGACHAT_API_KEY is not configured")
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.Temperature = cfg.Temperature

	httpClient := &http.Client{}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	c := &Client{
		client:     client,
		model:      model,
		cfg:        cfg,
		dim:        embedDimension,
		logger:     logger,
		httpClient: httpClient,
	}

	if _, err := c.token(ctx); err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	return c, nil
}

func (c *Client) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// Generate asks the model for a completion. Single attempt; retries are the
// caller's decision.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := c.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("gigachat generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("gigachat returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Embed maps text to a vector via POST /embeddings. The response dimension
// must match the deployment-wide constant; a mismatch means the configured
// model and EMBED_DIMENSION disagree.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{
		"model": c.cfg.EmbeddingModel,
		"input": []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBaseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var embResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("empty embeddings response")
	}

	vec := embResp.Data[0].Embedding
	if len(vec) != c.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: provider returned %d, configured %d", len(vec), c.dim)
	}

	return vec, nil
}

// token returns a cached access token, refreshing it via the OAuth endpoint
// when missing or close to expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpiryMargin)) {
		return c.accessToken, nil
	}

	rqUID := uuid.New().String()

	formData := url.Values{}
	formData.Set("scope", c.cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", rqUID)
	// API key is already Base64-encoded per GigaChat API docs
	req.Header.Set("Authorization", "Basic "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("rq_uid", rqUID),
		)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		// Unix milliseconds of token expiry
		ExpiresAt int64 `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	c.accessToken = oauthResp.AccessToken
	if oauthResp.ExpiresAt > 0 {
		c.tokenExpiry = time.UnixMilli(oauthResp.ExpiresAt)
	} else {
		c.tokenExpiry = time.Now().Add(25 * time.Minute)
	}

	c.logger.Info("GigaChat access token obtained", zap.Time("expires", c.tokenExpiry))
	return c.accessToken, nil
}
