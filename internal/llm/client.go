package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/config"
	"github.com/USSTM/swagger-analyzer/internal/logging"
	"github.com/USSTM/swagger-analyzer/internal/metrics"
)

const (
	opListModels     = "list_models"
	opChatCompletion = "chat_completion"
)

// Client talks to an OpenRouter-compatible chat-completion API.
type Client struct {
	apiKey     string
	baseURL    string
	appTitle   string
	httpClient *http.Client
	metrics    metrics.LLMMetrics
}

// NewClient fails with ErrMissingAPIKey when no bearer token is configured.
func NewClient(cfg config.LLMConfig, m metrics.LLMMetrics) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if m == nil {
		m = metrics.Noop{}
	}

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		appTitle: cfg.AppTitle,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: m,
	}, nil
}

// VerifyCredential lists the models visible to the token and returns how many
// there are. Any status other than 200 is returned as *StatusError.
func (c *Client) VerifyCredential(ctx context.Context) (int, error) {
	if c.apiKey == "" {
		return 0, ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.appTitle != "" {
		req.Header.Set("X-Title", c.appTitle)
	}

	body, err := c.do(req, opListModels)
	if err != nil {
		return 0, err
	}

	var models modelsResponse
	if err := json.Unmarshal(body, &models); err != nil {
		return 0, fmt.Errorf("failed to parse models response: %w", err)
	}

	return len(models.Data), nil
}

// ChatCompletion issues a single chat-completion request. There is no retry.
func (c *Client) ChatCompletion(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.appTitle != "" {
		req.Header.Set("X-Title", c.appTitle)
	}

	body, err := c.do(req, opChatCompletion)
	if err != nil {
		return nil, err
	}

	var completion ChatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to parse completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrNoChoices
	}

	c.metrics.AddTokens("prompt", completion.Usage.PromptTokens)
	c.metrics.AddTokens("completion", completion.Usage.CompletionTokens)

	return &completion, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveLLMCall(op, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	c.metrics.ObserveLLMCall(op, strconv.Itoa(resp.StatusCode), duration.Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	logging.Debug("Model API call finished",
		"operation", op,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}
