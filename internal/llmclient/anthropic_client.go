// Package llmclient provides completion-provider clients implementing the
// schemas.CompletionClient interface.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/crashlens/crashlens/api/schemas"
	"github.com/crashlens/crashlens/internal/config"
)

const defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"

// anthropicVersion is the API version header required by the messages API.
const anthropicVersion = "2023-06-01"

// AnthropicClient implements schemas.CompletionClient for the Anthropic
// messages API.
type AnthropicClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
	config     config.LLMConfig
}

// -- Anthropic API request/response structures (internal to this file) --

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequestPayload struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponsePayload struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicErrorPayload struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicClient initializes the client from configuration.
func NewAnthropicClient(cfg config.LLMConfig, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultAnthropicEndpoint
	}

	return &AnthropicClient{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		config:   cfg,
		httpClient: &http.Client{
			Timeout: cfg.APITimeout,
		},
		logger: logger.Named("llm_client.anthropic"),
	}, nil
}

// Complete sends the prompts to the messages API and returns the model's
// single text reply. Failures are terminal; there is no retry.
func (c *AnthropicClient) Complete(ctx context.Context, req schemas.CompletionRequest) (string, error) {
	payload := c.buildRequestPayload(req)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)
	if err != nil {
		return "", fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError(resp.StatusCode, respBody)
	}

	var responsePayload anthropicResponsePayload
	if err := json.Unmarshal(respBody, &responsePayload); err != nil {
		return "", fmt.Errorf("failed to decode response payload: %w", err)
	}

	if len(responsePayload.Content) == 0 {
		return "", fmt.Errorf("anthropic API returned empty content (stop_reason: %s)", responsePayload.StopReason)
	}

	c.logger.Info("LLM completion finished (Anthropic)",
		zap.Duration("duration", duration),
		zap.String("stop_reason", responsePayload.StopReason),
		zap.Int("input_tokens", responsePayload.Usage.InputTokens),
		zap.Int("output_tokens", responsePayload.Usage.OutputTokens),
	)

	return responsePayload.Content[0].Text, nil
}

// Close satisfies schemas.CompletionClient. The underlying http.Client holds
// no resources that outlive idle connections.
func (c *AnthropicClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *AnthropicClient) buildRequestPayload(req schemas.CompletionRequest) anthropicRequestPayload {
	maxTokens := req.Options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.config.MaxTokens
	}

	return anthropicRequestPayload{
		Model:     c.config.Model,
		MaxTokens: maxTokens,
		System:    req.SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: req.Options.Temperature,
	}
}

// apiError extracts the provider's error message so it can be surfaced to the
// caller for diagnosability.
func (c *AnthropicClient) apiError(statusCode int, body []byte) error {
	var errPayload anthropicErrorPayload
	if err := json.Unmarshal(body, &errPayload); err == nil && errPayload.Error.Message != "" {
		c.logger.Warn("Anthropic API error",
			zap.Int("status", statusCode),
			zap.String("type", errPayload.Error.Type),
			zap.String("message", errPayload.Error.Message),
		)
		return fmt.Errorf("anthropic API error (status %d, %s): %s",
			statusCode, errPayload.Error.Type, errPayload.Error.Message)
	}
	return fmt.Errorf("anthropic API error (status %d): %s", statusCode, string(body))
}
