// Package openai talks to any OpenAI-compatible chat completions API
// (OpenAI itself, Groq and OpenRouter).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"braindump-service/internal/prompt"

	"go.uber.org/zap"
)

const (
	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultGroqBaseURL       = "https://api.groq.com/openai/v1"
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// Client represents an OpenAI-compatible API client.
type Client struct {
	apiKey     string
	baseURL    string
	modelName  string
	provider   string
	maxTokens  int
	headers    map[string]string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the client.
type Config struct {
	Provider  string // "openai", "groq" or "openrouter"; used for logging and defaults
	APIKey    string
	ModelName string
	BaseURL   string
	MaxTokens int
	// Headers are added to every request (OpenRouter wants HTTP-Referer and X-Title).
	Headers    map[string]string
	HTTPClient *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// NewClient creates a new client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}

	if cfg.BaseURL == "" || cfg.ModelName == "" {
		baseURL, model := defaultsFor(cfg.Provider)
		if cfg.BaseURL == "" {
			cfg.BaseURL = baseURL
		}
		if cfg.ModelName == "" {
			cfg.ModelName = model
		}
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// The pipeline bounds every call with its own deadline; this is only a backstop.
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	client := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		modelName:  cfg.ModelName,
		provider:   cfg.Provider,
		maxTokens:  cfg.MaxTokens,
		headers:    cfg.Headers,
		httpClient: httpClient,
		logger:     logger,
	}

	logger.Info("Chat completions client initialized",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.ModelName),
		zap.String("base_url", client.baseURL))

	return client, nil
}

func defaultsFor(provider string) (baseURL, model string) {
	switch provider {
	case "groq":
		return DefaultGroqBaseURL, "llama-3.3-70b-versatile"
	case "openrouter":
		return DefaultOpenRouterBaseURL, "openai/gpt-4o"
	default:
		return DefaultOpenAIBaseURL, "gpt-4o"
	}
}

// Extract sends the brain dump and returns the raw reply text.
func (c *Client) Extract(ctx context.Context, text string) (string, error) {
	reqBody := chatRequest{
		Model: c.modelName,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.SystemInstruction},
			{Role: "user", Content: prompt.BuildPrompt(text)},
		},
		Temperature: 0.3,
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Chat completions request failed",
			zap.String("provider", c.provider),
			zap.Error(err))
		return "", fmt.Errorf("%s API request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Chat completions API error",
			zap.String("provider", c.provider),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", &StatusError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("%s API error: %s", c.provider, apiResp.Error.Message)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", c.provider)
	}

	content := apiResp.Choices[0].Message.Content

	c.logger.Debug("Chat completion received",
		zap.String("provider", c.provider),
		zap.String("finish_reason", apiResp.Choices[0].FinishReason),
		zap.Int("total_tokens", apiResp.Usage.TotalTokens))

	return content, nil
}

// Close closes the client and releases resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// GetModelInfo returns information about the model being used.
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider": c.provider,
		"model":    c.modelName,
		"base_url": c.baseURL,
	}
}
