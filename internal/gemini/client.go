package gemini

import (
	"context"
	"fmt"
	"strings"

	"braindump-service/internal/prompt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client wraps the Gemini API client
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	logger    *zap.Logger
	modelName string
}

// Config for Gemini client
type Config struct {
	APIKey    string
	ModelName string // Default: "gemini-2.0-flash"
	MaxTokens int
}

// NewClient creates a new Gemini client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.0-flash"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.ModelName)

	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.SystemInstruction)},
	}

	// Ask for JSON; the reply is still sanitized downstream
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.3),
		TopP:             genai.Ptr[float32](0.9),
		TopK:             genai.Ptr[int32](40),
		MaxOutputTokens:  genai.Ptr(int32(cfg.MaxTokens)),
	}

	logger.Info("Gemini client initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_tokens", cfg.MaxTokens))

	return &Client{
		client:    client,
		model:     model,
		logger:    logger,
		modelName: cfg.ModelName,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// Extract sends the brain dump to Gemini and returns the raw reply text
func (c *Client) Extract(ctx context.Context, text string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt.BuildPrompt(text)))
	if err != nil {
		c.logger.Error("Gemini API error", zap.Error(err))
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	// an empty reply is not an upstream failure; it is sanitized like any other text
	reply := collectText(resp.Candidates[0].Content.Parts)

	c.logger.Debug("Gemini extraction completed",
		zap.String("model", c.modelName),
		zap.Int("reply_length", len(reply)))

	return reply, nil
}

// collectText joins the text parts of a candidate, ignoring any non-text part
func collectText(parts []genai.Part) string {
	var b strings.Builder
	for _, part := range parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider": "gemini",
		"model":    c.modelName,
	}
}
