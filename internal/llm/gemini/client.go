package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"prepwise/internal/llm"
	"prepwise/internal/models"
)

const providerName = "gemini"

type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, providerError(llm.ErrCodeAPIKey, "Failed to create Gemini client", err)
	}
	return &Client{client: client, config: config}, nil
}

// GenerateContent sends a single-turn prompt and returns the first candidate's
// text. Blank output is an error so callers never store an empty interview.
func (c *Client) GenerateContent(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), nil)
	if err != nil {
		return nil, providerError(classify(ctx, err), "Failed to generate content", err)
	}
	if result == nil {
		return nil, providerError(llm.ErrCodeInvalidInput, "No response generated", nil)
	}

	text, err := result.Text()
	if err != nil {
		return nil, providerError(llm.ErrCodeInvalidInput, "Failed to extract response text", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, providerError(llm.ErrCodeInvalidInput, "Empty response generated", nil)
	}

	return &models.GenerationResponse{
		Content:   text,
		RequestID: requestID,
		Metadata: models.GenerationMetadata{
			ProcessingTime: int(time.Since(start).Milliseconds()),
			Provider:       providerName,
			Model:          c.config.Model,
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}

func providerError(code, message string, err error) *llm.ProviderError {
	return &llm.ProviderError{Provider: providerName, Code: code, Message: message, Err: err}
}

func classify(ctx context.Context, err error) string {
	switch {
	case isRateLimitError(err):
		return llm.ErrCodeRateLimit
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return llm.ErrCodeTimeout
	default:
		return llm.ErrCodeServiceDown
	}
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}
