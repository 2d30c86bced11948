// Package openai wraps the upstream completion provider behind
// domain.CompletionProvider. The server-held credential never leaves this
// process.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RamaShankarRay/XGpt/internal/config"
	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
)

// Client calls the OpenAI chat completion API.
type Client struct {
	api        *openai.Client
	configured bool
	logger     *slog.Logger
}

// NewClient creates the upstream client. An empty API key yields an
// unconfigured client: every completion call fails with ErrNotConfigured
// while the process keeps serving.
func NewClient(cfg config.OpenAIConfig, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		logger.Warn("no OpenAI API key configured, completion requests will fail")
		return &Client{logger: logger}
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		apiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		api:        openai.NewClientWithConfig(apiConfig),
		configured: true,
		logger:     logger,
	}
}

// Configured reports whether a credential is present. It does not verify
// the credential against the upstream.
func (c *Client) Configured() bool {
	return c.configured
}

// CreateCompletion forwards the turn history upstream and returns the first
// completion choice.
func (c *Client) CreateCompletion(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
	if !c.configured {
		return nil, domain.ErrNotConfigured
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, message := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(message.Role),
			Content: message.Content,
		}
	}

	response, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, mapUpstreamError(err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response from upstream")
	}

	choice := response.Choices[0].Message
	return &domain.CompletionResult{
		Content: choice.Content,
		Role:    choice.Role,
		Usage: &entity.TokenUsage{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		},
	}, nil
}

// mapUpstreamError translates upstream HTTP failures into domain sentinels
// so the handler can map them one to one onto proxy status codes.
func mapUpstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", domain.ErrUpstreamAuth, apiErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", domain.ErrUpstreamRateLimited, apiErr.Message)
		}
		return fmt.Errorf("upstream error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	return err
}
