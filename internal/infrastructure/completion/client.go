// Package completion implements domain.CompletionClient over HTTP against
// the backend proxy, the way the browser client talks to it.
package completion

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/handler/dto"
)

const (
	endpointChat   = "/api/chat"
	endpointHealth = "/api/health"
)

// Client talks to the backend proxy.
type Client struct {
	client *client.Client
	server string
}

// NewClient creates a proxy client for the given server address.
func NewClient(server string) (*Client, error) {
	normalized, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	c, err := client.NewClient(
		client.WithDialTimeout(10 * time.Second),
		client.WithMaxIdleConnDuration(60 * time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		client: c,
		server: normalized,
	}, nil
}

// normalizeServerURL ensures the address has a scheme and no trailing path.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// CreateCompletion posts the turn history to the proxy and returns the
// assistant reply. A non-success status surfaces the backend's reported
// reason when present.
func (c *Client) CreateCompletion(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
	body := dto.CompletionRequest{
		Messages:    make([]dto.CompletionMessage, len(req.Messages)),
		Model:       req.Model,
		Temperature: &req.Temperature,
		MaxTokens:   &req.MaxTokens,
	}
	for i, message := range req.Messages {
		body.Messages[i] = dto.CompletionMessage{
			Role:    string(message.Role),
			Content: message.Content,
		}
	}

	bodyBytes, err := sonic.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	request := protocol.AcquireRequest()
	response := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(request)
		protocol.ReleaseResponse(response)
	}()

	request.SetMethod(consts.MethodPost)
	request.SetRequestURI(c.server + endpointChat)
	request.Header.SetContentTypeBytes([]byte("application/json"))
	request.SetBody(bodyBytes)

	if err := c.client.Do(ctx, request, response); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if response.StatusCode() != consts.StatusOK {
		return nil, decodeError(response.Body())
	}

	var result dto.CompletionResponse
	if err := sonic.Unmarshal(response.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &domain.CompletionResult{
		Content: result.Content,
		Role:    result.Role,
		Usage:   result.Usage,
	}, nil
}

// HealthCheck queries the proxy's health endpoint.
func (c *Client) HealthCheck(ctx context.Context) (*dto.HealthResponse, error) {
	request := protocol.AcquireRequest()
	response := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(request)
		protocol.ReleaseResponse(response)
	}()

	request.SetMethod(consts.MethodGet)
	request.SetRequestURI(c.server + endpointHealth)

	if err := c.client.Do(ctx, request, response); err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	if response.StatusCode() != consts.StatusOK {
		return nil, fmt.Errorf("health check failed with status %d", response.StatusCode())
	}

	var health dto.HealthResponse
	if err := sonic.Unmarshal(response.Body(), &health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &health, nil
}

// decodeError extracts the backend's error message from a failure body.
func decodeError(body []byte) error {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := sonic.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return fmt.Errorf("%s", parsed.Error)
	}
	return fmt.Errorf("failed to get response from AI")
}
