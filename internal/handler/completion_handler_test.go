package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/domain/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newChatEngine(completions *mocks.MockCompletionClient) *route.Engine {
	engine := route.NewEngine(config.NewOptions([]config.Option{}))
	h := NewCompletionHandler(completions, testLogger())
	engine.POST("/api/chat", h.CreateCompletion)
	return engine
}

func postChat(engine *route.Engine, body string) *ut.ResponseRecorder {
	return ut.PerformRequest(engine, "POST", "/api/chat",
		&ut.Body{Body: strings.NewReader(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
}

func decodeError(t *testing.T, body []byte) ErrorBody {
	t.Helper()
	var errBody ErrorBody
	require.NoError(t, sonic.Unmarshal(body, &errBody))
	return errBody
}

func TestCreateCompletionSuccess(t *testing.T) {
	var captured *domain.CompletionRequest
	completions := &mocks.MockCompletionClient{
		CreateCompletionFunc: func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
			captured = req
			return &domain.CompletionResult{
				Content: "Hello! How can I help?",
				Role:    "assistant",
			}, nil
		},
	}
	engine := newChatEngine(completions)

	w := postChat(engine, `{"messages":[{"role":"user","content":"hello"}]}`)
	resp := w.Result()

	assert.Equal(t, 200, resp.StatusCode())

	var body struct {
		Content string `json:"content"`
		Role    string `json:"role"`
	}
	require.NoError(t, sonic.Unmarshal(resp.Body(), &body))
	assert.Equal(t, "Hello! How can I help?", body.Content)
	assert.Equal(t, "assistant", body.Role)

	// Absent optional fields are defaulted before reaching the provider
	require.NotNil(t, captured)
	assert.Equal(t, "gpt-4o", captured.Model)
	assert.Equal(t, float32(0.7), captured.Temperature)
	assert.Equal(t, 1000, captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "hello", captured.Messages[0].Content)
}

func TestCreateCompletionMalformedJSON(t *testing.T) {
	called := false
	completions := &mocks.MockCompletionClient{
		CreateCompletionFunc: func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
			called = true
			return nil, nil
		},
	}
	engine := newChatEngine(completions)

	w := postChat(engine, `{not json`)
	resp := w.Result()

	assert.Equal(t, 400, resp.StatusCode())
	errBody := decodeError(t, resp.Body())
	assert.Equal(t, "Invalid request format", errBody.Error)
	require.Len(t, errBody.Details, 1)
	assert.Equal(t, "body", errBody.Details[0].Field)
	assert.False(t, called, "upstream must not be called for malformed input")
}

func TestCreateCompletionValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{
			name:      "missing messages",
			body:      `{}`,
			wantField: "messages",
		},
		{
			name:      "invalid role",
			body:      `{"messages":[{"role":"robot","content":"hi"}]}`,
			wantField: "messages.0.role",
		},
		{
			name:      "unknown model",
			body:      `{"messages":[{"role":"user","content":"hi"}],"model":"gpt-99"}`,
			wantField: "model",
		},
		{
			name:      "temperature out of range",
			body:      `{"messages":[{"role":"user","content":"hi"}],"temperature":5}`,
			wantField: "temperature",
		},
		{
			name:      "max_tokens out of range",
			body:      `{"messages":[{"role":"user","content":"hi"}],"max_tokens":100000}`,
			wantField: "max_tokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			completions := &mocks.MockCompletionClient{
				CreateCompletionFunc: func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
					called = true
					return nil, nil
				},
			}
			engine := newChatEngine(completions)

			w := postChat(engine, tt.body)
			resp := w.Result()

			assert.Equal(t, 400, resp.StatusCode())
			errBody := decodeError(t, resp.Body())
			assert.Equal(t, "Invalid request format", errBody.Error)

			found := false
			for _, detail := range errBody.Details {
				if detail.Field == tt.wantField {
					found = true
				}
			}
			assert.True(t, found, "details %v missing field %s", errBody.Details, tt.wantField)
			assert.False(t, called, "upstream must not be called for invalid input")
		})
	}
}

func TestCreateCompletionErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "not configured",
			err:        domain.ErrNotConfigured,
			wantStatus: 500,
			wantError:  "OpenAI API key not configured. Please set XGPT_OPENAI_API_KEY in your environment.",
		},
		{
			name:       "upstream auth",
			err:        fmt.Errorf("%w: bad key", domain.ErrUpstreamAuth),
			wantStatus: 401,
			wantError:  "Invalid OpenAI API key. Please check your API key configuration.",
		},
		{
			name:       "upstream rate limited",
			err:        fmt.Errorf("%w: slow down", domain.ErrUpstreamRateLimited),
			wantStatus: 429,
			wantError:  "Rate limit exceeded. Please try again later.",
		},
		{
			name:       "unexpected failure",
			err:        errors.New("connection reset by peer"),
			wantStatus: 500,
			wantError:  "Failed to get response from OpenAI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completions := &mocks.MockCompletionClient{
				CreateCompletionFunc: func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
					return nil, tt.err
				},
			}
			engine := newChatEngine(completions)

			w := postChat(engine, `{"messages":[{"role":"user","content":"hi"}]}`)
			resp := w.Result()

			assert.Equal(t, tt.wantStatus, resp.StatusCode())
			errBody := decodeError(t, resp.Body())
			assert.Equal(t, tt.wantError, errBody.Error)

			if tt.name == "unexpected failure" {
				assert.Equal(t, "connection reset by peer", errBody.Message)
			}
		})
	}
}
