package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32Ptr(v float32) *float32 { return &v }
func intPtr(v int) *int             { return &v }

func TestValidateCollectsAllViolations(t *testing.T) {
	req := &CompletionRequest{
		Messages: []CompletionMessage{
			{Role: "user", Content: "hi"},
			{Role: "robot", Content: "beep"},
		},
		Model:       "gpt-99",
		Temperature: float32Ptr(3.5),
		MaxTokens:   intPtr(0),
	}

	errs := req.Validate()
	require.Len(t, errs, 4)

	fields := make([]string, len(errs))
	for i, fieldErr := range errs {
		fields[i] = fieldErr.Field
	}
	assert.Contains(t, fields, "messages.1.role")
	assert.Contains(t, fields, "model")
	assert.Contains(t, fields, "temperature")
	assert.Contains(t, fields, "max_tokens")
}

func TestValidateBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CompletionRequest)
		wantErr bool
	}{
		{"empty but present messages", func(r *CompletionRequest) { r.Messages = []CompletionMessage{} }, false},
		{"nil messages", func(r *CompletionRequest) { r.Messages = nil }, true},
		{"temperature at minimum", func(r *CompletionRequest) { r.Temperature = float32Ptr(0) }, false},
		{"temperature at maximum", func(r *CompletionRequest) { r.Temperature = float32Ptr(2) }, false},
		{"temperature above maximum", func(r *CompletionRequest) { r.Temperature = float32Ptr(2.1) }, true},
		{"max_tokens at minimum", func(r *CompletionRequest) { r.MaxTokens = intPtr(1) }, false},
		{"max_tokens at maximum", func(r *CompletionRequest) { r.MaxTokens = intPtr(4000) }, false},
		{"max_tokens above maximum", func(r *CompletionRequest) { r.MaxTokens = intPtr(4001) }, true},
		{"alternate model", func(r *CompletionRequest) { r.Model = "gpt-3.5-turbo" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CompletionRequest{
				Messages: []CompletionMessage{{Role: "user", Content: "hi"}},
			}
			tt.mutate(req)

			errs := req.Validate()
			if tt.wantErr {
				assert.NotEmpty(t, errs)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestToDomainDefaults(t *testing.T) {
	req := &CompletionRequest{
		Messages: []CompletionMessage{{Role: "user", Content: "hi"}},
	}

	out := req.ToDomain()
	assert.Equal(t, DefaultModel, out.Model)
	assert.Equal(t, float32(DefaultTemperature), out.Temperature)
	assert.Equal(t, DefaultMaxTokens, out.MaxTokens)
}

func TestToDomainExplicitZeroTemperature(t *testing.T) {
	req := &CompletionRequest{
		Messages:    []CompletionMessage{{Role: "user", Content: "hi"}},
		Temperature: float32Ptr(0),
		MaxTokens:   intPtr(50),
	}

	out := req.ToDomain()
	// An explicit zero must not be replaced by the default
	assert.Equal(t, float32(0), out.Temperature)
	assert.Equal(t, 50, out.MaxTokens)
}
