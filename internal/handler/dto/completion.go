package dto

import (
	"fmt"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
)

// Completion request bounds, matching the upstream contract exposed to the
// browser client.
const (
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000

	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinMaxTokens   = 1
	MaxMaxTokens   = 4000
)

var allowedModels = map[string]bool{
	"gpt-4o":        true,
	"gpt-3.5-turbo": true,
}

// CompletionMessage is one role-tagged turn of the request history.
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the body of POST /api/chat. Optional fields are
// pointers so that absent values can be defaulted without masking explicit
// zero values.
type CompletionRequest struct {
	Messages    []CompletionMessage `json:"messages"`
	Model       string              `json:"model,omitempty"`
	Temperature *float32            `json:"temperature,omitempty"`
	MaxTokens   *int                `json:"max_tokens,omitempty"`
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the request against the completion schema and returns
// every field-level violation. A valid request with absent optional fields
// is not an error; defaults are applied by ToDomain.
func (r *CompletionRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Messages == nil {
		errs = append(errs, FieldError{Field: "messages", Message: "required"})
	}
	for i, message := range r.Messages {
		if !entity.Role(message.Role).Valid() {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("messages.%d.role", i),
				Message: "must be one of 'user', 'assistant', 'system'",
			})
		}
	}

	if r.Model != "" && !allowedModels[r.Model] {
		errs = append(errs, FieldError{
			Field:   "model",
			Message: "must be one of 'gpt-4o', 'gpt-3.5-turbo'",
		})
	}

	if r.Temperature != nil && (*r.Temperature < MinTemperature || *r.Temperature > MaxTemperature) {
		errs = append(errs, FieldError{
			Field:   "temperature",
			Message: fmt.Sprintf("must be between %g and %g", MinTemperature, MaxTemperature),
		})
	}

	if r.MaxTokens != nil && (*r.MaxTokens < MinMaxTokens || *r.MaxTokens > MaxMaxTokens) {
		errs = append(errs, FieldError{
			Field:   "max_tokens",
			Message: fmt.Sprintf("must be between %d and %d", MinMaxTokens, MaxMaxTokens),
		})
	}

	return errs
}

// ToDomain converts a validated request into the internal representation,
// applying defaults for absent optional fields.
func (r *CompletionRequest) ToDomain() *domain.CompletionRequest {
	req := &domain.CompletionRequest{
		Model:       r.Model,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
	if req.Model == "" {
		req.Model = DefaultModel
	}
	if r.Temperature != nil {
		req.Temperature = *r.Temperature
	}
	if r.MaxTokens != nil {
		req.MaxTokens = *r.MaxTokens
	}

	req.Messages = make([]domain.CompletionMessage, len(r.Messages))
	for i, message := range r.Messages {
		req.Messages[i] = domain.CompletionMessage{
			Role:    entity.Role(message.Role),
			Content: message.Content,
		}
	}
	return req
}

// CompletionResponse is the success body of POST /api/chat.
type CompletionResponse struct {
	Content string             `json:"content"`
	Role    string             `json:"role"`
	Usage   *entity.TokenUsage `json:"usage,omitempty"`
}

// HealthResponse is the body of GET /api/health. OpenAIConfigured reports
// credential presence only, not validity.
type HealthResponse struct {
	Status           string `json:"status"`
	Timestamp        int64  `json:"timestamp"`
	OpenAIConfigured bool   `json:"openaiConfigured"`
}
