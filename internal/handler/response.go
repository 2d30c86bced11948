package handler

import (
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/handler/dto"
)

// ErrorBody is the error response shape of the proxy API.
type ErrorBody struct {
	Error   string           `json:"error"`
	Message string           `json:"message,omitempty"`
	Details []dto.FieldError `json:"details,omitempty"`
}

// ValidationErrorResponse rejects a request with field-level detail.
func ValidationErrorResponse(c *app.RequestContext, details []dto.FieldError) {
	c.JSON(consts.StatusBadRequest, ErrorBody{
		Error:   "Invalid request format",
		Details: details,
	})
}

// ErrorResponse maps a domain error onto the proxy's status codes. Upstream
// provider failures map one to one; anything unexpected becomes a 500 with
// the cause attached.
func ErrorResponse(c *app.RequestContext, err error) {
	switch {
	case domain.IsNotConfigured(err):
		c.JSON(consts.StatusInternalServerError, ErrorBody{
			Error: "OpenAI API key not configured. Please set XGPT_OPENAI_API_KEY in your environment.",
		})
	case domain.IsUpstreamAuth(err):
		c.JSON(consts.StatusUnauthorized, ErrorBody{
			Error: "Invalid OpenAI API key. Please check your API key configuration.",
		})
	case domain.IsUpstreamRateLimited(err):
		c.JSON(consts.StatusTooManyRequests, ErrorBody{
			Error: "Rate limit exceeded. Please try again later.",
		})
	case domain.IsInvalidInput(err):
		c.JSON(consts.StatusBadRequest, ErrorBody{
			Error: userMessage(err),
		})
	case domain.IsNotFound(err):
		c.JSON(consts.StatusNotFound, ErrorBody{
			Error: userMessage(err),
		})
	default:
		c.JSON(consts.StatusInternalServerError, ErrorBody{
			Error:   "Failed to get response from OpenAI",
			Message: err.Error(),
		})
	}
}

// userMessage extracts the user-facing message of a DomainError without
// exposing internal detail of other error types.
func userMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.UserMessage()
	}
	return "an error occurred"
}
