package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/handler/dto"
)

// CompletionHandler serves the validated pass-through to the upstream
// completion provider. Validation failures never reach the upstream.
type CompletionHandler struct {
	completions domain.CompletionProvider
	logger      *slog.Logger
}

// NewCompletionHandler creates the handler.
func NewCompletionHandler(completions domain.CompletionProvider, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{
		completions: completions,
		logger:      logger,
	}
}

// CreateCompletion handles POST /api/chat.
func (h *CompletionHandler) CreateCompletion(ctx context.Context, c *app.RequestContext) {
	var req dto.CompletionRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Warn("failed to bind completion request", "error", err)
		ValidationErrorResponse(c, []dto.FieldError{
			{Field: "body", Message: "malformed JSON"},
		})
		return
	}

	if details := req.Validate(); len(details) > 0 {
		h.logger.Warn("completion request failed validation", "violations", len(details))
		ValidationErrorResponse(c, details)
		return
	}

	result, err := h.completions.CreateCompletion(ctx, req.ToDomain())
	if err != nil {
		h.logger.Error("completion request failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	c.JSON(consts.StatusOK, dto.CompletionResponse{
		Content: result.Content,
		Role:    result.Role,
		Usage:   result.Usage,
	})
}
