package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/RamaShankarRay/XGpt/internal/handler/dto"
)

// credentialReporter reports whether a completion credential is configured,
// without validating it against the upstream.
type credentialReporter interface {
	Configured() bool
}

// HealthHandler serves liveness reporting.
type HealthHandler struct {
	completions credentialReporter
}

// NewHealthHandler creates the handler.
func NewHealthHandler(completions credentialReporter) *HealthHandler {
	return &HealthHandler{completions: completions}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, dto.HealthResponse{
		Status:           "ok",
		Timestamp:        time.Now().UnixMilli(),
		OpenAIConfigured: h.completions.Configured(),
	})
}

// Ping handles GET /ping.
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":  "ok",
		"message": "pong",
	})
}
