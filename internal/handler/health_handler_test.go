package handler

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RamaShankarRay/XGpt/internal/domain/mocks"
	"github.com/RamaShankarRay/XGpt/internal/handler/dto"
)

func newHealthEngine(configured bool) *route.Engine {
	engine := route.NewEngine(config.NewOptions([]config.Option{}))
	h := NewHealthHandler(&mocks.MockCompletionClient{
		ConfiguredFunc: func() bool { return configured },
	})
	engine.GET("/api/health", h.Health)
	engine.GET("/ping", h.Ping)
	return engine
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		configured bool
	}{
		{"credential configured", true},
		{"credential missing", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newHealthEngine(tt.configured)

			before := time.Now().UnixMilli()
			w := ut.PerformRequest(engine, "GET", "/api/health", nil)
			resp := w.Result()

			assert.Equal(t, 200, resp.StatusCode())

			var body dto.HealthResponse
			require.NoError(t, sonic.Unmarshal(resp.Body(), &body))
			assert.Equal(t, "ok", body.Status)
			assert.Equal(t, tt.configured, body.OpenAIConfigured)
			assert.GreaterOrEqual(t, body.Timestamp, before)
		})
	}
}

func TestPing(t *testing.T) {
	engine := newHealthEngine(true)

	w := ut.PerformRequest(engine, "GET", "/ping", nil)
	resp := w.Result()

	assert.Equal(t, 200, resp.StatusCode())

	var body map[string]string
	require.NoError(t, sonic.Unmarshal(resp.Body(), &body))
	assert.Equal(t, "pong", body["message"])
}
