package mocks

import (
	"context"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
)

// MockCompletionClient is a mock implementation of domain.CompletionClient
// and domain.CompletionProvider
type MockCompletionClient struct {
	CreateCompletionFunc func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error)
	ConfiguredFunc       func() bool
}

// CreateCompletion mocks the CreateCompletion method
func (m *MockCompletionClient) CreateCompletion(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
	if m.CreateCompletionFunc != nil {
		return m.CreateCompletionFunc(ctx, req)
	}
	return &domain.CompletionResult{
		Content: "mock reply",
		Role:    string(entity.RoleAssistant),
	}, nil
}

// Configured mocks the Configured method
func (m *MockCompletionClient) Configured() bool {
	if m.ConfiguredFunc != nil {
		return m.ConfiguredFunc()
	}
	return true
}
