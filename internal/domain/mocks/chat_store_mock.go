package mocks

import (
	"context"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
)

// MockChatStore is a mock implementation of domain.ChatStore
type MockChatStore struct {
	ListChatsFunc         func(ctx context.Context, userID string) ([]*entity.Chat, error)
	SaveChatFunc          func(ctx context.Context, userID string, chat *entity.Chat) error
	DeleteChatFunc        func(ctx context.Context, userID, chatID string) error
	ListMessagesFunc      func(ctx context.Context, userID, chatID string) ([]*entity.Message, error)
	SaveMessageFunc       func(ctx context.Context, userID string, message *entity.Message) error
	GenerateIDFunc        func() string
	SubscribeChatsFunc    func(ctx context.Context, userID string) (*domain.ChatSubscription, error)
	SubscribeMessagesFunc func(ctx context.Context, userID, chatID string) (*domain.MessageSubscription, error)
}

// ListChats mocks the ListChats method
func (m *MockChatStore) ListChats(ctx context.Context, userID string) ([]*entity.Chat, error) {
	if m.ListChatsFunc != nil {
		return m.ListChatsFunc(ctx, userID)
	}
	return []*entity.Chat{}, nil
}

// SaveChat mocks the SaveChat method
func (m *MockChatStore) SaveChat(ctx context.Context, userID string, chat *entity.Chat) error {
	if m.SaveChatFunc != nil {
		return m.SaveChatFunc(ctx, userID, chat)
	}
	return nil
}

// DeleteChat mocks the DeleteChat method
func (m *MockChatStore) DeleteChat(ctx context.Context, userID, chatID string) error {
	if m.DeleteChatFunc != nil {
		return m.DeleteChatFunc(ctx, userID, chatID)
	}
	return nil
}

// ListMessages mocks the ListMessages method
func (m *MockChatStore) ListMessages(ctx context.Context, userID, chatID string) ([]*entity.Message, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, userID, chatID)
	}
	return []*entity.Message{}, nil
}

// SaveMessage mocks the SaveMessage method
func (m *MockChatStore) SaveMessage(ctx context.Context, userID string, message *entity.Message) error {
	if m.SaveMessageFunc != nil {
		return m.SaveMessageFunc(ctx, userID, message)
	}
	return nil
}

// GenerateID mocks the GenerateID method
func (m *MockChatStore) GenerateID() string {
	if m.GenerateIDFunc != nil {
		return m.GenerateIDFunc()
	}
	return "mock-id"
}

// SubscribeChats mocks the SubscribeChats method. The default subscription
// delivers one empty snapshot and never updates.
func (m *MockChatStore) SubscribeChats(ctx context.Context, userID string) (*domain.ChatSubscription, error) {
	if m.SubscribeChatsFunc != nil {
		return m.SubscribeChatsFunc(ctx, userID)
	}
	ch := make(chan []*entity.Chat, 1)
	ch <- []*entity.Chat{}
	return &domain.ChatSubscription{Updates: ch, Close: func() {}}, nil
}

// SubscribeMessages mocks the SubscribeMessages method. The default
// subscription delivers one empty snapshot and never updates.
func (m *MockChatStore) SubscribeMessages(ctx context.Context, userID, chatID string) (*domain.MessageSubscription, error) {
	if m.SubscribeMessagesFunc != nil {
		return m.SubscribeMessagesFunc(ctx, userID, chatID)
	}
	ch := make(chan []*entity.Message, 1)
	ch <- []*entity.Message{}
	return &domain.MessageSubscription{Updates: ch, Close: func() {}}, nil
}
