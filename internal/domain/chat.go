package domain

import (
	"context"

	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
)

// ChatStore is the capability set shared by the remote (database) and the
// local (file) persistence backends. The coordinator holds a single active
// implementation and swaps it when the remote backend fails.
//
// Ordering contract: ListChats returns chats in descending updatedAt order,
// ListMessages returns messages in ascending timestamp order. Subscriptions
// deliver full refreshed snapshots in the same order after every change.
type ChatStore interface {
	// ListChats returns all chats owned by userID, newest activity first.
	ListChats(ctx context.Context, userID string) ([]*entity.Chat, error)

	// SaveChat upserts a chat by ID into the user's collection.
	SaveChat(ctx context.Context, userID string, chat *entity.Chat) error

	// DeleteChat removes the chat and its messages.
	DeleteChat(ctx context.Context, userID, chatID string) error

	// ListMessages returns the messages of one chat, oldest first.
	ListMessages(ctx context.Context, userID, chatID string) ([]*entity.Message, error)

	// SaveMessage appends a message to its chat's collection.
	SaveMessage(ctx context.Context, userID string, message *entity.Message) error

	// GenerateID produces a new opaque identifier for a chat or message.
	GenerateID() string

	// SubscribeChats registers for push snapshots of the user's chat list.
	// The returned subscription delivers an initial snapshot immediately.
	SubscribeChats(ctx context.Context, userID string) (*ChatSubscription, error)

	// SubscribeMessages registers for push snapshots of one chat's messages.
	SubscribeMessages(ctx context.Context, userID, chatID string) (*MessageSubscription, error)
}

// ChatSubscription is a live feed of chat list snapshots.
// Close must be called on every exit path to avoid leaked listeners.
type ChatSubscription struct {
	Updates <-chan []*entity.Chat
	Close   func()
}

// MessageSubscription is a live feed of message list snapshots for one chat.
type MessageSubscription struct {
	Updates <-chan []*entity.Message
	Close   func()
}

// CompletionRequest carries one ordered turn history plus generation
// parameters to the completion backend.
type CompletionRequest struct {
	Messages    []CompletionMessage
	Model       string
	Temperature float32
	MaxTokens   int
}

// CompletionMessage is a single role-tagged turn.
type CompletionMessage struct {
	Role    entity.Role
	Content string
}

// CompletionResult is the assistant's reply to a completion request.
type CompletionResult struct {
	Content string
	Role    string
	Usage   *entity.TokenUsage
}

// CompletionClient produces one assistant reply for an ordered turn history.
// The proxy handler backs it with the upstream OpenAI API; the coordinator
// backs it with an HTTP client talking to the proxy.
type CompletionClient interface {
	CreateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)
}

// CompletionProvider is a CompletionClient that can also report whether a
// credential is configured, without validating it. Used by the health check.
type CompletionProvider interface {
	CompletionClient
	Configured() bool
}
