package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
)

const (
	defaultModel    = "gpt-4o"
	defaultTitle    = "New Chat"
	titleWordLimit  = 6
	sendTemperature = 0.7
	sendMaxTokens   = 1000
)

// Coordinator mediates chat and message lifecycle across two interchangeable
// persistence backends. It keeps an in-memory view of the authenticated
// user's chats and the selected chat's messages, preferring the remote store
// and degrading to the local store for the remainder of the session once a
// remote operation fails (sticky fallback).
//
// Cached state is overwritten by the latest store snapshot, last-write-wins;
// there is no merge logic and no offline queue.
type Coordinator struct {
	remote     domain.ChatStore
	local      domain.ChatStore
	completion domain.CompletionClient
	model      string
	logger     *slog.Logger

	mu          sync.Mutex
	userID      string
	chats       []*entity.Chat
	currentChat *entity.Chat
	messages    []*entity.Message
	usingRemote bool
	sending     bool
	chatSub     *domain.ChatSubscription
	msgSub      *domain.MessageSubscription
}

// NewCoordinator creates a coordinator over the two stores. remote may be
// nil, in which case the session runs local-only from the start.
func NewCoordinator(remote, local domain.ChatStore, completion domain.CompletionClient, model string, logger *slog.Logger) *Coordinator {
	if model == "" {
		model = defaultModel
	}
	return &Coordinator{
		remote:     remote,
		local:      local,
		completion: completion,
		model:      model,
		logger:     logger,
	}
}

// Initialize binds the coordinator to the authenticated user and starts the
// chat list feed. A remote subscription failure flips the session to local
// mode and performs a one-shot local fetch; the remote store is not retried
// until the coordinator is reinitialized.
func (c *Coordinator) Initialize(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrNoUser
	}

	c.mu.Lock()
	c.teardownLocked()
	c.userID = userID
	c.currentChat = nil
	c.messages = nil
	c.usingRemote = c.remote != nil
	usingRemote := c.usingRemote
	c.mu.Unlock()

	if usingRemote {
		sub, err := c.remote.SubscribeChats(ctx, userID)
		if err == nil {
			c.mu.Lock()
			c.chatSub = sub
			c.mu.Unlock()
			go c.consumeChatUpdates(sub)
			return nil
		}
		c.logger.Warn("remote store unavailable, switching to local mode", "error", err)
		c.mu.Lock()
		c.usingRemote = false
		c.mu.Unlock()
	}

	return c.refreshLocalChats(ctx)
}

// SelectChat makes the chat with the given id current and starts its message
// feed. The chat is resolved from the cached list without a store round-trip.
func (c *Coordinator) SelectChat(ctx context.Context, chatID string) error {
	c.mu.Lock()
	if c.userID == "" {
		c.mu.Unlock()
		return domain.ErrNoUser
	}
	var selected *entity.Chat
	for _, chat := range c.chats {
		if chat.ID == chatID {
			selected = chat
			break
		}
	}
	if selected == nil {
		c.mu.Unlock()
		return domain.NewNotFoundError("chat", chatID)
	}
	c.currentChat = selected.Clone()
	c.messages = nil
	c.mu.Unlock()

	return c.watchMessages(ctx, chatID)
}

// CreateChat constructs an empty chat titled "New Chat", persists it through
// the active store and makes it current.
func (c *Coordinator) CreateChat(ctx context.Context) (*entity.Chat, error) {
	c.mu.Lock()
	if c.userID == "" {
		c.mu.Unlock()
		return nil, domain.ErrNoUser
	}
	userID := c.userID
	c.mu.Unlock()

	now := time.Now().UnixMilli()
	chat := &entity.Chat{
		ID:           c.activeStore().GenerateID(),
		Title:        defaultTitle,
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
		MessageCount: 0,
	}

	if err := c.saveChat(ctx, userID, chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	c.mu.Lock()
	c.currentChat = chat.Clone()
	c.messages = nil
	c.mu.Unlock()

	if err := c.watchMessages(ctx, chat.ID); err != nil {
		c.logger.Warn("failed to watch messages for new chat", "chat_id", chat.ID, "error", err)
	}
	if !c.UsingRemote() {
		if err := c.refreshLocalChats(ctx); err != nil {
			c.logger.Warn("failed to refresh chat list", "error", err)
		}
	}
	return chat.Clone(), nil
}

// DeleteChat removes the chat from the active store and clears the selection
// when the deleted chat was current.
func (c *Coordinator) DeleteChat(ctx context.Context, chatID string) error {
	c.mu.Lock()
	if c.userID == "" {
		c.mu.Unlock()
		return domain.ErrNoUser
	}
	userID := c.userID
	usingRemote := c.usingRemote
	c.mu.Unlock()

	if usingRemote {
		if err := c.remote.DeleteChat(ctx, userID, chatID); err != nil {
			c.fallback("delete chat", err)
			if err := c.local.DeleteChat(ctx, userID, chatID); err != nil {
				return fmt.Errorf("failed to delete chat: %w", err)
			}
		}
	} else {
		if err := c.local.DeleteChat(ctx, userID, chatID); err != nil {
			return fmt.Errorf("failed to delete chat: %w", err)
		}
	}

	c.mu.Lock()
	if c.currentChat != nil && c.currentChat.ID == chatID {
		c.currentChat = nil
		c.messages = nil
		if c.msgSub != nil {
			c.msgSub.Close()
			c.msgSub = nil
		}
	}
	c.mu.Unlock()

	if !c.UsingRemote() {
		return c.refreshLocalChats(ctx)
	}
	return nil
}

// SendMessage runs the send pipeline for the current chat: persist the user
// turn, derive a title on the first message, request a completion over the
// full turn history, persist the assistant turn and update chat metadata.
//
// At most one send is in flight per coordinator; a second call is rejected
// outright with ErrBusy. Failures do not roll back already-persisted state:
// an orphaned user message is left for the user to see and resend from.
func (c *Coordinator) SendMessage(ctx context.Context, content string) error {
	c.mu.Lock()
	if c.userID == "" {
		c.mu.Unlock()
		return domain.ErrNoUser
	}
	if c.currentChat == nil {
		c.mu.Unlock()
		return domain.ErrNoChat
	}
	if c.sending {
		c.mu.Unlock()
		return domain.ErrBusy
	}
	c.sending = true
	userID := c.userID
	chat := c.currentChat.Clone()
	prior := make([]*entity.Message, len(c.messages))
	copy(prior, c.messages)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	userMessage := &entity.Message{
		ID:        c.activeStore().GenerateID(),
		Content:   content,
		Role:      entity.RoleUser,
		Timestamp: time.Now().UnixMilli(),
		ChatID:    chat.ID,
	}
	if err := c.saveMessage(ctx, userID, userMessage); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	// First message of the chat names it.
	if len(prior) == 0 {
		chat.Title = deriveTitle(content)
		chat.UpdatedAt = time.Now().UnixMilli()
		chat.MessageCount = 1
		if err := c.saveChat(ctx, userID, chat); err != nil {
			c.logger.Warn("failed to update chat title", "chat_id", chat.ID, "error", err)
		}
		c.setCurrentChatIfSelected(chat)
	}

	history := make([]domain.CompletionMessage, 0, len(prior)+1)
	for _, message := range append(prior, userMessage) {
		history = append(history, domain.CompletionMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}

	result, err := c.completion.CreateCompletion(ctx, &domain.CompletionRequest{
		Messages:    history,
		Model:       c.model,
		Temperature: sendTemperature,
		MaxTokens:   sendMaxTokens,
	})
	if err != nil {
		c.refreshLocalState(ctx, userID, chat.ID)
		return fmt.Errorf("failed to get assistant reply: %w", err)
	}

	assistantMessage := &entity.Message{
		ID:        c.activeStore().GenerateID(),
		Content:   result.Content,
		Role:      entity.RoleAssistant,
		Timestamp: time.Now().UnixMilli(),
		ChatID:    chat.ID,
	}
	if err := c.saveMessage(ctx, userID, assistantMessage); err != nil {
		return fmt.Errorf("failed to save assistant message: %w", err)
	}

	// Recomputed from the cached list length, never incremented blindly.
	chat.UpdatedAt = time.Now().UnixMilli()
	chat.MessageCount = len(prior) + 2
	if err := c.saveChat(ctx, userID, chat); err != nil {
		c.logger.Warn("failed to update chat metadata", "chat_id", chat.ID, "error", err)
	}
	c.setCurrentChatIfSelected(chat)

	c.refreshLocalState(ctx, userID, chat.ID)
	return nil
}

// Chats returns the cached chat list.
func (c *Coordinator) Chats() []*entity.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	chats := make([]*entity.Chat, len(c.chats))
	copy(chats, c.chats)
	return chats
}

// Messages returns the cached message list of the current chat.
func (c *Coordinator) Messages() []*entity.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	messages := make([]*entity.Message, len(c.messages))
	copy(messages, c.messages)
	return messages
}

// CurrentChat returns the selected chat, or nil.
func (c *Coordinator) CurrentChat() *entity.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentChat.Clone()
}

// UsingRemote reports whether the session still talks to the remote store.
func (c *Coordinator) UsingRemote() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usingRemote
}

// Close tears down active subscriptions.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// deriveTitle names a chat after its first message: the first six
// whitespace-delimited words, with an ellipsis only when more were present.
// The raw content is used as-is, markdown and code fences included.
func deriveTitle(content string) string {
	words := strings.Fields(content)
	if len(words) <= titleWordLimit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWordLimit], " ") + "..."
}

// activeStore returns the store the session currently writes to.
func (c *Coordinator) activeStore() domain.ChatStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.usingRemote {
		return c.remote
	}
	return c.local
}

// fallback records a remote failure and flips the session to local mode.
func (c *Coordinator) fallback(op string, err error) {
	c.mu.Lock()
	already := !c.usingRemote
	c.usingRemote = false
	c.mu.Unlock()
	if !already {
		c.logger.Warn("remote store failed, using local storage for the rest of the session",
			"operation", op, "error", err)
	}
}

// saveChat writes through the active store, degrading remote to local.
func (c *Coordinator) saveChat(ctx context.Context, userID string, chat *entity.Chat) error {
	if c.UsingRemote() {
		err := c.remote.SaveChat(ctx, userID, chat)
		if err == nil {
			return nil
		}
		c.fallback("save chat", err)
	}
	return c.local.SaveChat(ctx, userID, chat)
}

// saveMessage writes through the active store, degrading remote to local.
func (c *Coordinator) saveMessage(ctx context.Context, userID string, message *entity.Message) error {
	if c.UsingRemote() {
		err := c.remote.SaveMessage(ctx, userID, message)
		if err == nil {
			return nil
		}
		c.fallback("save message", err)
	}
	return c.local.SaveMessage(ctx, userID, message)
}

// watchMessages starts the message feed for the given chat, replacing any
// previous feed. In local mode it performs a one-shot fetch instead.
func (c *Coordinator) watchMessages(ctx context.Context, chatID string) error {
	c.mu.Lock()
	if c.msgSub != nil {
		c.msgSub.Close()
		c.msgSub = nil
	}
	userID := c.userID
	usingRemote := c.usingRemote
	c.mu.Unlock()

	if usingRemote {
		sub, err := c.remote.SubscribeMessages(ctx, userID, chatID)
		if err == nil {
			c.mu.Lock()
			c.msgSub = sub
			c.mu.Unlock()
			go c.consumeMessageUpdates(sub, chatID)
			return nil
		}
		c.fallback("subscribe messages", err)
	}

	messages, err := c.local.ListMessages(ctx, userID, chatID)
	if err != nil {
		return err
	}
	c.setMessages(chatID, messages)
	return nil
}

func (c *Coordinator) consumeChatUpdates(sub *domain.ChatSubscription) {
	for chats := range sub.Updates {
		c.mu.Lock()
		c.chats = chats
		c.mu.Unlock()
	}
}

func (c *Coordinator) consumeMessageUpdates(sub *domain.MessageSubscription, chatID string) {
	for messages := range sub.Updates {
		c.setMessages(chatID, messages)
	}
}

// setMessages installs a snapshot if the chat is still selected. A send in
// flight for a deselected chat keeps writing to the chat id it captured, but
// its snapshots no longer reach the cache.
func (c *Coordinator) setMessages(chatID string, messages []*entity.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentChat == nil || c.currentChat.ID != chatID {
		return
	}
	c.messages = messages
}

func (c *Coordinator) setCurrentChatIfSelected(chat *entity.Chat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentChat != nil && c.currentChat.ID == chat.ID {
		c.currentChat = chat.Clone()
	}
}

// refreshLocalChats reloads the chat list cache from the local store.
func (c *Coordinator) refreshLocalChats(ctx context.Context) error {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()

	chats, err := c.local.ListChats(ctx, userID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.chats = chats
	c.mu.Unlock()
	return nil
}

// refreshLocalState reloads caches after writes in local mode, where no
// subscription pushes snapshots.
func (c *Coordinator) refreshLocalState(ctx context.Context, userID, chatID string) {
	if c.UsingRemote() {
		return
	}
	if err := c.refreshLocalChats(ctx); err != nil {
		c.logger.Warn("failed to refresh chat list", "error", err)
	}
	messages, err := c.local.ListMessages(ctx, userID, chatID)
	if err != nil {
		c.logger.Warn("failed to refresh messages", "chat_id", chatID, "error", err)
		return
	}
	c.setMessages(chatID, messages)
}

// teardownLocked closes subscriptions. Caller holds c.mu.
func (c *Coordinator) teardownLocked() {
	if c.chatSub != nil {
		c.chatSub.Close()
		c.chatSub = nil
	}
	if c.msgSub != nil {
		c.msgSub.Close()
		c.msgSub = nil
	}
}
