// Package localstore implements the file-backed fallback chat store. It
// mirrors the flat key/value layout of the browser client's local storage:
// one value per user holding the chat collection, one value per chat
// holding its messages.
package localstore

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bytedance/sonic"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
	"github.com/RamaShankarRay/XGpt/internal/infrastructure/watch"
)

const idSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Store persists chats and messages as JSON files under a data directory.
// Reads fail soft: a missing or corrupt value is treated as empty and never
// surfaces an error. This is an availability-over-correctness choice for a
// fallback cache.
type Store struct {
	dir     string
	chatHub *watch.Hub[[]*entity.Chat]
	msgHub  *watch.Hub[[]*entity.Message]
}

// New creates the data directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Store{
		dir:     dir,
		chatHub: watch.NewHub[[]*entity.Chat](),
		msgHub:  watch.NewHub[[]*entity.Message](),
	}, nil
}

func (s *Store) chatsKey(userID string) string {
	return fmt.Sprintf("xgpt_%s_chats", userID)
}

func (s *Store) messagesKey(userID, chatID string) string {
	return fmt.Sprintf("xgpt_%s_chat_%s_messages", userID, chatID)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// readValue deserializes the value stored under key into out. Missing or
// malformed payloads leave out untouched.
func (s *Store) readValue(key string, out any) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return
	}
	// Corrupt payload degrades to empty.
	_ = sonic.Unmarshal(data, out)
}

func (s *Store) writeValue(key string, value any) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// ListChats returns the user's chats, most recently updated first.
func (s *Store) ListChats(ctx context.Context, userID string) ([]*entity.Chat, error) {
	chats := []*entity.Chat{}
	s.readValue(s.chatsKey(userID), &chats)
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt > chats[j].UpdatedAt
	})
	return chats, nil
}

// SaveChat upserts the chat into the user's collection and writes the whole
// collection back. There are no partial-write semantics.
func (s *Store) SaveChat(ctx context.Context, userID string, chat *entity.Chat) error {
	chats, _ := s.ListChats(ctx, userID)

	replaced := false
	for i, existing := range chats {
		if existing.ID == chat.ID {
			chats[i] = chat.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		chats = append(chats, chat.Clone())
	}

	if err := s.writeValue(s.chatsKey(userID), chats); err != nil {
		return err
	}
	s.publishChats(ctx, userID)
	return nil
}

// DeleteChat removes the chat from the collection and removes the distinct
// key holding that chat's messages.
func (s *Store) DeleteChat(ctx context.Context, userID, chatID string) error {
	chats, _ := s.ListChats(ctx, userID)

	filtered := chats[:0]
	for _, chat := range chats {
		if chat.ID != chatID {
			filtered = append(filtered, chat)
		}
	}

	if err := s.writeValue(s.chatsKey(userID), filtered); err != nil {
		return err
	}
	if err := os.Remove(s.path(s.messagesKey(userID, chatID))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove messages for chat %s: %w", chatID, err)
	}
	s.publishChats(ctx, userID)
	s.publishMessages(ctx, userID, chatID)
	return nil
}

// ListMessages returns the chat's messages, oldest first.
func (s *Store) ListMessages(ctx context.Context, userID, chatID string) ([]*entity.Message, error) {
	messages := []*entity.Message{}
	s.readValue(s.messagesKey(userID, chatID), &messages)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
	return messages, nil
}

// SaveMessage appends the message to its chat's collection and writes the
// whole collection back.
func (s *Store) SaveMessage(ctx context.Context, userID string, message *entity.Message) error {
	messages, _ := s.ListMessages(ctx, userID, message.ChatID)
	messages = append(messages, message)

	if err := s.writeValue(s.messagesKey(userID, message.ChatID), messages); err != nil {
		return err
	}
	s.publishMessages(ctx, userID, message.ChatID)
	return nil
}

// GenerateID produces a time-seeded randomized token. Uniqueness is
// probabilistic, acceptable for a single-process fallback store.
func (s *Store) GenerateID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = idSuffixAlphabet[rand.Intn(len(idSuffixAlphabet))]
	}
	return fmt.Sprintf("local_%d_%s", time.Now().UnixMilli(), suffix)
}

// SubscribeChats registers for chat list snapshots. The initial snapshot is
// delivered immediately; further snapshots follow every in-process mutation.
func (s *Store) SubscribeChats(ctx context.Context, userID string) (*domain.ChatSubscription, error) {
	sub := s.chatHub.Subscribe(userID)
	chats, _ := s.ListChats(ctx, userID)
	s.chatHub.Publish(userID, chats)
	return &domain.ChatSubscription{
		Updates: sub.Updates(),
		Close:   sub.Close,
	}, nil
}

// SubscribeMessages registers for message list snapshots of one chat.
func (s *Store) SubscribeMessages(ctx context.Context, userID, chatID string) (*domain.MessageSubscription, error) {
	topic := s.messagesKey(userID, chatID)
	sub := s.msgHub.Subscribe(topic)
	messages, _ := s.ListMessages(ctx, userID, chatID)
	s.msgHub.Publish(topic, messages)
	return &domain.MessageSubscription{
		Updates: sub.Updates(),
		Close:   sub.Close,
	}, nil
}

func (s *Store) publishChats(ctx context.Context, userID string) {
	chats, _ := s.ListChats(ctx, userID)
	s.chatHub.Publish(userID, chats)
}

func (s *Store) publishMessages(ctx context.Context, userID, chatID string) {
	messages, _ := s.ListMessages(ctx, userID, chatID)
	s.msgHub.Publish(s.messagesKey(userID, chatID), messages)
}
