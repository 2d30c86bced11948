// Package database implements the remote chat store on top of a SQL
// database via gorm. Documents live in per-user scoped tables and every
// mutation pushes a refreshed snapshot to live subscribers.
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
	"github.com/RamaShankarRay/XGpt/internal/infrastructure/watch"
)

// Store is the database implementation of domain.ChatStore.
type Store struct {
	db      *gorm.DB
	chatHub *watch.Hub[[]*entity.Chat]
	msgHub  *watch.Hub[[]*entity.Message]
}

// NewStore migrates the schema and returns a store over db.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&chatRecord{}, &messageRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{
		db:      db,
		chatHub: watch.NewHub[[]*entity.Chat](),
		msgHub:  watch.NewHub[[]*entity.Message](),
	}, nil
}

// ListChats returns the user's chats ordered by updatedAt descending.
func (s *Store) ListChats(ctx context.Context, userID string) ([]*entity.Chat, error) {
	var records []*chatRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	chats := make([]*entity.Chat, len(records))
	for i, record := range records {
		chats[i] = toChatEntity(record)
	}
	return chats, nil
}

// SaveChat upserts the chat by ID.
func (s *Store) SaveChat(ctx context.Context, userID string, chat *entity.Chat) error {
	record := toChatRecord(userID, chat)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to save chat %s: %w", chat.ID, err)
	}
	s.publishChats(ctx, userID)
	return nil
}

// DeleteChat removes the chat and cascades to its messages in one
// transaction.
func (s *Store) DeleteChat(ctx context.Context, userID, chatID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND chat_id = ?", userID, chatID).
			Delete(&messageRecord{}).Error; err != nil {
			return err
		}

		result := tx.Where("user_id = ? AND id = ?", userID, chatID).
			Delete(&chatRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("chat", chatID)
		}
		return nil
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to delete chat %s: %w", chatID, err)
	}

	s.publishChats(ctx, userID)
	s.publishMessages(ctx, userID, chatID)
	return nil
}

// ListMessages returns the chat's messages ordered by timestamp ascending.
func (s *Store) ListMessages(ctx context.Context, userID, chatID string) ([]*entity.Message, error) {
	var records []*messageRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND chat_id = ?", userID, chatID).
		Order("timestamp ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]*entity.Message, len(records))
	for i, record := range records {
		messages[i] = toMessageEntity(record)
	}
	return messages, nil
}

// SaveMessage appends the message to its chat.
func (s *Store) SaveMessage(ctx context.Context, userID string, message *entity.Message) error {
	record := toMessageRecord(userID, message)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to save message %s: %w", message.ID, err)
	}
	s.publishMessages(ctx, userID, message.ChatID)
	return nil
}

// GenerateID returns a new store-generated document identifier.
func (s *Store) GenerateID() string {
	return uuid.New().String()
}

// SubscribeChats registers for chat list snapshots of one user. The initial
// snapshot is delivered immediately.
func (s *Store) SubscribeChats(ctx context.Context, userID string) (*domain.ChatSubscription, error) {
	chats, err := s.ListChats(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub := s.chatHub.Subscribe(userID)
	s.chatHub.Publish(userID, chats)
	return &domain.ChatSubscription{
		Updates: sub.Updates(),
		Close:   sub.Close,
	}, nil
}

// SubscribeMessages registers for message snapshots of one chat.
func (s *Store) SubscribeMessages(ctx context.Context, userID, chatID string) (*domain.MessageSubscription, error) {
	messages, err := s.ListMessages(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	topic := messageTopic(userID, chatID)
	sub := s.msgHub.Subscribe(topic)
	s.msgHub.Publish(topic, messages)
	return &domain.MessageSubscription{
		Updates: sub.Updates(),
		Close:   sub.Close,
	}, nil
}

func messageTopic(userID, chatID string) string {
	return userID + "/" + chatID
}

func (s *Store) publishChats(ctx context.Context, userID string) {
	chats, err := s.ListChats(ctx, userID)
	if err != nil {
		return
	}
	s.chatHub.Publish(userID, chats)
}

func (s *Store) publishMessages(ctx context.Context, userID, chatID string) {
	messages, err := s.ListMessages(ctx, userID, chatID)
	if err != nil {
		return
	}
	s.msgHub.Publish(messageTopic(userID, chatID), messages)
}
