package database

import "github.com/RamaShankarRay/XGpt/internal/domain/entity"

// chatRecord is the database row for a chat. Timestamps are unix epoch
// milliseconds managed by the store, not by gorm's auto-time tracking.
type chatRecord struct {
	ID           string `gorm:"primaryKey;size:64"`
	Title        string `gorm:"size:255;not null"`
	UserID       string `gorm:"size:128;not null;index:idx_chats_user"`
	CreatedAt    int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    int64  `gorm:"not null;autoUpdateTime:false"`
	MessageCount int    `gorm:"not null;default:0"`
}

func (chatRecord) TableName() string { return "chats" }

// messageRecord is the database row for a message.
type messageRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	ChatID    string `gorm:"size:64;not null;index:idx_messages_chat"`
	UserID    string `gorm:"size:128;not null;index:idx_messages_user"`
	Content   string `gorm:"type:text;not null"`
	Role      string `gorm:"size:16;not null"`
	Timestamp int64  `gorm:"not null;index:idx_messages_timestamp"`
}

func (messageRecord) TableName() string { return "messages" }

func toChatRecord(userID string, chat *entity.Chat) *chatRecord {
	return &chatRecord{
		ID:           chat.ID,
		Title:        chat.Title,
		UserID:       userID,
		CreatedAt:    chat.CreatedAt,
		UpdatedAt:    chat.UpdatedAt,
		MessageCount: chat.MessageCount,
	}
}

func toChatEntity(record *chatRecord) *entity.Chat {
	return &entity.Chat{
		ID:           record.ID,
		Title:        record.Title,
		UserID:       record.UserID,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
		MessageCount: record.MessageCount,
	}
}

func toMessageRecord(userID string, message *entity.Message) *messageRecord {
	return &messageRecord{
		ID:        message.ID,
		ChatID:    message.ChatID,
		UserID:    userID,
		Content:   message.Content,
		Role:      string(message.Role),
		Timestamp: message.Timestamp,
	}
}

func toMessageEntity(record *messageRecord) *entity.Message {
	return &entity.Message{
		ID:        record.ID,
		Content:   record.Content,
		Role:      entity.Role(record.Role),
		Timestamp: record.Timestamp,
		ChatID:    record.ChatID,
	}
}
