package entity

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser is a message written by the human user.
	RoleUser Role = "user"
	// RoleAssistant is a message produced by the completion model.
	RoleAssistant Role = "assistant"
	// RoleSystem is a system prompt. It is accepted by the completion
	// API but never persisted as part of a chat.
	RoleSystem Role = "system"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

// Chat is a titled conversation container owned by one user.
// All timestamps are unix epoch milliseconds.
type Chat struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	UserID       string `json:"userId"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
	MessageCount int    `json:"messageCount"`
}

// Clone returns a copy of the chat.
func (c *Chat) Clone() *Chat {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}

// Message is one turn in a chat, authored by the user or the assistant.
type Message struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Role      Role   `json:"role"`
	Timestamp int64  `json:"timestamp"`
	ChatID    string `json:"chatId"`
}

// TokenUsage reports upstream token accounting for one completion call.
// It is passed through opaquely to clients.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
