package domain

import "time"

// ChatRole is the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry in a thread. MarketContext is only set on
// assistant replies that were produced for a specific market.
type ChatMessage struct {
	ID            string     `json:"id"`
	Role          ChatRole   `json:"role"`
	Content       string     `json:"content"`
	MarketContext *MarketRef `json:"market_context,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ChatThread is a persisted conversation. It is created on the first user
// message and deleted only on explicit user request.
type ChatThread struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
