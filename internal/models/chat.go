package models

import "time"

// ChatType mirrors the chat_type enum in the writer's schema.
type ChatType string

const (
	ChatTypeSingle         ChatType = "single"
	ChatTypeGroup          ChatType = "group"
	ChatTypePrivateChannel ChatType = "private_channel"
	ChatTypePublicChannel  ChatType = "public_channel"
)

type Chat struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"ws_id"`
	Name        string    `json:"name,omitempty"`
	Type        ChatType  `json:"type"`
	Members     []int64   `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}
