package chat

import "time"

// Session is a conversation with its identity.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages"`
}

// Summary is the listing projection of a persisted session.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Preview   string    `json:"preview"`
}

// ExportRecord is the portable document produced by export and accepted by import.
type ExportRecord struct {
	Messages []Message      `json:"messages" yaml:"messages"`
	Metadata ExportMetadata `json:"metadata" yaml:"metadata"`
}

// ExportMetadata identifies where an exported transcript came from.
type ExportMetadata struct {
	CreatedAt string `json:"created_at" yaml:"created_at"`
	ChatID    string `json:"chat_id" yaml:"chat_id"`
}
