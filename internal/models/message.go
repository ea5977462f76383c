// Package models defines data structures shared by the docchat session and client.
package models

import "time"

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single transcript entry.
// The transcript is append-only; messages are never edited after creation.
type Message struct {
	ID        int        `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Sources   []Citation `json:"sources,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Citation references a source document backing an assistant answer.
// Field names match the backend's query response wire format.
type Citation struct {
	Filename  string  `json:"filename"`
	Page      int     `json:"page"`
	Relevance float64 `json:"relevance"` // [0,1], rendered as a percentage
}
