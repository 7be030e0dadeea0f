package models

import "time"

type Role string

// Message roles
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one turn in a persona conversation. Timestamp is Unix milliseconds.
type ChatMessage struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

func NewChatMessage(id string, role Role, text string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        id,
		Role:      role,
		Text:      text,
		Timestamp: at.UnixMilli(),
	}
}

// SessionSnapshot is a point-in-time copy of a chat session.
type SessionSnapshot struct {
	ID             string        `json:"id"`
	Persona        Persona       `json:"persona"`
	ProductContext string        `json:"productContext"`
	Messages       []ChatMessage `json:"messages"`
	Busy           bool          `json:"busy"`
}
