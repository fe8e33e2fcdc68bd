package entities

import "time"

// SenderRole distinguishes player messages from game master narration
type SenderRole string

const (
	RolePlayer SenderRole = "player"
	RoleGM     SenderRole = "GM"
)

// Message is one entry in a room's narrative history. Append-only.
type Message struct {
	ID            string     `json:"id"`
	RoomID        string     `json:"room_id"`
	Role          SenderRole `json:"role"`
	CharacterName string     `json:"character_name,omitempty"`
	Content       string     `json:"content"`
	CreatedAt     time.Time  `json:"created_at"`
}
