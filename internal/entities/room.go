package entities

import "time"

// Room groups players, their characters, the narrative history and the
// active shop
type Room struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CharacterIDs []string  `json:"character_ids,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
