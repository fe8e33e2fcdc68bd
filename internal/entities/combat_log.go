package entities

import "time"

// ActionType enumerates the combat actions the resolver accepts
type ActionType string

const (
	ActionAttack    ActionType = "attack"
	ActionCastSpell ActionType = "cast_spell"
	ActionDodge     ActionType = "dodge"
	ActionDisengage ActionType = "disengage"
	ActionDash      ActionType = "dash"
	ActionHelp      ActionType = "help"
)

// Valid reports whether the action type is one the resolver accepts
func (a ActionType) Valid() bool {
	switch a {
	case ActionAttack, ActionCastSpell, ActionDodge, ActionDisengage, ActionDash, ActionHelp:
		return true
	}
	return false
}

// RequiresTarget reports whether the action needs a target reference
func (a ActionType) RequiresTarget() bool {
	switch a {
	case ActionAttack, ActionCastSpell, ActionHelp:
		return true
	}
	return false
}

// CombatLogEntry is the immutable record of one resolved action.
// Actor and target are denormalized by name.
type CombatLogEntry struct {
	ID          string     `json:"id"`
	RoomID      string     `json:"room_id"`
	Round       int        `json:"round"`
	Actor       string     `json:"actor"`
	Action      ActionType `json:"action"`
	Target      string     `json:"target,omitempty"`
	Roll        int        `json:"roll,omitempty"`
	Damage      int        `json:"damage,omitempty"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}
