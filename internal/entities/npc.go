package entities

import (
	"time"

	"github.com/tavernkeep/gamemaster/internal/dice"
	"github.com/tavernkeep/gamemaster/internal/entities/conditions"
)

// NPC is a non-player combat participant. Same combat shape as a
// character (HP, AC, attack bonus, damage dice, conditions) but no
// spell slots or experience.
type NPC struct {
	ID          string                     `json:"id"`
	RoomID      string                     `json:"room_id"`
	Name        string                     `json:"name"`
	CurrentHP   int                        `json:"current_hp"`
	MaxHP       int                        `json:"max_hp"`
	AC          int                        `json:"ac"`
	AttackBonus int                        `json:"attack_bonus"`
	Damage      string                     `json:"damage"` // dice notation
	Abilities   AbilityScores              `json:"abilities,omitempty"`
	Conditions  []conditions.ConditionType `json:"conditions,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// AbilityMod returns the modifier for an ability, 0 when the score is unset
func (n *NPC) AbilityMod(ability Ability) int {
	if score, ok := n.Abilities[ability]; ok {
		return dice.AbilityModifier(score)
	}
	return 0
}

// ApplyDamage reduces current HP, clamped at zero
func (n *NPC) ApplyDamage(amount int) {
	n.CurrentHP -= amount
	if n.CurrentHP < 0 {
		n.CurrentHP = 0
	}
}
