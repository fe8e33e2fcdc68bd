package entities

import (
	"strings"
	"time"

	"github.com/tavernkeep/gamemaster/internal/dice"
	"github.com/tavernkeep/gamemaster/internal/entities/conditions"
)

// Ability identifies one of the six ability scores
type Ability string

const (
	AbilityStrength     Ability = "strength"
	AbilityDexterity    Ability = "dexterity"
	AbilityConstitution Ability = "constitution"
	AbilityIntelligence Ability = "intelligence"
	AbilityWisdom       Ability = "wisdom"
	AbilityCharisma     Ability = "charisma"
)

// AbilityScores maps ability name to raw score
type AbilityScores map[Ability]int

// Character is a player character sheet as persisted in the store
type Character struct {
	ID               string                     `json:"id"`
	RoomID           string                     `json:"room_id"`
	OwnerID          string                     `json:"owner_id"`
	Name             string                     `json:"name"`
	Class            string                     `json:"class"`
	Level            int                        `json:"level"`
	Abilities        AbilityScores              `json:"abilities"`
	ProficiencyBonus int                        `json:"proficiency_bonus"`
	CurrentHP        int                        `json:"current_hp"`
	MaxHP            int                        `json:"max_hp"`
	AC               int                        `json:"ac"`
	EquippedWeapon   *Weapon                    `json:"equipped_weapon,omitempty"`
	SpellSlots       map[int]int                `json:"spell_slots,omitempty"`
	CurrentSlots     map[int]int                `json:"current_spell_slots,omitempty"`
	Experience       int                        `json:"experience"`
	Conditions       []conditions.ConditionType `json:"conditions,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// AbilityScore returns the raw score for an ability, 10 when unset
func (c *Character) AbilityScore(ability Ability) int {
	if score, ok := c.Abilities[ability]; ok {
		return score
	}
	return 10
}

// AbilityMod returns the modifier for an ability
func (c *Character) AbilityMod(ability Ability) int {
	return dice.AbilityModifier(c.AbilityScore(ability))
}

// ApplyDamage reduces current HP, clamped at zero
func (c *Character) ApplyDamage(amount int) {
	c.CurrentHP -= amount
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
}

// AdjustHP applies a signed HP change, clamped to [0, MaxHP].
// Negative values are damage, positive values are healing.
func (c *Character) AdjustHP(delta int) {
	c.CurrentHP += delta
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
	if c.CurrentHP > c.MaxHP {
		c.CurrentHP = c.MaxHP
	}
}

// HasSpellSlot reports whether a slot of the given level remains
func (c *Character) HasSpellSlot(level int) bool {
	return c.CurrentSlots[level] > 0
}

// UseSpellSlot consumes one slot of the given level. Returns false when
// none remain.
func (c *Character) UseSpellSlot(level int) bool {
	if c.CurrentSlots[level] <= 0 {
		return false
	}
	c.CurrentSlots[level]--
	return true
}

// SpellcastingAbility returns the ability governing the character's
// spell save DC, derived from class family.
func (c *Character) SpellcastingAbility() Ability {
	switch strings.ToLower(c.Class) {
	case "wizard", "sorcerer", "warlock":
		return AbilityIntelligence
	case "cleric", "druid", "ranger":
		return AbilityWisdom
	default:
		return AbilityCharisma
	}
}

// SpellSaveDC returns 8 + proficiency bonus + spellcasting ability modifier
func (c *Character) SpellSaveDC() int {
	return 8 + c.ProficiencyBonus + c.AbilityMod(c.SpellcastingAbility())
}

// Weapon returns the equipped weapon, falling back to an unarmed strike
func (c *Character) Weapon() Weapon {
	if c.EquippedWeapon != nil {
		return *c.EquippedWeapon
	}
	return UnarmedStrike()
}
