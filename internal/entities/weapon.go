package entities

// DamageType categorizes weapon and spell damage
type DamageType string

const (
	DamageBludgeoning DamageType = "bludgeoning"
	DamagePiercing    DamageType = "piercing"
	DamageSlashing    DamageType = "slashing"
	DamageFire        DamageType = "fire"
	DamageForce       DamageType = "force"
)

// Weapon describes an equipped or overriding weapon
type Weapon struct {
	Name       string     `json:"name"`
	Damage     string     `json:"damage"` // dice notation, e.g. "1d8"
	DamageType DamageType `json:"damage_type"`
	Ability    Ability    `json:"ability"` // governing ability for attack and damage
}

// UnarmedStrike is the default when a character has nothing equipped
func UnarmedStrike() Weapon {
	return Weapon{
		Name:       "Unarmed Strike",
		Damage:     "1d4",
		DamageType: DamageBludgeoning,
		Ability:    AbilityStrength,
	}
}
