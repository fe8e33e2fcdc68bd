package conditions

// ConditionType represents a status condition on a combatant
type ConditionType string

// Standard conditions tracked by the combat resolver
const (
	Blinded     ConditionType = "blinded"
	Charmed     ConditionType = "charmed"
	Frightened  ConditionType = "frightened"
	Grappled    ConditionType = "grappled"
	Invisible   ConditionType = "invisible"
	Paralyzed   ConditionType = "paralyzed"
	Poisoned    ConditionType = "poisoned"
	Prone       ConditionType = "prone"
	Restrained  ConditionType = "restrained"
	Stunned     ConditionType = "stunned"
	Unconscious ConditionType = "unconscious"
)

// AdvantageState is the net roll mode after all condition effects combine
type AdvantageState string

const (
	Normal       AdvantageState = "normal"
	Advantage    AdvantageState = "advantage"
	Disadvantage AdvantageState = "disadvantage"
)

// AttackModifiers holds the raw advantage/disadvantage grants before
// they cancel against each other
type AttackModifiers struct {
	Advantage    bool
	Disadvantage bool
}

// State collapses the grants into a single roll mode. Advantage and
// disadvantage cancel to a normal roll when both apply.
func (m AttackModifiers) State() AdvantageState {
	switch {
	case m.Advantage && m.Disadvantage:
		return Normal
	case m.Advantage:
		return Advantage
	case m.Disadvantage:
		return Disadvantage
	default:
		return Normal
	}
}

// ForAttack evaluates the attacker's and target's conditions
// independently and returns the combined grants.
//
// Attacker: poisoned or frightened impose disadvantage, invisible grants
// advantage. Target: prone, paralyzed, stunned, unconscious and
// restrained grant the attacker advantage; an invisible target imposes
// disadvantage.
func ForAttack(actor, target []ConditionType) AttackModifiers {
	var mods AttackModifiers

	for _, cond := range actor {
		switch cond {
		case Poisoned, Frightened:
			mods.Disadvantage = true
		case Invisible:
			mods.Advantage = true
		}
	}

	for _, cond := range target {
		switch cond {
		case Prone, Paralyzed, Stunned, Unconscious, Restrained:
			mods.Advantage = true
		case Invisible:
			mods.Disadvantage = true
		}
	}

	return mods
}
