package combat

import (
	"context"
	"fmt"
	"strings"

	"github.com/tavernkeep/gamemaster/internal/dice"
	"github.com/tavernkeep/gamemaster/internal/entities"
	"github.com/tavernkeep/gamemaster/internal/entities/conditions"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// resolveAttack runs one weapon attack: attack roll against AC, then
// damage on a hit
func (s *service) resolveAttack(ctx context.Context, input *ActionInput, actor *entities.Character, target *combatant, round int) (*entities.CombatLogEntry, error) {
	weapon := s.resolveWeapon(actor, input.WeaponOverride)

	abilityMod := actor.AbilityMod(weapon.Ability)
	attackBonus := abilityMod + actor.ProficiencyBonus

	mods := conditions.ForAttack(actor.Conditions, target.conditions)

	var (
		roll *dice.RollResult
		err  error
	)
	switch mods.State() {
	case conditions.Advantage:
		roll, err = s.roller.RollWithAdvantage(20, attackBonus)
	case conditions.Disadvantage:
		roll, err = s.roller.RollWithDisadvantage(20, attackBonus)
	default:
		roll, err = s.roller.Roll(1, 20, attackBonus)
	}
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "attack roll failed")
	}

	entry := &entities.CombatLogEntry{
		Actor:  actor.Name,
		Action: entities.ActionAttack,
		Target: target.name,
		Roll:   roll.Total,
	}

	// Natural 1 misses and natural 20 hits regardless of AC
	hit := roll.Total >= target.ac
	if roll.IsFumble {
		hit = false
	}
	if roll.IsCrit {
		hit = true
	}

	if !hit {
		entry.Description = describeMiss(actor.Name, target.name, weapon.Name, roll, mods.State(), target.ac)
		return entry, nil
	}

	count, sides, notationBonus, err := dice.ParseNotation(weapon.Damage)
	if err != nil {
		return nil, apperr.Wrapf(err, "weapon '%s' has unparseable damage dice", weapon.Name)
	}

	// A critical hit doubles the damage dice, not the modifiers
	if roll.IsCrit {
		count *= 2
	}

	damageRoll, err := s.roller.Roll(count, sides, abilityMod+notationBonus)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "damage roll failed")
	}

	damage := damageRoll.Total
	if damage < 0 {
		damage = 0
	}

	if err := s.applyDamage(ctx, target, damage); err != nil {
		return nil, err
	}

	entry.Damage = damage
	entry.Description = describeHit(actor.Name, target, weapon, roll, mods.State(), damage)

	return entry, nil
}

// resolveWeapon picks the weapon for this attack. An override is looked
// up by name in the armory; lookup failures fall back to the equipped
// weapon rather than failing the attack.
func (s *service) resolveWeapon(actor *entities.Character, override string) *entities.Weapon {
	if strings.TrimSpace(override) == "" || s.armoryClient == nil {
		equipped := actor.Weapon()
		return &equipped
	}

	weapon, err := s.armoryClient.GetWeapon(override)
	if err != nil {
		s.logger.Warn("weapon override lookup failed, using equipped weapon",
			"weapon", override,
			"character_id", actor.ID,
			"error", err)
		equipped := actor.Weapon()
		return &equipped
	}

	return weapon
}

func describeMiss(actor, target, weapon string, roll *dice.RollResult, state conditions.AdvantageState, ac int) string {
	if roll.IsFumble {
		return fmt.Sprintf("%s attacks %s with %s and rolls a natural 1, missing wildly!", actor, target, weapon)
	}
	return fmt.Sprintf("%s attacks %s with %s%s: %d vs AC %d, a miss.",
		actor, target, weapon, describeState(state), roll.Total, ac)
}

func describeHit(actor string, target *combatant, weapon *entities.Weapon, roll *dice.RollResult, state conditions.AdvantageState, damage int) string {
	if roll.IsCrit {
		return fmt.Sprintf("%s attacks %s with %s and rolls a natural 20, a critical hit for %d %s damage! (%s: %d/%d HP)",
			actor, target.name, weapon.Name, damage, weapon.DamageType, target.name, target.currentHP, target.maxHP)
	}
	return fmt.Sprintf("%s attacks %s with %s%s: %d hits for %d %s damage. (%s: %d/%d HP)",
		actor, target.name, weapon.Name, describeState(state), roll.Total, damage, weapon.DamageType, target.name, target.currentHP, target.maxHP)
}

func describeState(state conditions.AdvantageState) string {
	switch state {
	case conditions.Advantage:
		return " (advantage)"
	case conditions.Disadvantage:
		return " (disadvantage)"
	default:
		return ""
	}
}
