package combat

import (
	"context"
	"fmt"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// resolveSpell runs one damaging spell: consume a slot, then a saving
// throw against the caster's spell save DC for half damage
func (s *service) resolveSpell(ctx context.Context, input *ActionInput, actor *entities.Character, target *combatant, round int) (*entities.CombatLogEntry, error) {
	level := input.SpellLevel
	if level < 1 {
		return nil, apperr.InvalidArgument("spell level must be at least 1")
	}

	if !actor.HasSpellSlot(level) {
		return nil, apperr.InvalidArgumentf("%s has no level %d spell slots remaining", actor.Name, level)
	}

	// Damage scales with slot level: (level+1)d6
	damageRoll, err := s.roller.Roll(level+1, 6, 0)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "spell damage roll failed")
	}

	saveDC := actor.SpellSaveDC()
	saveRoll, err := s.roller.Roll(1, 20, target.dexMod)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "saving throw failed")
	}

	damage := damageRoll.Total
	saved := saveRoll.Total >= saveDC
	if saved {
		damage /= 2
	}

	actor.UseSpellSlot(level)
	if err := s.characterRepo.Update(ctx, actor); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "failed to persist spell slot use")
	}

	if err := s.applyDamage(ctx, target, damage); err != nil {
		return nil, err
	}

	entry := &entities.CombatLogEntry{
		Actor:  actor.Name,
		Action: entities.ActionCastSpell,
		Target: target.name,
		Roll:   saveRoll.Total,
		Damage: damage,
	}

	if saved {
		entry.Description = fmt.Sprintf(
			"%s casts a level %d spell at %s. %s saves (%d vs DC %d) and takes %d damage. (%s: %d/%d HP)",
			actor.Name, level, target.name, target.name, saveRoll.Total, saveDC, damage,
			target.name, target.currentHP, target.maxHP)
	} else {
		entry.Description = fmt.Sprintf(
			"%s casts a level %d spell at %s. %s fails the save (%d vs DC %d) and takes %d damage. (%s: %d/%d HP)",
			actor.Name, level, target.name, target.name, saveRoll.Total, saveDC, damage,
			target.name, target.currentHP, target.maxHP)
	}

	return entry, nil
}
