package combat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/tavernkeep/gamemaster/internal/dice"
	"github.com/tavernkeep/gamemaster/internal/entities"
	"github.com/tavernkeep/gamemaster/internal/entities/conditions"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
	"github.com/tavernkeep/gamemaster/internal/repositories/characters"
	"github.com/tavernkeep/gamemaster/internal/repositories/combatlog"
	"github.com/tavernkeep/gamemaster/internal/repositories/npcs"
	"github.com/tavernkeep/gamemaster/internal/repositories/rooms"
	"github.com/tavernkeep/gamemaster/internal/services/combat"
)

type combatServiceSuite struct {
	suite.Suite

	ctx           context.Context
	roller        *dice.MockRoller
	roomRepo      rooms.Repository
	characterRepo characters.Repository
	npcRepo       npcs.Repository
	logRepo       combatlog.Repository
	service       combat.Service

	fighter *entities.Character
	goblin  *entities.NPC
}

func (s *combatServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.roller = dice.NewMockRoller()
	s.roomRepo = rooms.NewInMemoryRepository()
	s.characterRepo = characters.NewInMemoryRepository()
	s.npcRepo = npcs.NewInMemoryRepository()
	s.logRepo = combatlog.NewInMemoryRepository()

	s.service = combat.NewService(&combat.ServiceConfig{
		RoomRepository:      s.roomRepo,
		CharacterRepository: s.characterRepo,
		NPCRepository:       s.npcRepo,
		LogRepository:       s.logRepo,
		DiceRoller:          s.roller,
	})

	s.Require().NoError(s.roomRepo.Create(s.ctx, &entities.Room{ID: "room-1", Name: "The Rusty Flagon"}))

	s.fighter = &entities.Character{
		ID:               "char-1",
		RoomID:           "room-1",
		Name:             "Aldric",
		Class:            "fighter",
		Level:            3,
		Abilities:        entities.AbilityScores{entities.AbilityStrength: 16, entities.AbilityDexterity: 12},
		ProficiencyBonus: 2,
		CurrentHP:        24,
		MaxHP:            24,
		AC:               16,
		EquippedWeapon: &entities.Weapon{
			Name:       "Longsword",
			Damage:     "1d8",
			DamageType: entities.DamageSlashing,
			Ability:    entities.AbilityStrength,
		},
	}
	s.Require().NoError(s.characterRepo.Create(s.ctx, s.fighter))

	s.goblin = &entities.NPC{
		ID:        "npc-1",
		RoomID:    "room-1",
		Name:      "Goblin",
		CurrentHP: 20,
		MaxHP:     20,
		AC:        15,
	}
	s.Require().NoError(s.npcRepo.Create(s.ctx, s.goblin))
}

func TestCombatServiceSuite(t *testing.T) {
	suite.Run(t, new(combatServiceSuite))
}

func (s *combatServiceSuite) resolve(input *combat.ActionInput) (*combat.ActionResult, error) {
	return s.service.ResolveAction(s.ctx, input)
}

func (s *combatServiceSuite) TestAttackHits() {
	// d20 of 14 + 3 str + 2 prof = 19 vs AC 15, then 1d8 of 5 + 3 str = 8
	s.roller.SetRolls([]int{14, 5})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "npc-1",
	})
	s.Require().NoError(err)

	s.Equal(19, result.Log.Roll)
	s.Equal(8, result.Log.Damage)
	s.Equal("Aldric", result.Log.Actor)
	s.Equal("Goblin", result.Log.Target)
	s.Equal(1, result.Log.Round)
	s.NotEmpty(result.Log.ID)
	s.Contains(result.Log.Description, "Longsword")

	goblin, err := s.npcRepo.Get(s.ctx, "npc-1")
	s.Require().NoError(err)
	s.Equal(12, goblin.CurrentHP)
}

func (s *combatServiceSuite) TestAttackMissesBelowAC() {
	// d20 of 9 + 5 = 14 vs AC 15
	s.roller.SetRolls([]int{9})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "npc-1",
	})
	s.Require().NoError(err)

	s.Equal(0, result.Log.Damage)
	s.Contains(result.Log.Description, "miss")

	goblin, err := s.npcRepo.Get(s.ctx, "npc-1")
	s.Require().NoError(err)
	s.Equal(20, goblin.CurrentHP)
}

func (s *combatServiceSuite) TestNaturalOneAlwaysMisses() {
	s.goblin.AC = 2
	s.Require().NoError(s.npcRepo.Update(s.ctx, s.goblin))

	// 1 + 5 = 6 would beat AC 2, but a natural 1 misses regardless
	s.roller.SetRolls([]int{1})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "npc-1",
	})
	s.Require().NoError(err)

	s.Equal(0, result.Log.Damage)
	s.Contains(result.Log.Description, "natural 1")
}

func (s *combatServiceSuite) TestNaturalTwentyCritsAndDoublesDice() {
	s.goblin.AC = 30
	s.Require().NoError(s.npcRepo.Update(s.ctx, s.goblin))

	// Natural 20 hits AC 30 anyway; 2d8 of 4 and 6 + 3 str = 13.
	// The modifier is added once, not doubled.
	s.roller.SetRolls([]int{20, 4, 6})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "npc-1",
	})
	s.Require().NoError(err)

	s.Equal(13, result.Log.Damage)
	s.Contains(result.Log.Description, "critical")

	goblin, err := s.npcRepo.Get(s.ctx, "npc-1")
	s.Require().NoError(err)
	s.Equal(7, goblin.CurrentHP)
}

func (s *combatServiceSuite) TestProneTargetGrantsAdvantage() {
	s.goblin.Conditions = []conditions.ConditionType{conditions.Prone}
	s.Require().NoError(s.npcRepo.Update(s.ctx, s.goblin))

	// Advantage keeps the higher of 5 and 18: 18 + 5 = 23 hits AC 15
	s.roller.SetRolls([]int{5, 18, 3})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "npc-1",
	})
	s.Require().NoError(err)

	s.Equal(23, result.Log.Roll)
	s.Equal(6, result.Log.Damage)
	s.Contains(result.Log.Description, "advantage")
}

func (s *combatServiceSuite) TestPoisonedAttackerHasDisadvantage() {
	s.fighter.Conditions = []conditions.ConditionType{conditions.Poisoned}
	s.Require().NoError(s.characterRepo.Update(s.ctx, s.fighter))

	// Disadvantage keeps the lower of 18 and 5: 5 + 5 = 10 misses AC 15
	s.roller.SetRolls([]int{18, 5})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "npc-1",
	})
	s.Require().NoError(err)

	s.Equal(10, result.Log.Roll)
	s.Equal(0, result.Log.Damage)
}

func (s *combatServiceSuite) TestAdvantageAndDisadvantageCancel() {
	s.fighter.Conditions = []conditions.ConditionType{conditions.Poisoned}
	s.Require().NoError(s.characterRepo.Update(s.ctx, s.fighter))
	s.goblin.Conditions = []conditions.ConditionType{conditions.Prone}
	s.Require().NoError(s.npcRepo.Update(s.ctx, s.goblin))

	// A single d20 is consumed, so only one predetermined roll is needed
	s.roller.SetRolls([]int{14, 5})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "npc-1",
	})
	s.Require().NoError(err)

	s.Equal(19, result.Log.Roll)
	s.Equal(8, result.Log.Damage)
	s.NotContains(result.Log.Description, "advantage")
}

func (s *combatServiceSuite) TestDamageNeverGoesNegative() {
	s.fighter.Abilities[entities.AbilityStrength] = 6 // -2 modifier
	s.Require().NoError(s.characterRepo.Update(s.ctx, s.fighter))

	s.goblin.AC = 30
	s.Require().NoError(s.npcRepo.Update(s.ctx, s.goblin))

	// Natural 20 hits and doubles the dice: 2d8 of 1+1 - 2 str is 0,
	// clamped rather than negative
	s.roller.SetRolls([]int{20, 1, 1})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "npc-1",
	})
	s.Require().NoError(err)

	s.Equal(0, result.Log.Damage)

	goblin, err := s.npcRepo.Get(s.ctx, "npc-1")
	s.Require().NoError(err)
	s.Equal(20, goblin.CurrentHP)
}

func (s *combatServiceSuite) TestUnarmedStrikeWhenNoWeaponEquipped() {
	s.fighter.EquippedWeapon = nil
	s.Require().NoError(s.characterRepo.Update(s.ctx, s.fighter))

	// 14 + 5 = 19 hits, then 1d4 of 3 + 3 str = 6
	s.roller.SetRolls([]int{14, 3})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "npc-1",
	})
	s.Require().NoError(err)

	s.Equal(6, result.Log.Damage)
	s.Contains(result.Log.Description, "Unarmed Strike")
}

func (s *combatServiceSuite) TestAttackCanTargetAnotherCharacter() {
	rival := &entities.Character{
		ID:        "char-2",
		RoomID:    "room-1",
		Name:      "Brenna",
		CurrentHP: 18,
		MaxHP:     18,
		AC:        14,
	}
	s.Require().NoError(s.characterRepo.Create(s.ctx, rival))

	s.roller.SetRolls([]int{12, 4})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "char-2",
	})
	s.Require().NoError(err)

	s.Equal("Brenna", result.Log.Target)
	s.Equal(7, result.Log.Damage)

	updated, err := s.characterRepo.Get(s.ctx, "char-2")
	s.Require().NoError(err)
	s.Equal(11, updated.CurrentHP)
}

func (s *combatServiceSuite) newWizard() *entities.Character {
	wizard := &entities.Character{
		ID:               "char-wiz",
		RoomID:           "room-1",
		Name:             "Seraphine",
		Class:            "wizard",
		Level:            3,
		Abilities:        entities.AbilityScores{entities.AbilityIntelligence: 16},
		ProficiencyBonus: 2,
		CurrentHP:        15,
		MaxHP:            15,
		AC:               12,
		SpellSlots:       map[int]int{1: 4, 2: 2},
		CurrentSlots:     map[int]int{1: 2, 2: 1},
	}
	s.Require().NoError(s.characterRepo.Create(s.ctx, wizard))
	return wizard
}

func (s *combatServiceSuite) TestSpellFailedSaveTakesFullDamage() {
	s.newWizard()

	// Level 2 spell is 3d6: 4+5+2 = 11. Save DC is 8 + 2 + 3 = 13;
	// the goblin rolls 3 and fails.
	s.roller.SetRolls([]int{4, 5, 2, 3})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:     "room-1",
		ActorID:    "char-wiz",
		Action:     entities.ActionCastSpell,
		TargetID:   "npc-1",
		SpellLevel: 2,
	})
	s.Require().NoError(err)

	s.Equal(11, result.Log.Damage)
	s.Contains(result.Log.Description, "fails the save")

	goblin, err := s.npcRepo.Get(s.ctx, "npc-1")
	s.Require().NoError(err)
	s.Equal(9, goblin.CurrentHP)

	wizard, err := s.characterRepo.Get(s.ctx, "char-wiz")
	s.Require().NoError(err)
	s.Equal(0, wizard.CurrentSlots[2], "slot consumed")
}

func (s *combatServiceSuite) TestSpellSuccessfulSaveHalvesDamage() {
	s.newWizard()

	// 2d6 of 4+5 = 9, halved to 4 on a save of 15 vs DC 13
	s.roller.SetRolls([]int{4, 5, 15})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:     "room-1",
		ActorID:    "char-wiz",
		Action:     entities.ActionCastSpell,
		TargetID:   "npc-1",
		SpellLevel: 1,
	})
	s.Require().NoError(err)

	s.Equal(4, result.Log.Damage)
	s.Contains(result.Log.Description, "saves")
}

func (s *combatServiceSuite) TestSpellWithoutSlotIsRejected() {
	wizard := s.newWizard()
	wizard.CurrentSlots = map[int]int{}
	s.Require().NoError(s.characterRepo.Update(s.ctx, wizard))

	_, err := s.resolve(&combat.ActionInput{
		RoomID:     "room-1",
		ActorID:    "char-wiz",
		Action:     entities.ActionCastSpell,
		TargetID:   "npc-1",
		SpellLevel: 1,
	})
	s.Require().Error(err)
	s.True(apperr.IsInvalidArgument(err))
	s.Contains(err.Error(), "spell slots")
}

func (s *combatServiceSuite) TestSpellLevelMustBePositive() {
	s.newWizard()

	_, err := s.resolve(&combat.ActionInput{
		RoomID:     "room-1",
		ActorID:    "char-wiz",
		Action:     entities.ActionCastSpell,
		TargetID:   "npc-1",
		SpellLevel: 0,
	})
	s.Require().Error(err)
	s.True(apperr.IsInvalidArgument(err))
}

func (s *combatServiceSuite) TestDodgeNeedsNoTarget() {
	result, err := s.resolve(&combat.ActionInput{
		RoomID:  "room-1",
		ActorID: "char-1",
		Action:  entities.ActionDodge,
	})
	s.Require().NoError(err)

	s.Contains(result.Log.Description, "Dodge")
	s.Empty(result.Log.Target)
	s.Equal(0, result.Log.Damage)
}

func (s *combatServiceSuite) TestHelpRequiresTarget() {
	_, err := s.resolve(&combat.ActionInput{
		RoomID:  "room-1",
		ActorID: "char-1",
		Action:  entities.ActionHelp,
	})
	s.Require().Error(err)
	s.True(apperr.IsInvalidArgument(err))
}

func (s *combatServiceSuite) TestUnknownActionIsRejected() {
	_, err := s.resolve(&combat.ActionInput{
		RoomID:  "room-1",
		ActorID: "char-1",
		Action:  entities.ActionType("taunt"),
	})
	s.Require().Error(err)
	s.True(apperr.IsInvalidArgument(err))
}

func (s *combatServiceSuite) TestUnknownRoomIsNotFound() {
	_, err := s.resolve(&combat.ActionInput{
		RoomID:  "room-404",
		ActorID: "char-1",
		Action:  entities.ActionDodge,
	})
	s.Require().Error(err)
	s.True(apperr.IsNotFound(err))
}

func (s *combatServiceSuite) TestUnknownTargetIsNotFound() {
	s.roller.SetRolls([]int{14})

	_, err := s.resolve(&combat.ActionInput{
		RoomID:   "room-1",
		ActorID:  "char-1",
		Action:   entities.ActionAttack,
		TargetID: "npc-404",
	})
	s.Require().Error(err)
	s.True(apperr.IsNotFound(err))
}

func (s *combatServiceSuite) TestRoundsAdvancePerAction() {
	s.roller.SetRolls([]int{14, 5, 9})

	first, err := s.resolve(&combat.ActionInput{
		RoomID: "room-1", ActorID: "char-1", Action: entities.ActionAttack, TargetID: "npc-1",
	})
	s.Require().NoError(err)
	s.Equal(1, first.Log.Round)

	second, err := s.resolve(&combat.ActionInput{
		RoomID: "room-1", ActorID: "char-1", Action: entities.ActionAttack, TargetID: "npc-1",
	})
	s.Require().NoError(err)
	s.Equal(2, second.Log.Round)

	entries, err := s.logRepo.ListByRoom(s.ctx, "room-1", 10)
	s.Require().NoError(err)
	s.Len(entries, 2)
}

type stubNarrator struct {
	narrative string
	err       error
}

func (n *stubNarrator) Narrate(_ context.Context, _ *entities.CombatLogEntry) (string, error) {
	return n.narrative, n.err
}

type stubArmory struct {
	weapons map[string]*entities.Weapon
}

func (a *stubArmory) GetWeapon(name string) (*entities.Weapon, error) {
	weapon, ok := a.weapons[name]
	if !ok {
		return nil, apperr.NotFoundf("weapon '%s' not found", name)
	}
	return weapon, nil
}

func (s *combatServiceSuite) withService(cfg func(*combat.ServiceConfig)) {
	base := &combat.ServiceConfig{
		RoomRepository:      s.roomRepo,
		CharacterRepository: s.characterRepo,
		NPCRepository:       s.npcRepo,
		LogRepository:       s.logRepo,
		DiceRoller:          s.roller,
	}
	cfg(base)
	s.service = combat.NewService(base)
}

func (s *combatServiceSuite) TestNarratorEnrichesResult() {
	s.withService(func(cfg *combat.ServiceConfig) {
		cfg.Narrator = &stubNarrator{narrative: "Steel rings against the goblin's rusted shield."}
	})

	s.roller.SetRolls([]int{14, 5})

	result, err := s.resolve(&combat.ActionInput{
		RoomID: "room-1", ActorID: "char-1", Action: entities.ActionAttack, TargetID: "npc-1",
	})
	s.Require().NoError(err)
	s.Equal("Steel rings against the goblin's rusted shield.", result.Narrative)
}

func (s *combatServiceSuite) TestNarratorFailureIsNotFatal() {
	s.withService(func(cfg *combat.ServiceConfig) {
		cfg.Narrator = &stubNarrator{err: apperr.Upstream("model unavailable")}
	})

	s.roller.SetRolls([]int{14, 5})

	result, err := s.resolve(&combat.ActionInput{
		RoomID: "room-1", ActorID: "char-1", Action: entities.ActionAttack, TargetID: "npc-1",
	})
	s.Require().NoError(err)
	s.Empty(result.Narrative)
	s.Equal(8, result.Log.Damage, "action still resolved")
}

func (s *combatServiceSuite) TestWeaponOverrideUsesArmory() {
	s.withService(func(cfg *combat.ServiceConfig) {
		cfg.ArmoryClient = &stubArmory{weapons: map[string]*entities.Weapon{
			"Greataxe": {
				Name:       "Greataxe",
				Damage:     "1d12",
				DamageType: entities.DamageSlashing,
				Ability:    entities.AbilityStrength,
			},
		}}
	})

	// 14 + 5 = 19 hits, then 1d12 of 10 + 3 str = 13
	s.roller.SetRolls([]int{14, 10})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:         "room-1",
		ActorID:        "char-1",
		Action:         entities.ActionAttack,
		TargetID:       "npc-1",
		WeaponOverride: "Greataxe",
	})
	s.Require().NoError(err)
	s.Equal(13, result.Log.Damage)
	s.Contains(result.Log.Description, "Greataxe")
}

func (s *combatServiceSuite) TestWeaponOverrideLookupFailureFallsBack() {
	s.withService(func(cfg *combat.ServiceConfig) {
		cfg.ArmoryClient = &stubArmory{weapons: map[string]*entities.Weapon{}}
	})

	// Falls back to the equipped longsword: 1d8 of 5 + 3 str = 8
	s.roller.SetRolls([]int{14, 5})

	result, err := s.resolve(&combat.ActionInput{
		RoomID:         "room-1",
		ActorID:        "char-1",
		Action:         entities.ActionAttack,
		TargetID:       "npc-1",
		WeaponOverride: "Vorpal Sword",
	})
	s.Require().NoError(err)
	s.Equal(8, result.Log.Damage)
	s.Contains(result.Log.Description, "Longsword")
}
