package combat

//go:generate mockgen -destination=mock/mock_service.go -package=mockcombat -source=service.go

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tavernkeep/gamemaster/internal/clients/armory"
	"github.com/tavernkeep/gamemaster/internal/dice"
	"github.com/tavernkeep/gamemaster/internal/entities"
	"github.com/tavernkeep/gamemaster/internal/entities/conditions"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
	"github.com/tavernkeep/gamemaster/internal/repositories/characters"
	"github.com/tavernkeep/gamemaster/internal/repositories/combatlog"
	"github.com/tavernkeep/gamemaster/internal/repositories/npcs"
	"github.com/tavernkeep/gamemaster/internal/repositories/rooms"
	"github.com/tavernkeep/gamemaster/internal/uuid"
)

// Narrator produces a short third-person narration for a resolved
// action. Implementations are best-effort; failures are swallowed by
// the resolver.
type Narrator interface {
	Narrate(ctx context.Context, entry *entities.CombatLogEntry) (string, error)
}

// Service resolves combat actions against persisted state
type Service interface {
	// ResolveAction resolves one combat action and returns its log
	// entry plus an optional narration
	ResolveAction(ctx context.Context, input *ActionInput) (*ActionResult, error)
}

// ActionInput describes one requested combat action
type ActionInput struct {
	RoomID         string
	ActorID        string
	Action         entities.ActionType
	TargetID       string
	SpellLevel     int
	WeaponOverride string // weapon name resolved via the armory, optional
}

// ActionResult is the outcome of a resolved action
type ActionResult struct {
	Log *entities.CombatLogEntry

	// Narrative is an optional AI-written enrichment; empty when the
	// narrator was unavailable or failed
	Narrative string

	Timestamp time.Time
}

type service struct {
	roomRepo      rooms.Repository
	characterRepo characters.Repository
	npcRepo       npcs.Repository
	logRepo       combatlog.Repository
	roller        dice.Roller
	armoryClient  armory.Client
	narrator      Narrator
	uuidGenerator uuid.Generator
	logger        *slog.Logger
}

// ServiceConfig holds configuration for the combat service
type ServiceConfig struct {
	RoomRepository      rooms.Repository
	CharacterRepository characters.Repository
	NPCRepository       npcs.Repository
	LogRepository       combatlog.Repository
	DiceRoller          dice.Roller
	ArmoryClient        armory.Client // optional
	Narrator            Narrator      // optional
	UUIDGenerator       uuid.Generator
	Logger              *slog.Logger
}

// NewService creates a new combat service
func NewService(cfg *ServiceConfig) Service {
	if cfg.RoomRepository == nil {
		panic("room repository is required")
	}
	if cfg.CharacterRepository == nil {
		panic("character repository is required")
	}
	if cfg.NPCRepository == nil {
		panic("npc repository is required")
	}
	if cfg.LogRepository == nil {
		panic("combat log repository is required")
	}

	svc := &service{
		roomRepo:      cfg.RoomRepository,
		characterRepo: cfg.CharacterRepository,
		npcRepo:       cfg.NPCRepository,
		logRepo:       cfg.LogRepository,
		roller:        cfg.DiceRoller,
		armoryClient:  cfg.ArmoryClient,
		narrator:      cfg.Narrator,
		uuidGenerator: cfg.UUIDGenerator,
		logger:        cfg.Logger,
	}

	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller()
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	return svc
}

// ResolveAction resolves one combat action
func (s *service) ResolveAction(ctx context.Context, input *ActionInput) (*ActionResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if !input.Action.Valid() {
		return nil, apperr.InvalidArgumentf("unknown action type '%s'", input.Action)
	}

	if _, err := s.roomRepo.Get(ctx, input.RoomID); err != nil {
		return nil, apperr.Wrapf(err, "failed to resolve room '%s'", input.RoomID)
	}

	actor, err := s.characterRepo.Get(ctx, input.ActorID)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to resolve actor '%s'", input.ActorID)
	}

	var target *combatant
	if input.Action.RequiresTarget() {
		if strings.TrimSpace(input.TargetID) == "" {
			return nil, apperr.InvalidArgumentf("action '%s' requires a target", input.Action)
		}
		target, err = s.resolveTarget(ctx, input.TargetID)
		if err != nil {
			return nil, err
		}
	}

	round, err := s.logRepo.LatestRound(ctx, input.RoomID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to read combat round")
	}
	round++

	var entry *entities.CombatLogEntry
	switch input.Action {
	case entities.ActionAttack:
		entry, err = s.resolveAttack(ctx, input, actor, target, round)
	case entities.ActionCastSpell:
		entry, err = s.resolveSpell(ctx, input, actor, target, round)
	default:
		entry, err = s.resolveSimple(input, actor, target, round)
	}
	if err != nil {
		return nil, err
	}

	entry.ID = s.uuidGenerator.New()
	entry.RoomID = input.RoomID
	entry.Round = round

	if err := s.logRepo.Add(ctx, entry); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "failed to persist combat log entry")
	}

	return &ActionResult{
		Log:       entry,
		Narrative: s.requestNarration(ctx, entry),
		Timestamp: time.Now().UTC(),
	}, nil
}

// requestNarration asks the narrator for flavor text. Best-effort: any
// failure is logged and an empty narration returned.
func (s *service) requestNarration(ctx context.Context, entry *entities.CombatLogEntry) string {
	if s.narrator == nil {
		return ""
	}

	narrative, err := s.narrator.Narrate(ctx, entry)
	if err != nil {
		s.logger.Warn("combat narration failed",
			"room_id", entry.RoomID,
			"action", string(entry.Action),
			"error", err)
		return ""
	}

	return narrative
}

// combatant is a unified view over characters and NPCs for targeting
type combatant struct {
	name       string
	ac         int
	currentHP  int
	maxHP      int
	dexMod     int
	conditions []conditions.ConditionType

	char *entities.Character
	npc  *entities.NPC
}

// resolveTarget finds a target among characters first, then NPCs
func (s *service) resolveTarget(ctx context.Context, targetID string) (*combatant, error) {
	char, err := s.characterRepo.Get(ctx, targetID)
	if err == nil {
		return &combatant{
			name:       char.Name,
			ac:         char.AC,
			currentHP:  char.CurrentHP,
			maxHP:      char.MaxHP,
			dexMod:     char.AbilityMod(entities.AbilityDexterity),
			conditions: char.Conditions,
			char:       char,
		}, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, apperr.Wrapf(err, "failed to resolve target '%s'", targetID)
	}

	npc, err := s.npcRepo.Get(ctx, targetID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFoundf("target '%s' not found", targetID).
				WithMeta("target_id", targetID)
		}
		return nil, apperr.Wrapf(err, "failed to resolve target '%s'", targetID)
	}

	return &combatant{
		name:       npc.Name,
		ac:         npc.AC,
		currentHP:  npc.CurrentHP,
		maxHP:      npc.MaxHP,
		dexMod:     npc.AbilityMod(entities.AbilityDexterity),
		conditions: npc.Conditions,
		npc:        npc,
	}, nil
}

// applyDamage reduces the target's HP, clamped at zero, and persists it
func (s *service) applyDamage(ctx context.Context, target *combatant, damage int) error {
	if target.char != nil {
		target.char.ApplyDamage(damage)
		target.currentHP = target.char.CurrentHP
		if err := s.characterRepo.Update(ctx, target.char); err != nil {
			return apperr.WrapWithCode(err, apperr.CodeInternal, "failed to persist target HP")
		}
		return nil
	}

	target.npc.ApplyDamage(damage)
	target.currentHP = target.npc.CurrentHP
	if err := s.npcRepo.Update(ctx, target.npc); err != nil {
		return apperr.WrapWithCode(err, apperr.CodeInternal, "failed to persist target HP")
	}
	return nil
}

// resolveSimple handles dodge, disengage, dash and help
func (s *service) resolveSimple(input *ActionInput, actor *entities.Character, target *combatant, round int) (*entities.CombatLogEntry, error) {
	entry := &entities.CombatLogEntry{
		Actor:  actor.Name,
		Action: input.Action,
	}

	switch input.Action {
	case entities.ActionDodge:
		entry.Description = fmt.Sprintf("%s takes the Dodge action, focusing entirely on avoiding attacks.", actor.Name)
	case entities.ActionDisengage:
		entry.Description = fmt.Sprintf("%s takes the Disengage action and can move away without provoking opportunity attacks.", actor.Name)
	case entities.ActionDash:
		entry.Description = fmt.Sprintf("%s takes the Dash action, doubling their movement this turn.", actor.Name)
	case entities.ActionHelp:
		entry.Target = target.name
		entry.Description = fmt.Sprintf("%s takes the Help action, aiding %s with their next task.", actor.Name, target.name)
	default:
		return nil, apperr.InvalidArgumentf("unknown action type '%s'", input.Action)
	}

	return entry, nil
}
