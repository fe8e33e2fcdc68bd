package narrative

//go:generate mockgen -destination=mock/mock_service.go -package=mocknarrative -source=service.go

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tavernkeep/gamemaster/internal/clients/llm"
	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
	"github.com/tavernkeep/gamemaster/internal/repositories/characters"
	"github.com/tavernkeep/gamemaster/internal/repositories/messages"
	"github.com/tavernkeep/gamemaster/internal/repositories/rooms"
	"github.com/tavernkeep/gamemaster/internal/repositories/shops"
	"github.com/tavernkeep/gamemaster/internal/uuid"
)

//go:embed prompts/system.md
var systemPrompt string

// messageWindow bounds how much room history is sent to the model
const messageWindow = 30

// combatMarker is a leading marker the model emits to signal that
// combat mode should begin. Passed through to callers, never
// interpreted here.
const combatMarker = "[start combat]"

// Service runs one game-master turn end to end
type Service interface {
	// RunTurn streams a game-master reply for a room. Raw completion
	// bytes are forwarded to stream as they arrive when stream is
	// non-nil; the reassembled result is returned after the stream
	// fully completes.
	RunTurn(ctx context.Context, input *TurnInput, stream io.Writer) (*TurnResult, error)
}

// TurnInput is one player turn handed to the game master
type TurnInput struct {
	RoomID string

	// Messages are extra chat messages from the caller for this turn,
	// appended after the persisted history
	Messages []llm.ChatMessage

	// CharacterID explicitly selects the active character for tool
	// calls. When empty the author of the most recent player message
	// is used.
	CharacterID string

	// CharacterName attributes the incoming player message
	CharacterName string

	// IsSessionStart skips history hydration for a fresh session
	IsSessionStart bool
}

// TurnResult is everything accumulated once the stream has ended
type TurnResult struct {
	// Narration is the player-visible text with any shop block removed
	Narration string

	// CombatRequested reports a leading combat marker in the narration
	CombatRequested bool

	// ShopUpdated reports that a shop block was parsed and persisted
	ShopUpdated bool

	// ToolCallCount is how many tool calls the model issued
	ToolCallCount int
}

type service struct {
	roomRepo      rooms.Repository
	characterRepo characters.Repository
	messageRepo   messages.Repository
	shopRepo      shops.Repository
	llmClient     llm.Client
	uuidGenerator uuid.Generator
	logger        *slog.Logger
}

// ServiceConfig holds configuration for the narrative service
type ServiceConfig struct {
	RoomRepository      rooms.Repository
	CharacterRepository characters.Repository
	MessageRepository   messages.Repository
	ShopRepository      shops.Repository
	LLMClient           llm.Client
	UUIDGenerator       uuid.Generator
	Logger              *slog.Logger
}

// NewService creates a new narrative service
func NewService(cfg *ServiceConfig) Service {
	if cfg.RoomRepository == nil {
		panic("room repository is required")
	}
	if cfg.CharacterRepository == nil {
		panic("character repository is required")
	}
	if cfg.MessageRepository == nil {
		panic("message repository is required")
	}
	if cfg.ShopRepository == nil {
		panic("shop repository is required")
	}
	if cfg.LLMClient == nil {
		panic("llm client is required")
	}

	svc := &service{
		roomRepo:      cfg.RoomRepository,
		characterRepo: cfg.CharacterRepository,
		messageRepo:   cfg.MessageRepository,
		shopRepo:      cfg.ShopRepository,
		llmClient:     cfg.LLMClient,
		uuidGenerator: cfg.UUIDGenerator,
		logger:        cfg.Logger,
	}

	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	return svc
}

// RunTurn implements Service.RunTurn
func (s *service) RunTurn(ctx context.Context, input *TurnInput, stream io.Writer) (*TurnResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if stream == nil {
		stream = io.Discard
	}

	if _, err := s.roomRepo.Get(ctx, input.RoomID); err != nil {
		return nil, apperr.Wrapf(err, "failed to resolve room '%s'", input.RoomID)
	}

	history, roomChars, err := s.loadContext(ctx, input)
	if err != nil {
		return nil, err
	}

	activeCharID := s.resolveActiveCharacter(input, history, roomChars)

	if err := s.persistPlayerMessages(ctx, input); err != nil {
		return nil, err
	}

	body, err := s.llmClient.StreamCompletion(ctx, &llm.CompletionRequest{
		Messages:   s.buildMessages(history, roomChars, input),
		Tools:      []llm.Tool{characterStatsTool()},
		ToolChoice: "auto",
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	// The stream must be read to completion so tool execution and
	// persistence run exactly once, even when the caller discards it
	streamResult, err := llm.ConsumeStream(body, stream)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeUpstream, "completion stream failed")
	}

	s.executeToolCalls(ctx, input.RoomID, activeCharID, streamResult.ToolCalls)

	update, narration := ExtractShopBlock(streamResult.Text)
	shopUpdated := s.persistShopUpdate(ctx, input.RoomID, update)
	s.persistNarration(ctx, input.RoomID, narration)

	return &TurnResult{
		Narration:       narration,
		CombatRequested: strings.HasPrefix(strings.ToLower(strings.TrimSpace(narration)), combatMarker),
		ShopUpdated:     shopUpdated,
		ToolCallCount:   len(streamResult.ToolCalls),
	}, nil
}

// loadContext fetches room history and character sheets concurrently
func (s *service) loadContext(ctx context.Context, input *TurnInput) ([]*entities.Message, []*entities.Character, error) {
	var (
		history   []*entities.Message
		roomChars []*entities.Character
	)

	g, gctx := errgroup.WithContext(ctx)

	if !input.IsSessionStart {
		g.Go(func() error {
			var err error
			history, err = s.messageRepo.ListRecent(gctx, input.RoomID, messageWindow)
			if err != nil {
				return apperr.Wrap(err, "failed to load message history")
			}
			return nil
		})
	}

	g.Go(func() error {
		var err error
		roomChars, err = s.characterRepo.GetByRoom(gctx, input.RoomID)
		if err != nil {
			return apperr.Wrap(err, "failed to load room characters")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return history, roomChars, nil
}

// resolveActiveCharacter picks the character tool calls apply to: the
// explicit id when given, otherwise the author of the newest player
// message. Empty means no tool call target this turn.
func (s *service) resolveActiveCharacter(input *TurnInput, history []*entities.Message, roomChars []*entities.Character) string {
	if input.CharacterID != "" {
		return input.CharacterID
	}

	byName := make(map[string]string, len(roomChars))
	for _, char := range roomChars {
		byName[strings.ToLower(char.Name)] = char.ID
	}

	if input.CharacterName != "" {
		if id, ok := byName[strings.ToLower(input.CharacterName)]; ok {
			return id
		}
	}

	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role != entities.RolePlayer || msg.CharacterName == "" {
			continue
		}
		if id, ok := byName[strings.ToLower(msg.CharacterName)]; ok {
			return id
		}
	}

	return ""
}

// buildMessages assembles the completion context: system instructions,
// character sheet snapshot, a truncation note when the history window is
// full, the persisted history, then the caller's messages for this turn.
func (s *service) buildMessages(history []*entities.Message, roomChars []*entities.Character, input *TurnInput) []llm.ChatMessage {
	msgs := []llm.ChatMessage{
		{Role: "system", Content: systemPrompt},
	}

	if len(roomChars) > 0 {
		msgs = append(msgs, llm.ChatMessage{
			Role:    "system",
			Content: characterSheets(roomChars),
		})
	}

	if len(history) >= messageWindow {
		msgs = append(msgs, llm.ChatMessage{
			Role:    "system",
			Content: fmt.Sprintf("Only the most recent %d messages are visible. Earlier session history has been truncated.", messageWindow),
		})
	}

	for _, msg := range history {
		msgs = append(msgs, toChatMessage(msg))
	}

	msgs = append(msgs, input.Messages...)

	return msgs
}

func toChatMessage(msg *entities.Message) llm.ChatMessage {
	if msg.Role == entities.RoleGM {
		return llm.ChatMessage{Role: "assistant", Content: msg.Content}
	}

	content := msg.Content
	if msg.CharacterName != "" {
		content = fmt.Sprintf("%s: %s", msg.CharacterName, msg.Content)
	}
	return llm.ChatMessage{Role: "user", Content: content}
}

// characterSheets renders a compact snapshot of every sheet in the room
// so the model can tell whose stats belong to the speaking player
func characterSheets(chars []*entities.Character) string {
	var b strings.Builder
	b.WriteString("Party character sheets:\n")

	for _, char := range chars {
		fmt.Fprintf(&b, "- %s: level %d %s, HP %d/%d, AC %d",
			char.Name, char.Level, char.Class, char.CurrentHP, char.MaxHP, char.AC)
		if weapon := char.Weapon(); weapon.Name != "" {
			fmt.Fprintf(&b, ", wielding %s (%s)", weapon.Name, weapon.Damage)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// persistPlayerMessages records the caller's user messages before the
// completion call so they are part of the durable history
func (s *service) persistPlayerMessages(ctx context.Context, input *TurnInput) error {
	for _, msg := range input.Messages {
		if msg.Role != "user" {
			continue
		}

		err := s.messageRepo.Add(ctx, &entities.Message{
			ID:            s.uuidGenerator.New(),
			RoomID:        input.RoomID,
			Role:          entities.RolePlayer,
			CharacterName: input.CharacterName,
			Content:       msg.Content,
			CreatedAt:     time.Now().UTC(),
		})
		if err != nil {
			return apperr.WrapWithCode(err, apperr.CodeInternal, "failed to persist player message")
		}
	}

	return nil
}

func (s *service) persistShopUpdate(ctx context.Context, roomID string, update *ShopUpdate) bool {
	if update == nil {
		return false
	}

	err := s.shopRepo.Set(ctx, &entities.Shop{
		RoomID:      roomID,
		NPCName:     update.NPCName,
		Personality: update.Personality,
		Reputation:  update.Reputation,
		Items:       update.Items,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to persist shop update",
			"room_id", roomID,
			"items", len(update.Items),
			"error", err)
		return false
	}

	return true
}

// persistNarration stores the GM reply exactly once, after the stream
// has fully ended. The stream has already been delivered to the caller
// by this point, so a write failure is logged for monitoring rather
// than re-raised.
func (s *service) persistNarration(ctx context.Context, roomID, narration string) {
	if strings.TrimSpace(narration) == "" {
		return
	}

	err := s.messageRepo.Add(ctx, &entities.Message{
		ID:        s.uuidGenerator.New(),
		RoomID:    roomID,
		Role:      entities.RoleGM,
		Content:   narration,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to persist GM narration",
			"room_id", roomID,
			"response_length", len(narration),
			"error", err)
	}
}
