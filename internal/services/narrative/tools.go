package narrative

import (
	"context"
	"encoding/json"

	"github.com/tavernkeep/gamemaster/internal/clients/llm"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

const toolUpdateCharacterStats = "update_character_stats"

// statsArguments is the argument payload of update_character_stats.
// Numbers come back from the model as JSON numbers, so float64.
type statsArguments struct {
	HPChange *float64 `json:"hp_change,omitempty"`
	XPGain   *float64 `json:"xp_gain,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// characterStatsTool is the single tool schema offered to the model
func characterStatsTool() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        toolUpdateCharacterStats,
			Description: "Apply a hit point change or experience gain to the active character. Negative hp_change is damage, positive is healing.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"hp_change": map[string]any{
						"type":        "number",
						"description": "Signed HP delta. Negative for damage, positive for healing.",
					},
					"xp_gain": map[string]any{
						"type":        "number",
						"description": "Experience points awarded. Must be positive.",
					},
					"reason": map[string]any{
						"type":        "string",
						"description": "Short reason for the change.",
					},
				},
			},
		},
	}
}

// executeToolCalls applies the model's tool calls against the active
// character. Every failure mode here is non-fatal: the narration is
// still valid and must be persisted, so bad calls are logged and
// skipped rather than propagated.
func (s *service) executeToolCalls(ctx context.Context, roomID, characterID string, calls []llm.ToolCall) {
	if len(calls) == 0 {
		return
	}

	if characterID == "" {
		s.logger.Warn("tool calls received but no active character resolved, skipping",
			"room_id", roomID,
			"tool_calls", len(calls))
		return
	}

	for _, call := range calls {
		if call.Name != toolUpdateCharacterStats {
			continue
		}

		var args statsArguments
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			s.logger.Warn("skipping tool call with malformed arguments",
				"room_id", roomID,
				"tool", call.Name,
				"error", err)
			continue
		}

		if err := s.applyStats(ctx, characterID, &args); err != nil {
			s.logger.Warn("tool call execution failed",
				"room_id", roomID,
				"character_id", characterID,
				"tool", call.Name,
				"error", err)
		}
	}
}

func (s *service) applyStats(ctx context.Context, characterID string, args *statsArguments) error {
	char, err := s.characterRepo.Get(ctx, characterID)
	if err != nil {
		return err
	}

	changed := false

	if args.HPChange != nil && *args.HPChange != 0 {
		char.AdjustHP(int(*args.HPChange))
		changed = true
	}

	if args.XPGain != nil && *args.XPGain > 0 {
		char.Experience += int(*args.XPGain)
		changed = true
	}

	if !changed {
		return nil
	}

	if err := s.characterRepo.Update(ctx, char); err != nil {
		return apperr.Wrap(err, "failed to persist stat update")
	}

	s.logger.Info("character stats updated",
		"character_id", characterID,
		"hp", char.CurrentHP,
		"xp", char.Experience,
		"reason", args.Reason)

	return nil
}
