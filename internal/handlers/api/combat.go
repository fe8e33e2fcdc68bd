package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
	"github.com/tavernkeep/gamemaster/internal/services/combat"
)

type combatActionRequest struct {
	ActionType     string `json:"actionType"`
	RoomID         string `json:"roomId"`
	ActorID        string `json:"actorId"`
	TargetID       string `json:"targetId,omitempty"`
	SpellLevel     int    `json:"spellLevel,omitempty"`
	WeaponOverride string `json:"weaponOverride,omitempty"`
}

type combatActionResponse struct {
	Success   bool                     `json:"success"`
	Log       *entities.CombatLogEntry `json:"log"`
	Narrative *string                  `json:"narrative"`
	Timestamp time.Time                `json:"timestamp"`
}

func (h *Handler) handleCombatAction(w http.ResponseWriter, r *http.Request) {
	var req combatActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.InvalidArgumentf("invalid request body: %v", err))
		return
	}

	result, err := h.combatService.ResolveAction(r.Context(), &combat.ActionInput{
		RoomID:         req.RoomID,
		ActorID:        req.ActorID,
		Action:         entities.ActionType(req.ActionType),
		TargetID:       req.TargetID,
		SpellLevel:     req.SpellLevel,
		WeaponOverride: req.WeaponOverride,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Narrative is null when no narration was produced, never ""
	var narrative *string
	if result.Narrative != "" {
		narrative = &result.Narrative
	}

	h.writeJSON(w, http.StatusOK, combatActionResponse{
		Success:   true,
		Log:       result.Log,
		Narrative: narrative,
		Timestamp: result.Timestamp,
	})
}
