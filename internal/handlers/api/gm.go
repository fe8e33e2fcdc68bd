package api

import (
	"encoding/json"
	"net/http"

	"github.com/tavernkeep/gamemaster/internal/clients/llm"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
	"github.com/tavernkeep/gamemaster/internal/services/narrative"
)

type gmTurnRequest struct {
	RoomID         string            `json:"roomId"`
	Messages       []llm.ChatMessage `json:"messages,omitempty"`
	CharacterID    string            `json:"characterId,omitempty"`
	CharacterName  string            `json:"characterName,omitempty"`
	IsSessionStart bool              `json:"isSessionStart,omitempty"`
}

// flushWriter flushes after every write so completion chunks reach the
// client as they arrive instead of sitting in the response buffer
type flushWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if fw.f != nil {
		fw.f.Flush()
	}
	return n, err
}

func (h *Handler) handleGMTurn(w http.ResponseWriter, r *http.Request) {
	var req gmTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.InvalidArgumentf("invalid request body: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	stream := &flushWriter{w: w}
	if f, ok := w.(http.Flusher); ok {
		stream.f = f
	}

	result, err := h.narrativeService.RunTurn(r.Context(), &narrative.TurnInput{
		RoomID:         req.RoomID,
		Messages:       req.Messages,
		CharacterID:    req.CharacterID,
		CharacterName:  req.CharacterName,
		IsSessionStart: req.IsSessionStart,
	}, stream)
	if err != nil {
		// Nothing has been streamed when the turn fails up front, so a
		// JSON error response is still well-formed for the client
		h.writeError(w, err)
		return
	}

	h.logger.Info("gm turn complete",
		"room_id", req.RoomID,
		"narration_length", len(result.Narration),
		"tool_calls", result.ToolCallCount,
		"combat_requested", result.CombatRequested,
		"shop_updated", result.ShopUpdated)
}
