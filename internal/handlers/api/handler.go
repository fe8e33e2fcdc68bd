package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tavernkeep/gamemaster/internal/services/combat"
	"github.com/tavernkeep/gamemaster/internal/services/narrative"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler routes HTTP requests to the combat and narrative services
type Handler struct {
	combatService    combat.Service
	narrativeService narrative.Service
	pinger           Pinger
	logger           *slog.Logger
}

// HandlerConfig holds configuration for the API handler
type HandlerConfig struct {
	CombatService    combat.Service
	NarrativeService narrative.Service
	Pinger           Pinger // optional, healthz reports ok without it
	Logger           *slog.Logger
}

// NewHandler creates a new API handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg.CombatService == nil {
		panic("combat service is required")
	}
	if cfg.NarrativeService == nil {
		panic("narrative service is required")
	}

	h := &Handler{
		combatService:    cfg.CombatService,
		narrativeService: cfg.NarrativeService,
		pinger:           cfg.Pinger,
		logger:           cfg.Logger,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	return h
}

// Routes returns the handler's route table wrapped in request logging
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/combat/action", h.handleCombatAction)
	mux.HandleFunc("POST /api/gm/turn", h.handleGMTurn)
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	return h.withRequestLogging(mux)
}
