package api

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Store: "ok"}

	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Warn("store ping failed", "error", err)
			resp.Status = "degraded"
			resp.Store = "unreachable"
			h.writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}
