package handlers

import (
	"net/http"

	"github.com/ntumia/mediahub/internal/api/dto"
	"github.com/ntumia/mediahub/internal/api/middleware"
	"github.com/ntumia/mediahub/internal/stats"
)

type StatsHandler struct {
	statsService *stats.Service
}

func NewStatsHandler(statsService *stats.Service) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Platform serves the cached platform-wide snapshot. Admin only; routed
// behind RequireRole.
func (h *StatsHandler) Platform(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.statsService.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// Organization serves the caller's own organization figures.
func (h *StatsHandler) Organization(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	snapshot, err := h.statsService.ForOrganization(r.Context(), orgID)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
