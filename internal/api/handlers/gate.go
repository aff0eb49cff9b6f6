package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ntumia/mediahub/internal/api/dto"
	"github.com/ntumia/mediahub/internal/api/middleware"
	"github.com/ntumia/mediahub/internal/gate"
	"github.com/ntumia/mediahub/internal/policy"
)

// GateHandler exposes route admission decisions so clients can resolve
// navigation before rendering. Runs behind OptionalAuth: an absent or
// invalid token is an unauthenticated session, never an error.
type GateHandler struct{}

func NewGateHandler() *GateHandler {
	return &GateHandler{}
}

type GateResponse struct {
	Outcome  string `json:"outcome"`
	Location string `json:"location,omitempty"`
}

func (h *GateHandler) Decide(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Path is required"})
		return
	}

	session := gate.Session{Phase: gate.PhaseUnauthenticated}
	if userID := middleware.GetUserID(r.Context()); userID != uuid.Nil {
		session = gate.Session{
			Phase: gate.PhaseAuthenticated,
			Role:  policy.Role(middleware.GetUserRole(r.Context())),
		}
	}

	decision := gate.Decide(session, path)

	writeJSON(w, http.StatusOK, GateResponse{
		Outcome:  outcomeName(decision.Outcome),
		Location: decision.Location,
	})
}

func outcomeName(o gate.Outcome) string {
	switch o {
	case gate.Render:
		return "render"
	case gate.Redirect:
		return "redirect"
	default:
		return "defer"
	}
}
