package server

import (
	"net/http"
	"strings"

	"bureau/internal/wizard"
)

// handleStageEntry answers whether the session may enter a wizard stage.
// A missing prerequisite is a navigation correction, not an error: the
// response is always 200 and carries the stage to go to instead.
func (s *Server) handleStageEntry(w http.ResponseWriter, r *http.Request, clientID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/stages/")
	stage, ok := wizard.ParseStage(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown stage")
		return
	}
	state := s.sessions.State(r.Context(), clientID)
	allowed, redirect := wizard.Entry(stage, state)
	if allowed {
		writeJSON(w, http.StatusOK, map[string]any{"allowed": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"allowed":  false,
		"redirect": redirect.String(),
	})
}
