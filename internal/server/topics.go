package server

import (
	"net/http"

	"bureau/internal/topics"
	"bureau/pkg/domain"
)

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	difficulty := domain.Difficulty(r.URL.Query().Get("difficulty"))
	query := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, map[string]any{
		"topics": topics.List(difficulty, query),
	})
}
