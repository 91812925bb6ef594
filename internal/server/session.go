package server

import (
	"encoding/json"
	"io"
	"net/http"

	"bureau/internal/topics"
	"bureau/internal/wizard"
)

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, clientID string) {
	switch r.Method {
	case http.MethodGet:
		s.handleSessionState(w, r, clientID)
	case http.MethodDelete:
		s.handleSessionClear(w, r, clientID)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request, clientID string) {
	state := s.sessions.State(r.Context(), clientID)
	writeJSON(w, http.StatusOK, map[string]any{
		"topic":        state.Topic,
		"slides":       state.Outline,
		"images":       state.Images,
		"export_ready": state.ExportReady,
		"stage":        wizard.NextValidStage(state).String(),
	})
}

// handleSessionClear is the "new mission" reset. It wipes every stored kind
// and requires explicit confirmation so a stray DELETE cannot destroy a
// finished briefing.
func (s *Server) handleSessionClear(w http.ResponseWriter, r *http.Request, clientID string) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "confirm=true is required to start a new mission")
		return
	}
	s.sessions.Clear(r.Context(), clientID)
	s.dropDriver(clientID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

type selectTopicRequest struct {
	TopicID int `json:"topic_id"`
}

func (s *Server) handleSelectTopic(w http.ResponseWriter, r *http.Request, clientID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req selectTopicRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	topic, ok := topics.Get(req.TopicID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown topic")
		return
	}
	s.sessions.SaveTopic(r.Context(), clientID, topic)
	state := s.sessions.State(r.Context(), clientID)
	writeJSON(w, http.StatusOK, map[string]any{
		"topic": topic,
		"stage": wizard.NextValidStage(state).String(),
	})
}
