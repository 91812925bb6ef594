package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"bureau/internal/chat"
	"bureau/internal/util"
	"bureau/pkg/ai"
	"bureau/pkg/domain"
)

type chatRequest struct {
	Messages []domain.ConversationMessage `json:"messages"`
	// AutoGenerate skips the conversational workshop and asks for the full
	// slide structure in one turn.
	AutoGenerate bool `json:"auto_generate"`
}

// handleChat streams one workshop turn as server-sent events. Each text
// fragment arrives as data:{"text":...}; a parsed slide structure arrives as
// data:{"slides":[...]} and is persisted before the data: [DONE] sentinel.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, clientID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AutoGenerate && len(req.Messages) == 0 {
		req.Messages = []domain.ConversationMessage{{Role: "user", Content: chat.AutoGeneratePrompt}}
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages is required")
		return
	}
	if req.Messages[len(req.Messages)-1].Role != "user" {
		writeError(w, http.StatusBadRequest, "last message must be from the user")
		return
	}

	var topic *domain.Topic
	if t, ok := s.sessions.Topic(r.Context(), clientID); ok {
		topic = &t
	}

	events, err := s.driverFor(clientID).Send(r.Context(), req.Messages, topic)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrStreamInFlight):
			writeError(w, http.StatusConflict, "a transmission is already in progress")
		case errors.Is(err, ai.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			util.LoggerFromContext(r.Context()).Error("chat stream failed to start", "err", err)
			writeError(w, http.StatusBadGateway, "transmission failed")
		}
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	log := util.LoggerFromContext(r.Context())
	sent := 0
	for ev := range events {
		switch ev.Type {
		case chat.EventMessageUpdated:
			// The driver carries the full running message; the wire
			// carries only the new suffix.
			if len(ev.Message) > sent {
				writeSSE(w, map[string]string{"text": ev.Message[sent:]})
				sent = len(ev.Message)
			}
		case chat.EventOutlineReady:
			s.sessions.SaveOutline(r.Context(), clientID, ev.Outline)
			writeSSE(w, map[string]any{"slides": ev.Outline})
		case chat.EventMalformed:
			log.Warn("slide structure failed to parse", "err", ev.Err)
			writeSSE(w, map[string]string{"error": "slide structure could not be read; edit it manually in the workshop"})
		case chat.EventTransmissionFailed:
			log.Error("chat transmission failed", "err", ev.Err)
			writeSSE(w, map[string]string{"error": "transmission failed"})
		case chat.EventDone:
			fmt.Fprint(w, "data: [DONE]\n\n")
		}
		flusher.Flush()
	}
}

func writeSSE(w io.Writer, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
