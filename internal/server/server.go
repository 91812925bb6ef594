// Package server exposes the Bureau briefing wizard over HTTP: topic
// selection, the streamed slide workshop, evidence fabrication, stage
// navigation and dossier export, all keyed by a per-browser session cookie.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"bureau/internal/archive"
	"bureau/internal/chat"
	"bureau/internal/ratelimit"
	"bureau/internal/session"
	"bureau/internal/util"
	"bureau/pkg/ai"
)

const sessionCookieName = "bureau_session"

// Config wires required dependencies for the HTTP server.
type Config struct {
	Sessions       *session.Store
	Streamer       ai.TextStreamer
	Images         ai.ImageGenerator
	Headlines      *ai.HeadlineWriter
	ImageLimiter   *ratelimit.FixedWindowLimiter
	Archive        archive.Store
	SitePassword   string
	GateSecret     []byte
	TrustedProxies *util.TrustedProxies
	StaticDir      string
	HTTPClient     *http.Client
}

// Server exposes HTTP endpoints for the briefing wizard.
type Server struct {
	sessions     *session.Store
	streamer     ai.TextStreamer
	images       ai.ImageGenerator
	headlines    *ai.HeadlineWriter
	imageLimiter *ratelimit.FixedWindowLimiter
	archive      archive.Store
	gate         *gate
	httpClient   *http.Client
	mux          *http.ServeMux

	mu      sync.Mutex
	drivers map[string]*chat.Driver
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	s := &Server{
		sessions:     cfg.Sessions,
		streamer:     cfg.Streamer,
		images:       cfg.Images,
		headlines:    cfg.Headlines,
		imageLimiter: cfg.ImageLimiter,
		archive:      cfg.Archive,
		gate:         newGate(cfg.SitePassword, cfg.GateSecret, cfg.TrustedProxies),
		httpClient:   httpClient,
		mux:          http.NewServeMux(),
		drivers:      make(map[string]*chat.Driver),
	}
	s.routes(cfg.StaticDir)
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog("bureau", s.gate.wrap(s.mux)))))
}

func (s *Server) routes(staticDir string) {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/topics", s.handleTopics)
	s.mux.Handle("/api/session", s.withClient(s.handleSession))
	s.mux.Handle("/api/session/topic", s.withClient(s.handleSelectTopic))
	s.mux.Handle("/api/stages/", s.withClient(s.handleStageEntry))
	s.mux.Handle("/api/chat", s.withClient(s.handleChat))
	s.mux.Handle("/api/evidence/images", s.withClient(s.handleEvidenceImage))
	s.mux.Handle("/api/evidence/convert", s.withClient(s.handleEvidenceConvert))
	s.mux.Handle("/api/export", s.withClient(s.handleExport))

	if staticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type clientHandler func(http.ResponseWriter, *http.Request, string)

// withClient ensures every caller carries a session cookie and hands the
// session id to the wrapped handler.
func (s *Server) withClient(next clientHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := ""
		if c, err := r.Cookie(sessionCookieName); err == nil {
			if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
				clientID = c.Value
			}
		}
		if clientID == "" {
			clientID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    clientID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next(w, r, clientID)
	})
}

// driverFor returns the streaming driver for one session, creating it on
// first use. The driver enforces the one-stream-per-session rule.
func (s *Server) driverFor(clientID string) *chat.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[clientID]
	if !ok {
		d = chat.NewDriver(s.streamer)
		s.drivers[clientID] = d
	}
	return d
}

// dropDriver releases a session's driver so cleared sessions do not leave
// entries behind for the lifetime of the process.
func (s *Server) dropDriver(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drivers, clientID)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
