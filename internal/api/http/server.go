// Package apihttp is the control surface of the player daemon: REST
// endpoints for status and commands, a WebSocket hub streaming core
// events, and the metrics/health plumbing. Commands never touch the
// player context; they go through the input queue and are picked up by
// the loop.
package apihttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
	"playercore/internal/player"
	"playercore/internal/services/input"
)

// PlayerControl is the read-side surface of the core the API needs.
type PlayerControl interface {
	StatusSnapshot() player.Status
	ChaptersSnapshot() []domain.Chapter
	Dispatch(fn func())
	SetPlaylist(entries []domain.PlaylistEntry)
}

type Server struct {
	logger  *slog.Logger
	player  PlayerControl
	input   *input.Queue
	resume  ports.ResumeStore
	wsHub   *wsHub
	handler http.Handler
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

func WithResumeStore(store ports.ResumeStore) ServerOption {
	return func(s *Server) { s.resume = store }
}

func NewServer(ctl PlayerControl, queue *input.Queue, opts ...ServerOption) *Server {
	s := &Server{player: ctl, input: queue}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.wsHub = newWSHub(s.logger)
	go s.wsHub.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/command", s.handleCommand)
	mux.HandleFunc("/api/v1/playlist", s.handlePlaylist)
	mux.HandleFunc("/api/v1/chapters", s.handleChapters)
	mux.HandleFunc("/api/v1/resume", s.handleResume)
	mux.HandleFunc("/api/v1/resume/", s.handleResumeByID)
	mux.HandleFunc("/api/v1/events", s.handleWS)
	mux.HandleFunc("/internal/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "playercore",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/internal/health"
		}),
	)
	s.handler = recoveryMiddleware(s.logger, rateLimitMiddleware(100, 200, metricsMiddleware(corsMiddleware(traced))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close shuts down the WebSocket hub, disconnecting all clients.
func (s *Server) Close() {
	if s.wsHub != nil {
		s.wsHub.Close()
	}
}

// PublishEvent forwards a core event to WebSocket clients. Called from
// the loop goroutine; must not block.
func (s *Server) PublishEvent(event domain.Event, data interface{}) {
	s.wsHub.BroadcastEvent(event, data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	writeJSON(w, http.StatusOK, s.player.StatusSnapshot())
}

type commandRequest struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "command name is required")
		return
	}
	s.input.Push(ports.Command{Name: req.Name, Args: req.Args})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

type playlistRequest struct {
	Entries []domain.PlaylistEntry `json:"entries"`
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "entries must not be empty")
		return
	}
	for _, e := range req.Entries {
		if strings.TrimSpace(string(e.MediaID)) == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "entry mediaId is required")
			return
		}
	}
	entries := req.Entries
	s.player.Dispatch(func() {
		s.player.SetPlaylist(entries)
	})
	writeJSON(w, http.StatusAccepted, map[string]int{"entries": len(entries)})
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	chapters := s.player.ChaptersSnapshot()
	if chapters == nil {
		chapters = []domain.Chapter{}
	}
	writeJSON(w, http.StatusOK, chapters)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if s.resume == nil {
		writeError(w, http.StatusNotFound, "not_found", "resume store not configured")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	positions, err := s.resume.List(r.Context(), 50)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if positions == nil {
		positions = []domain.ResumePosition{}
	}
	writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handleResumeByID(w http.ResponseWriter, r *http.Request) {
	if s.resume == nil {
		writeError(w, http.StatusNotFound, "not_found", "resume store not configured")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/resume/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "media id is required")
		return
	}
	switch r.Method {
	case http.MethodGet:
		pos, err := s.resume.Get(r.Context(), domain.MediaID(id))
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pos)
	case http.MethodDelete:
		if err := s.resume.Delete(r.Context(), domain.MediaID(id)); err != nil {
			writeRepoError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET or DELETE")
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	client := &wsClient{hub: s.wsHub, conn: conn, send: make(chan []byte, 32)}
	s.wsHub.register <- client
	go client.writePump()
	go client.readPump()
}
