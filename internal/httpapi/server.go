// Package httpapi exposes the companion over HTTP for headless hosts: a
// JSON mirror of the REPL plus a websocket chat stream and metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/antoniostano/maya/internal/brain"
	"github.com/antoniostano/maya/internal/memory"
	"github.com/antoniostano/maya/internal/observability"
	"github.com/antoniostano/maya/internal/pipeline"
)

const turnTimeout = 90 * time.Second

var (
	errEmptyText    = errors.New("text is required")
	errInvalidLimit = errors.New("limit must be a positive integer")
)

// Runner is the slice of the pipeline the HTTP surface needs.
type Runner interface {
	RunTurn(ctx context.Context, input string, onDelta brain.DeltaHandler) (*pipeline.Turn, error)
	Reset(ctx context.Context) error
	LastTrace() []string
}

type Server struct {
	runner   Runner
	store    memory.Store
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func New(runner Runner, store memory.Store, metrics *observability.Metrics) *Server {
	return &Server{
		runner:  runner,
		store:   store,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browser connections; non-browser
				// clients without an Origin header are allowed.
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", observability.MetricsHandler())

	r.Get("/api/profile", s.handleProfile)
	r.Get("/api/topics", s.handleTopics)
	r.Get("/api/trace", s.handleTrace)
	r.Post("/api/turn", s.handleTurn)
	r.Post("/api/reset", s.handleReset)

	r.Get("/ws/chat", s.handleWSChat)

	return r
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.Profile(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	limit := 3
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errInvalidLimit)
			return
		}
		limit = n
	}

	topics, err := s.store.RecentTopics(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"topics": topics})
}

func (s *Server) handleTrace(w http.ResponseWriter, _ *http.Request) {
	trace := s.runner.LastTrace()
	if trace == nil {
		trace = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"trace": trace})
}

type turnRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	TurnID       string `json:"turn_id"`
	Language     string `json:"language"`
	Intent       string `json:"intent"`
	Handler      string `json:"handler"`
	Response     string `json:"response"`
	FallbackUsed bool   `json:"fallback_used"`
	Persisted    bool   `json:"persisted"`
	PersistError string `json:"persist_error,omitempty"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, errEmptyText)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	turn, err := s.runner.RunTurn(ctx, req.Text, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, turnToResponse(turn))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type wsEvent struct {
	Type         string `json:"type"` // delta | turn | error
	Text         string `json:"text,omitempty"`
	TurnID       string `json:"turn_id,omitempty"`
	Language     string `json:"language,omitempty"`
	Intent       string `json:"intent,omitempty"`
	Handler      string `json:"handler,omitempty"`
	FallbackUsed bool   `json:"fallback_used,omitempty"`
}

// handleWSChat runs turns over a websocket, streaming generator deltas as
// they arrive and closing each exchange with a full turn event.
func (s *Server) handleWSChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var req turnRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			_ = conn.WriteJSON(wsEvent{Type: "error", Text: "empty text"})
			continue
		}

		ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
		turn, err := s.runner.RunTurn(ctx, req.Text, func(delta string) error {
			return conn.WriteJSON(wsEvent{Type: "delta", Text: delta})
		})
		cancel()
		if err != nil {
			_ = conn.WriteJSON(wsEvent{Type: "error", Text: err.Error()})
			return
		}

		if err := conn.WriteJSON(wsEvent{
			Type:         "turn",
			Text:         turn.ResponseText,
			TurnID:       turn.ID,
			Language:     string(turn.Language),
			Intent:       string(turn.Intent),
			Handler:      string(turn.Handler),
			FallbackUsed: turn.FallbackUsed,
		}); err != nil {
			return
		}
	}
}

func turnToResponse(t *pipeline.Turn) turnResponse {
	resp := turnResponse{
		TurnID:       t.ID,
		Language:     string(t.Language),
		Intent:       string(t.Intent),
		Handler:      string(t.Handler),
		Response:     t.ResponseText,
		FallbackUsed: t.FallbackUsed,
		Persisted:    t.PersistErr == nil,
	}
	if t.PersistErr != nil {
		resp.PersistError = t.PersistErr.Error()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
