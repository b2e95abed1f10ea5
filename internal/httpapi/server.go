// Package httpapi serves the word-chain game over HTTP: a small JSON API,
// a live websocket state feed, and an embedded single-page client.
package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Mohampouraz/Zanjirvajeh/internal/wordchain"
)

//go:embed static
var staticFiles embed.FS

// TopLister serves GET /api/leaderboard. Optional.
type TopLister interface {
	Top(ctx context.Context, n int) ([]*wordchain.User, error)
}

type Server struct {
	r         *chi.Mux
	engine    *wordchain.Engine
	board     TopLister
	recorders []wordchain.ScoreRecorder
	hub       *hub
	logger    *zap.Logger
}

type Option func(*Server)

func WithBoard(b TopLister) Option {
	return func(s *Server) { s.board = b }
}

// WithRecorders mirrors updated user records after accepted submissions.
func WithRecorders(recs ...wordchain.ScoreRecorder) Option {
	return func(s *Server) { s.recorders = append(s.recorders, recs...) }
}

func New(engine *wordchain.Engine, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{r: chi.NewRouter(), engine: engine, logger: logger}
	s.hub = newHub(logger)
	for _, opt := range opts {
		opt(s)
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Route("/api", func(api chi.Router) {
		api.Use(chimw.Timeout(10 * time.Second))
		api.Post("/game/new", s.handleNewGame)
		api.Post("/game/join", s.handleJoin)
		api.Post("/game/submit", s.handleSubmit)
		api.Get("/game/state", s.handleState)
		api.Get("/leaderboard", s.handleLeaderboard)
	})
	s.r.Get("/api/sessions/{sessionID}/ws", s.handleWS)

	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.r.Handle("/*", http.FileServer(http.FS(sub)))

	return s
}

func (s *Server) Router() chi.Router { return s.r }

func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

type newGameReq struct {
	SessionID   string `json:"session_id"`
	Mode        string `json:"mode"`
	TurnSeconds int    `json:"turn_seconds"`
	Starter     string `json:"starter"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "session_id required")
		return
	}
	g := s.engine.NewGame(req.SessionID, wordchain.ParseMode(req.Mode), req.TurnSeconds, req.Starter)
	s.broadcast(req.SessionID)
	writeJSON(w, http.StatusOK, g)
}

type joinReq struct {
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "session_id and user_id required")
		return
	}
	s.engine.Users().Ensure(req.UserID, req.DisplayName)
	g := s.engine.Join(req.SessionID, req.UserID, req.DisplayName)
	s.broadcast(req.SessionID)
	writeJSON(w, http.StatusOK, g)
}

type submitReq struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Word      string `json:"word"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "session_id and user_id required")
		return
	}
	res := s.engine.Submit(req.SessionID, req.UserID, req.Word)
	if res.Status == wordchain.StatusAccepted {
		s.mirrorScore(r.Context(), req.UserID)
	}
	s.broadcast(req.SessionID)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id required")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.State(sessionID))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.board == nil {
		writeError(w, http.StatusNotFound, "leaderboard disabled")
		return
	}
	users, err := s.board.Top(r.Context(), 10)
	if err != nil {
		s.logger.Warn("leaderboard_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	if users == nil {
		users = []*wordchain.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if strings.TrimSpace(sessionID) == "" {
		writeError(w, http.StatusBadRequest, "session id required")
		return
	}
	s.hub.serveWS(w, r, sessionID, s.engine.State(sessionID))
}

func (s *Server) broadcast(sessionID string) {
	s.hub.broadcast(sessionID, s.engine.State(sessionID))
}

func (s *Server) mirrorScore(ctx context.Context, userID string) {
	if len(s.recorders) == 0 {
		return
	}
	u := s.engine.Users().Get(userID)
	if u == nil {
		return
	}
	for _, rec := range s.recorders {
		if err := rec.RecordScore(ctx, u); err != nil {
			s.logger.Warn("score_mirror_error", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
