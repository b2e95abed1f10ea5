package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Mohampouraz/Zanjirvajeh/internal/dict"
	"github.com/Mohampouraz/Zanjirvajeh/internal/wordchain"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	d, err := dict.Load("")
	if err != nil {
		t.Fatalf("load dictionary: %v", err)
	}
	eng := wordchain.NewEngine(d, wordchain.NewSessionStore(), wordchain.NewUserRegistry(), wordchain.Config{}, zap.NewNop())
	return New(eng, zap.NewNop(), opts...)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}

func TestNewGameRequiresSessionID(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/game/new", map[string]string{"mode": "solo"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGameFlow(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/game/new", map[string]any{
		"session_id": "s1", "mode": "solo", "turn_seconds": 30, "starter": "ک",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("new game status = %d body=%s", rec.Code, rec.Body.String())
	}
	var g wordchain.Game
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode game: %v", err)
	}
	if g.CurrentLetter != "ک" || g.Mode != wordchain.ModeSolo {
		t.Fatalf("unexpected game %+v", g)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/game/join", map[string]string{
		"session_id": "s1", "user_id": "u1", "display_name": "سارا",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("join status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/game/submit", map[string]string{
		"session_id": "s1", "user_id": "u1", "word": "کتاب",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d", rec.Code)
	}
	var res wordchain.SubmitResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Status != wordchain.StatusAccepted {
		t.Fatalf("expected ACCEPTED, got %s (%s)", res.Status, res.Reason)
	}
	if res.Game.CurrentLetter != "ب" {
		t.Fatalf("chain letter = %q, want ب", res.Game.CurrentLetter)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/game/state?session_id=s1", nil)
	var st wordchain.StateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(st.Game.History) != 1 || st.Game.Scores["u1"] != 1 {
		t.Fatalf("unexpected state %+v", st.Game)
	}
}

func TestSubmitRejectedStillHTTP200(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, http.MethodPost, "/api/game/new", map[string]any{"session_id": "s1", "starter": "ک"})
	rec := doJSON(t, s, http.MethodPost, "/api/game/submit", map[string]string{
		"session_id": "s1", "user_id": "u1", "word": "با",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rejection must be a 200 payload, got %d", rec.Code)
	}
	var res wordchain.SubmitResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Status != wordchain.StatusRejected || res.Reason != wordchain.ReasonTooShort {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestLeaderboardDisabled(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/leaderboard", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a board, got %d", rec.Code)
	}
}

type staticBoard struct{ users []*wordchain.User }

func (b staticBoard) Top(_ context.Context, _ int) ([]*wordchain.User, error) { return b.users, nil }

func TestLeaderboardReturnsUsers(t *testing.T) {
	s := newTestServer(t, WithBoard(staticBoard{users: []*wordchain.User{{ID: "u1", DisplayName: "سارا", Score: 7}}}))
	rec := doJSON(t, s, http.MethodGet, "/api/leaderboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard status = %d", rec.Code)
	}
	var users []*wordchain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 || users[0].Score != 7 {
		t.Fatalf("unexpected users %+v", users)
	}
}

type captureRecorder struct{ users []*wordchain.User }

func (c *captureRecorder) RecordScore(_ context.Context, u *wordchain.User) error {
	c.users = append(c.users, u)
	return nil
}

func TestAcceptedSubmitMirrorsScore(t *testing.T) {
	rec := &captureRecorder{}
	s := newTestServer(t, WithRecorders(rec))
	doJSON(t, s, http.MethodPost, "/api/game/new", map[string]any{"session_id": "s1", "starter": "ک"})
	doJSON(t, s, http.MethodPost, "/api/game/submit", map[string]string{
		"session_id": "s1", "user_id": "u1", "word": "کتاب",
	})
	if len(rec.users) != 1 {
		t.Fatalf("expected one mirrored record, got %d", len(rec.users))
	}
	if rec.users[0].ID != "u1" || rec.users[0].Score != 1 {
		t.Fatalf("unexpected mirrored user %+v", rec.users[0])
	}
}

func TestStaticIndexServed(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("زنجیره")) {
		t.Fatal("index page missing expected content")
	}
}
