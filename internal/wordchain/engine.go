// Package wordchain implements the turn-based Persian word-chain game:
// per-session state, turn rotation, the ordered validation pipeline,
// scoring, and lazy turn-timeout handling.
//
// Turn expiry is detected only when the next submission arrives; a session
// with no further submissions stays "expired but unadvanced" indefinitely;
// there is no background timer.
package wordchain

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mohampouraz/Zanjirvajeh/internal/dict"
	"github.com/Mohampouraz/Zanjirvajeh/internal/persian"
)

// easyStarters is the curated subset of the alphabet used for random
// starting letters. All of these open many dictionary words; rare letters
// like ث or ظ would stall a fresh game on turn one.
var easyStarters = []string{"ا", "ب", "پ", "ت", "د", "ر", "س", "ش", "ک", "گ", "م", "ن"}

// Config bounds the engine's tunables. Zero values fall back to defaults.
type Config struct {
	MinTurnSeconds     int
	MaxTurnSeconds     int
	DefaultTurnSeconds int
	MinWordLetters     int
	LongWordLetters    int
	StreakLength       int
}

func (c Config) withDefaults() Config {
	if c.MinTurnSeconds <= 0 {
		c.MinTurnSeconds = 5
	}
	if c.MaxTurnSeconds <= 0 {
		c.MaxTurnSeconds = 60
	}
	if c.DefaultTurnSeconds <= 0 {
		c.DefaultTurnSeconds = 30
	}
	if c.MinWordLetters <= 0 {
		c.MinWordLetters = 3
	}
	if c.LongWordLetters <= 0 {
		c.LongWordLetters = 6
	}
	if c.StreakLength <= 0 {
		c.StreakLength = 3
	}
	return c
}

// Engine owns session lifecycle, turn rotation, validation and scoring.
// It performs no I/O and formats no user-facing text; adapters do both.
type Engine struct {
	dict   *dict.Dictionary
	store  *SessionStore
	users  *UserRegistry
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Engine)

// WithClock overrides the engine's time source. Tests use it to move a
// session past its turn deadline without sleeping.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(d *dict.Dictionary, store *SessionStore, users *UserRegistry, cfg Config, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		dict:   d,
		store:  store,
		users:  users,
		cfg:    cfg.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Users exposes the registry handle for adapters that list scores.
func (e *Engine) Users() *UserRegistry { return e.users }

// Config returns the effective settings after defaulting.
func (e *Engine) Config() Config { return e.cfg }

// NewGame replaces the session's game and clears its used-word set.
// turnSeconds is clamped to the configured bounds; a missing or unusable
// starter letter is replaced by a random easy one. User records survive.
func (e *Engine) NewGame(sessionID string, mode Mode, turnSeconds int, starter string) *Game {
	sess := e.store.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := e.newGameLocked(sess, sessionID, mode, turnSeconds, starter)
	e.logger.Info("game_create",
		zap.String("session_id", sessionID),
		zap.String("game_id", g.ID),
		zap.String("mode", string(g.Mode)),
		zap.Int("turn_seconds", g.TurnSeconds),
		zap.String("letter", g.CurrentLetter),
	)
	return cloneGame(g)
}

// Join registers the user in the session's game. The first joiner becomes
// the current player and the turn clock starts from that moment.
func (e *Engine) Join(sessionID, userID, displayName string) *Game {
	sess := e.store.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := e.ensureGameLocked(sess, sessionID)
	e.users.Ensure(userID, displayName)

	if !containsPlayer(g.Players, userID) {
		g.Players = append(g.Players, userID)
	}
	if _, ok := g.Scores[userID]; !ok {
		g.Scores[userID] = 0
	}
	if g.CurrentPlayerID == "" {
		g.CurrentPlayerID = userID
		now := e.now()
		g.TurnStartedAt = now
		g.ExpiresAt = now.Add(time.Duration(g.TurnSeconds) * time.Second)
	}
	e.logger.Info("game_join",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
		zap.Int("players", len(g.Players)),
	)
	return cloneGame(g)
}

// Submit runs the turn state machine for one submission attempt.
func (e *Engine) Submit(sessionID, userID, rawWord string) *SubmitResult {
	sess := e.store.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := e.ensureGameLocked(sess, sessionID)
	now := e.now()

	// Lazy expiry: the lapsed turn is consumed without evaluating the word.
	if now.After(g.ExpiresAt) {
		e.advanceTurn(g, "")
		e.logger.Info("turn_timeout",
			zap.String("session_id", sessionID),
			zap.String("user_id", userID),
			zap.Int("round", g.Round),
		)
		return &SubmitResult{Status: StatusTimeout, Game: cloneGame(g)}
	}

	if g.CurrentPlayerID != "" && g.CurrentPlayerID != userID {
		return &SubmitResult{Status: StatusNotYourTurn, Game: cloneGame(g)}
	}

	normalized := persian.Normalize(rawWord)
	valid, reason, delta, next := e.validateWord(sess, g, normalized)

	// Ownership was soft until now; a scoring submitter must be a player so
	// the scores-keys-subset-of-players invariant holds.
	if valid && !containsPlayer(g.Players, userID) {
		g.Players = append(g.Players, userID)
		g.Scores[userID] = 0
	}
	if valid && e.streakHitLocked(g, userID) {
		delta++
	}

	entry := SubmissionEntry{
		PlayerID:   userID,
		Word:       rawWord,
		Normalized: normalized,
		Valid:      valid,
		Score:      delta,
		NextLetter: g.CurrentLetter,
		At:         now,
	}
	if valid {
		entry.NextLetter = next
	}
	g.History = append(g.History, entry)

	if !valid {
		e.advanceTurn(g, "")
		e.logger.Info("word_submit",
			zap.String("session_id", sessionID),
			zap.String("user_id", userID),
			zap.String("status", string(StatusRejected)),
			zap.String("reason", string(reason)),
		)
		out := entry
		return &SubmitResult{Status: StatusRejected, Reason: reason, Game: cloneGame(g), Entry: &out}
	}

	sess.used[normalized] = struct{}{}
	g.Scores[userID] += delta
	e.users.SetScore(userID, g.Scores[userID])
	g.CurrentLetter = next
	e.advanceTurn(g, "")

	e.logger.Info("word_submit",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
		zap.String("status", string(StatusAccepted)),
		zap.String("word", normalized),
		zap.Int("score", delta),
		zap.String("next_letter", next),
	)
	out := entry
	return &SubmitResult{Status: StatusAccepted, Game: cloneGame(g), Entry: &out}
}

// State returns a read-only snapshot. Calling it twice without an
// intervening mutation yields identical game/users (aside from Now).
func (e *Engine) State(sessionID string) *StateResult {
	sess := e.store.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := e.ensureGameLocked(sess, sessionID)
	return &StateResult{
		Game:  cloneGame(g),
		Users: e.users.Snapshot(g.Players),
		Now:   e.now(),
	}
}

// validateWord applies the checks in strict order; the first failure wins.
func (e *Engine) validateWord(sess *session, g *Game, normalized string) (valid bool, reason Reason, score int, next string) {
	letters := persian.LetterCount(normalized)
	if normalized == "" || letters < e.cfg.MinWordLetters {
		return false, ReasonTooShort, 0, ""
	}
	if persian.FirstLetter(normalized) != g.CurrentLetter {
		return false, ReasonWrongLetter, 0, ""
	}
	if !e.dict.Contains(normalized) {
		return false, ReasonNotInDictionary, 0, ""
	}
	if _, used := sess.used[normalized]; used {
		return false, ReasonAlreadyUsed, 0, ""
	}
	score = 1
	if letters >= e.cfg.LongWordLetters {
		score++
	}
	return true, "", score, persian.LastLetter(normalized)
}

// streakHitLocked reports whether the submission being recorded completes a
// run of StreakLength consecutive valid words by the same player. Solo mode
// only; the entry itself counts as the last element of the run.
func (e *Engine) streakHitLocked(g *Game, userID string) bool {
	if g.Mode != ModeSolo {
		return false
	}
	need := e.cfg.StreakLength - 1
	if len(g.History) < need {
		return false
	}
	for i := len(g.History) - need; i < len(g.History); i++ {
		prev := g.History[i]
		if !prev.Valid || prev.PlayerID != userID {
			return false
		}
	}
	return true
}

// advanceTurn rotates the current player round-robin in join order,
// increments the round and restarts the turn clock. forced, when set,
// overrides the computed successor. No-op without players.
func (e *Engine) advanceTurn(g *Game, forced string) {
	if len(g.Players) == 0 {
		return
	}
	next := forced
	if next == "" {
		idx := -1
		for i, p := range g.Players {
			if p == g.CurrentPlayerID {
				idx = i
				break
			}
		}
		next = g.Players[(idx+1)%len(g.Players)]
	}
	g.CurrentPlayerID = next
	g.Round++
	now := e.now()
	g.TurnStartedAt = now
	g.ExpiresAt = now.Add(time.Duration(g.TurnSeconds) * time.Second)
}

func (e *Engine) ensureGameLocked(sess *session, sessionID string) *Game {
	if sess.game == nil {
		g := e.newGameLocked(sess, sessionID, ModeTeam, e.cfg.DefaultTurnSeconds, "")
		e.logger.Info("game_create",
			zap.String("session_id", sessionID),
			zap.String("game_id", g.ID),
			zap.String("reason", "lazy_default"),
		)
	}
	return sess.game
}

func (e *Engine) newGameLocked(sess *session, sessionID string, mode Mode, turnSeconds int, starter string) *Game {
	seconds := turnSeconds
	if seconds <= 0 {
		seconds = e.cfg.DefaultTurnSeconds
	}
	if seconds < e.cfg.MinTurnSeconds {
		seconds = e.cfg.MinTurnSeconds
	}
	if seconds > e.cfg.MaxTurnSeconds {
		seconds = e.cfg.MaxTurnSeconds
	}

	letter := persian.FirstLetter(starter)
	if letter == "" {
		letter = randomStarter()
	}

	now := e.now()
	g := &Game{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		Mode:          ParseMode(string(mode)),
		Round:         1,
		CurrentLetter: letter,
		TurnSeconds:   seconds,
		TurnStartedAt: now,
		ExpiresAt:     now.Add(time.Duration(seconds) * time.Second),
		Players:       []string{},
		Scores:        make(map[string]int),
		History:       []SubmissionEntry{},
		CreatedAt:     now,
	}
	sess.game = g
	sess.used = make(map[string]struct{})
	return g
}

func containsPlayer(players []string, id string) bool {
	for _, p := range players {
		if p == id {
			return true
		}
	}
	return false
}

func randomStarter() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(easyStarters))))
	if err != nil {
		return easyStarters[0]
	}
	return easyStarters[n.Int64()]
}
