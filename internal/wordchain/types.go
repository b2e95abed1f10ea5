package wordchain

import (
	"context"
	"time"
)

// Mode selects the scoring rules for a game.
type Mode string

const (
	ModeTeam Mode = "team"
	ModeSolo Mode = "solo"
)

// ParseMode maps free-form input to a Mode, defaulting to team play.
func ParseMode(s string) Mode {
	if s == string(ModeSolo) {
		return ModeSolo
	}
	return ModeTeam
}

// Game is the per-session state. It is replaced wholesale by a "new game"
// request and otherwise lives for the process lifetime.
type Game struct {
	ID              string         `json:"id"`
	SessionID       string         `json:"session_id"`
	Mode            Mode           `json:"mode"`
	Round           int            `json:"round"`
	CurrentLetter   string         `json:"current_letter"`
	TurnSeconds     int            `json:"turn_seconds"`
	TurnStartedAt   time.Time      `json:"turn_started_at"`
	ExpiresAt       time.Time      `json:"expires_at"`
	CurrentPlayerID string         `json:"current_player_id,omitempty"`
	Players         []string       `json:"players"`
	Scores          map[string]int `json:"scores"`
	History         []SubmissionEntry `json:"history"`
	CreatedAt       time.Time      `json:"created_at"`
}

// SubmissionEntry records one submission attempt. Immutable once appended.
type SubmissionEntry struct {
	PlayerID   string    `json:"player_id"`
	Word       string    `json:"word"`
	Normalized string    `json:"normalized"`
	Valid      bool      `json:"valid"`
	Score      int       `json:"score"`
	NextLetter string    `json:"next_letter"`
	At         time.Time `json:"at"`
}

// User is a cross-session identity record. It is not scoped per session and
// is not reset by starting a new game.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Reason discriminates validation failures.
type Reason string

const (
	ReasonTooShort        Reason = "too_short"
	ReasonWrongLetter     Reason = "wrong_letter"
	ReasonNotInDictionary Reason = "not_in_dictionary"
	ReasonAlreadyUsed     Reason = "already_used"
)

// Status discriminates submit outcomes. The engine reports failures as
// values, never as error types.
type Status string

const (
	StatusAccepted    Status = "ACCEPTED"
	StatusRejected    Status = "REJECTED"
	StatusNotYourTurn Status = "NOT_YOUR_TURN"
	StatusTimeout     Status = "TIMEOUT"
)

// SubmitResult is the discriminated outcome of a Submit call.
// Entry is nil for TIMEOUT and NOT_YOUR_TURN, where no word was evaluated.
type SubmitResult struct {
	Status Status           `json:"status"`
	Reason Reason           `json:"reason,omitempty"`
	Game   *Game            `json:"game"`
	Entry  *SubmissionEntry `json:"entry,omitempty"`
}

// StateResult is a read-only snapshot of a session.
type StateResult struct {
	Game  *Game     `json:"game"`
	Users []*User   `json:"users"`
	Now   time.Time `json:"now"`
}

// ScoreRecorder receives best-effort mirrors of updated user records.
// Implementations live in the adapters' world (Redis leaderboard, Postgres
// repository); the engine itself never calls out.
type ScoreRecorder interface {
	RecordScore(ctx context.Context, user *User) error
}

func cloneGame(g *Game) *Game {
	if g == nil {
		return nil
	}
	out := *g
	out.Players = append([]string(nil), g.Players...)
	out.Scores = make(map[string]int, len(g.Scores))
	for k, v := range g.Scores {
		out.Scores[k] = v
	}
	out.History = append([]SubmissionEntry(nil), g.History...)
	return &out
}
