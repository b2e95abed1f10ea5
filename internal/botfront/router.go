// Package botfront turns messenger updates into game engine calls and
// renders the results back as Persian chat messages.
package botfront

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Mohampouraz/Zanjirvajeh/internal/botapi"
	"github.com/Mohampouraz/Zanjirvajeh/internal/msgcat"
	"github.com/Mohampouraz/Zanjirvajeh/internal/wordchain"
)

// Sender delivers a rendered message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// TopLister serves the leaderboard command. Optional.
type TopLister interface {
	Top(ctx context.Context, n int) ([]*wordchain.User, error)
}

const (
	cmdNew   = "جدید"
	cmdJoin  = "ورود"
	cmdState = "وضعیت"
	cmdTop   = "برترین‌ها"
	cmdHelp  = "راهنما"
	modeSolo = "تکی"
	modeTeam = "گروهی"
	topLimit = 10
)

type Router struct {
	engine    *wordchain.Engine
	cat       *msgcat.Catalog
	sender    Sender
	board     TopLister
	recorders []wordchain.ScoreRecorder
	prefix    string
	allowed   func(chatID int64) bool
	logger    *zap.Logger
}

type Option func(*Router)

// WithPrefix requires messages to start with the given marker, which is
// stripped before routing. Empty means every message is routed.
func WithPrefix(p string) Option {
	return func(r *Router) { r.prefix = strings.TrimSpace(p) }
}

// WithChatFilter drops updates from chats the filter rejects.
func WithChatFilter(f func(chatID int64) bool) Option {
	return func(r *Router) { r.allowed = f }
}

// WithBoard enables the leaderboard command.
func WithBoard(b TopLister) Option {
	return func(r *Router) { r.board = b }
}

// WithRecorders mirrors updated user records after accepted submissions.
// Mirror failures are logged, never surfaced to the chat.
func WithRecorders(recs ...wordchain.ScoreRecorder) Option {
	return func(r *Router) { r.recorders = append(r.recorders, recs...) }
}

func NewRouter(engine *wordchain.Engine, cat *msgcat.Catalog, sender Sender, logger *zap.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{engine: engine, cat: cat, sender: sender, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleUpdate routes one update. It never returns an error; delivery
// failures are logged and dropped, matching at-most-once chat semantics.
func (r *Router) HandleUpdate(ctx context.Context, upd botapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}
	if r.allowed != nil && !r.allowed(msg.Chat.ID) {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	if r.prefix != "" {
		if !strings.HasPrefix(text, r.prefix) {
			return
		}
		text = strings.TrimSpace(strings.TrimPrefix(text, r.prefix))
		if text == "" {
			return
		}
	}

	sessionID := strconv.FormatInt(msg.Chat.ID, 10)
	userID := strconv.FormatInt(msg.From.ID, 10)
	name := displayName(msg.From)

	reply := r.route(ctx, sessionID, userID, name, text)
	if reply == "" {
		return
	}
	if err := r.sender.SendMessage(ctx, msg.Chat.ID, reply); err != nil {
		r.logger.Warn("bot_send_error", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (r *Router) route(ctx context.Context, sessionID, userID, name, text string) string {
	fields := strings.Fields(text)
	switch fields[0] {
	case cmdHelp, "/start", "/help":
		return r.cat.Text("help", nil, "")
	case cmdNew:
		return r.handleNew(sessionID, fields[1:])
	case cmdJoin:
		return r.handleJoin(sessionID, userID, name)
	case cmdState:
		return r.handleState(sessionID)
	case cmdTop:
		return r.handleTop(ctx)
	default:
		return r.handleWord(ctx, sessionID, userID, name, text)
	}
}

func (r *Router) handleNew(sessionID string, args []string) string {
	mode := wordchain.ModeTeam
	seconds := 0
	for _, a := range args {
		switch a {
		case modeSolo:
			mode = wordchain.ModeSolo
		case modeTeam:
			mode = wordchain.ModeTeam
		default:
			if n, err := strconv.Atoi(a); err == nil {
				seconds = n
			}
		}
	}
	g := r.engine.NewGame(sessionID, mode, seconds, "")
	return r.cat.Text("game.created", map[string]any{
		"Mode":    modeLabel(g.Mode),
		"Letter":  g.CurrentLetter,
		"Seconds": g.TurnSeconds,
	}, "")
}

func (r *Router) handleJoin(sessionID, userID, name string) string {
	r.engine.Users().Ensure(userID, name)
	g := r.engine.Join(sessionID, userID, name)
	return r.cat.Text("game.joined", map[string]any{
		"Name":    name,
		"Letter":  g.CurrentLetter,
		"Current": r.playerName(g.CurrentPlayerID),
	}, "")
}

func (r *Router) handleState(sessionID string) string {
	st := r.engine.State(sessionID)
	return r.cat.Text("game.state", map[string]any{
		"Round":   st.Game.Round,
		"Letter":  st.Game.CurrentLetter,
		"Current": r.playerName(st.Game.CurrentPlayerID),
		"Scores":  r.formatScores(st.Game),
	}, "")
}

func (r *Router) handleTop(ctx context.Context) string {
	if r.board == nil {
		return r.cat.Text("leaderboard.disabled", nil, "")
	}
	users, err := r.board.Top(ctx, topLimit)
	if err != nil {
		r.logger.Warn("leaderboard_error", zap.Error(err))
		return r.cat.Text("leaderboard.empty", nil, "")
	}
	if len(users) == 0 {
		return r.cat.Text("leaderboard.empty", nil, "")
	}
	lines := []string{r.cat.Text("leaderboard.header", nil, "")}
	for i, u := range users {
		name := u.DisplayName
		if name == "" {
			name = u.ID
		}
		lines = append(lines, r.cat.Text("leaderboard.row", map[string]any{
			"Rank":  i + 1,
			"Name":  name,
			"Score": u.Score,
		}, ""))
	}
	return strings.Join(lines, "\n")
}

func (r *Router) handleWord(ctx context.Context, sessionID, userID, name, word string) string {
	r.engine.Users().Ensure(userID, name)
	res := r.engine.Submit(sessionID, userID, word)

	switch res.Status {
	case wordchain.StatusAccepted:
		r.mirrorScore(ctx, userID)
		return r.cat.Text("submit.accepted", map[string]any{
			"Word":    res.Entry.Normalized,
			"Score":   res.Entry.Score,
			"Letter":  res.Game.CurrentLetter,
			"Current": r.playerName(res.Game.CurrentPlayerID),
		}, "")
	case wordchain.StatusNotYourTurn:
		return r.cat.Text("submit.not_your_turn", map[string]any{
			"Current": r.playerName(res.Game.CurrentPlayerID),
		}, "")
	case wordchain.StatusTimeout:
		return r.cat.Text("submit.timeout", map[string]any{
			"Letter":  res.Game.CurrentLetter,
			"Current": r.playerName(res.Game.CurrentPlayerID),
		}, "")
	case wordchain.StatusRejected:
		return r.rejectionText(res)
	}
	return ""
}

func (r *Router) rejectionText(res *wordchain.SubmitResult) string {
	data := map[string]any{
		"Word":   res.Entry.Normalized,
		"Letter": res.Entry.NextLetter,
		"Min":    r.engine.Config().MinWordLetters,
	}
	if res.Entry.NextLetter == "" {
		data["Letter"] = res.Game.CurrentLetter
	}
	return r.cat.Text("submit.rejected."+string(res.Reason), data, "")
}

func (r *Router) mirrorScore(ctx context.Context, userID string) {
	if len(r.recorders) == 0 {
		return
	}
	u := r.engine.Users().Get(userID)
	if u == nil {
		return
	}
	for _, rec := range r.recorders {
		if err := rec.RecordScore(ctx, u); err != nil {
			r.logger.Warn("score_mirror_error", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

func (r *Router) formatScores(g *wordchain.Game) string {
	if len(g.Players) == 0 {
		return r.cat.Text("score.none", nil, "")
	}
	lines := make([]string, 0, len(g.Players))
	for _, id := range g.Players {
		lines = append(lines, r.cat.Text("score.row", map[string]any{
			"Name":  r.playerName(id),
			"Score": g.Scores[id],
		}, ""))
	}
	return strings.Join(lines, "\n")
}

func (r *Router) playerName(id string) string {
	if id == "" {
		return "-"
	}
	if u := r.engine.Users().Get(id); u != nil && u.DisplayName != "" {
		return u.DisplayName
	}
	return id
}

func displayName(u *botapi.UserRef) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}

func modeLabel(m wordchain.Mode) string {
	if m == wordchain.ModeSolo {
		return modeSolo
	}
	return modeTeam
}
