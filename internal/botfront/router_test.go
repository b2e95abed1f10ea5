package botfront

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Mohampouraz/Zanjirvajeh/internal/botapi"
	"github.com/Mohampouraz/Zanjirvajeh/internal/dict"
	"github.com/Mohampouraz/Zanjirvajeh/internal/msgcat"
	"github.com/Mohampouraz/Zanjirvajeh/internal/wordchain"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendMessage(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) last(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no message sent")
	}
	return f.sent[len(f.sent)-1]
}

type fakeRecorder struct {
	mu    sync.Mutex
	users []*wordchain.User
}

func (f *fakeRecorder) RecordScore(_ context.Context, u *wordchain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, u)
	return nil
}

func newTestRouter(t *testing.T, opts ...Option) (*Router, *fakeSender) {
	t.Helper()
	d, err := dict.Load("")
	if err != nil {
		t.Fatalf("load dictionary: %v", err)
	}
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	eng := wordchain.NewEngine(d, wordchain.NewSessionStore(), wordchain.NewUserRegistry(), wordchain.Config{}, zap.NewNop())
	sender := &fakeSender{}
	return NewRouter(eng, cat, sender, zap.NewNop(), opts...), sender
}

func update(chatID, userID int64, name, text string) botapi.Update {
	return botapi.Update{
		UpdateID: 1,
		Message: &botapi.Message{
			MessageID: 1,
			From:      &botapi.UserRef{ID: userID, FirstName: name},
			Chat:      botapi.Chat{ID: chatID, Type: "group"},
			Date:      time.Now().Unix(),
			Text:      text,
		},
	}
}

func TestHelpCommand(t *testing.T) {
	r, sender := newTestRouter(t)
	r.HandleUpdate(context.Background(), update(10, 1, "سارا", "راهنما"))
	if got := sender.last(t); !strings.Contains(got, "زنجیره") {
		t.Fatalf("help text missing, got %q", got)
	}
}

func TestNewGameCommandParsesArgs(t *testing.T) {
	r, sender := newTestRouter(t)
	r.HandleUpdate(context.Background(), update(10, 1, "سارا", "جدید تکی 45"))
	got := sender.last(t)
	if !strings.Contains(got, "تکی") {
		t.Fatalf("expected solo mode in reply, got %q", got)
	}
	if !strings.Contains(got, "45") {
		t.Fatalf("expected turn seconds in reply, got %q", got)
	}
}

func TestJoinThenSubmitFlow(t *testing.T) {
	r, sender := newTestRouter(t)
	ctx := context.Background()

	r.HandleUpdate(ctx, update(10, 1, "سارا", "جدید"))
	r.HandleUpdate(ctx, update(10, 1, "سارا", "ورود"))
	joined := sender.last(t)
	if !strings.Contains(joined, "سارا") {
		t.Fatalf("join reply should name the player, got %q", joined)
	}

	st := r.engine.State("10")
	word := wordFor(t, st.Game.CurrentLetter)
	r.HandleUpdate(ctx, update(10, 1, "سارا", word))
	accepted := sender.last(t)
	if !strings.Contains(accepted, "پذیرفته") {
		t.Fatalf("expected acceptance reply, got %q", accepted)
	}
}

func TestRejectionReplies(t *testing.T) {
	r, sender := newTestRouter(t)
	ctx := context.Background()
	r.HandleUpdate(ctx, update(10, 1, "سارا", "جدید"))

	r.HandleUpdate(ctx, update(10, 1, "سارا", "با"))
	if got := sender.last(t); !strings.Contains(got, "دست‌کم") {
		t.Fatalf("expected too-short reply, got %q", got)
	}
}

func TestUnknownChatIgnored(t *testing.T) {
	r, sender := newTestRouter(t, WithChatFilter(func(chatID int64) bool { return chatID == 99 }))
	r.HandleUpdate(context.Background(), update(10, 1, "سارا", "راهنما"))
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 0 {
		t.Fatalf("filtered chat should get no reply, got %v", sender.sent)
	}
}

func TestPrefixStripped(t *testing.T) {
	r, sender := newTestRouter(t, WithPrefix("!"))
	ctx := context.Background()
	r.HandleUpdate(ctx, update(10, 1, "سارا", "راهنما"))
	sender.mu.Lock()
	n := len(sender.sent)
	sender.mu.Unlock()
	if n != 0 {
		t.Fatal("unprefixed message should be ignored")
	}
	r.HandleUpdate(ctx, update(10, 1, "سارا", "! راهنما"))
	if got := sender.last(t); !strings.Contains(got, "زنجیره") {
		t.Fatalf("prefixed help should route, got %q", got)
	}
}

func TestRecorderMirrorsAcceptedSubmit(t *testing.T) {
	rec := &fakeRecorder{}
	r, _ := newTestRouter(t, WithRecorders(rec))
	ctx := context.Background()

	r.HandleUpdate(ctx, update(10, 1, "سارا", "جدید"))
	r.HandleUpdate(ctx, update(10, 1, "سارا", "ورود"))
	st := r.engine.State("10")
	r.HandleUpdate(ctx, update(10, 1, "سارا", wordFor(t, st.Game.CurrentLetter)))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.users) != 1 {
		t.Fatalf("expected one mirrored record, got %d", len(rec.users))
	}
	if rec.users[0].ID != "1" || rec.users[0].Score < 1 {
		t.Fatalf("unexpected mirrored user %+v", rec.users[0])
	}
}

func TestLeaderboardDisabledWithoutBoard(t *testing.T) {
	r, sender := newTestRouter(t)
	r.HandleUpdate(context.Background(), update(10, 1, "سارا", "برترین‌ها"))
	if got := sender.last(t); !strings.Contains(got, "فعال نیست") {
		t.Fatalf("expected disabled reply, got %q", got)
	}
}

// wordFor picks a dictionary word starting with the given letter so the
// flow tests stay independent of the random starting letter.
func wordFor(t *testing.T, letter string) string {
	t.Helper()
	byLetter := map[string]string{
		"ا": "ابر", "ب": "باران", "پ": "پدر", "ت": "توت",
		"د": "دریا", "ر": "روزنامه", "س": "سیب", "ش": "شیراز",
		"ک": "کتاب", "گ": "گلدان", "م": "مادر", "ن": "نارنج",
	}
	w, ok := byLetter[letter]
	if !ok {
		t.Fatalf("no test word for letter %q", letter)
	}
	return w
}
