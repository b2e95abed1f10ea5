package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/Mohampouraz/Zanjirvajeh/internal/wordchain"
)

// hub fans out state snapshots to websocket subscribers, keyed by session.
// Slow subscribers are disconnected rather than buffered without bound.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan *wordchain.StateResult]struct{}

	logger *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{subs: make(map[string]map[chan *wordchain.StateResult]struct{}), logger: logger}
}

func (h *hub) subscribe(sessionID string) chan *wordchain.StateResult {
	ch := make(chan *wordchain.StateResult, 8)
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[chan *wordchain.StateResult]struct{})
		h.subs[sessionID] = set
	}
	set[ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(sessionID string, ch chan *wordchain.StateResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sessionID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, sessionID)
		}
	}
}

// broadcast delivers st to every subscriber of the session. Full buffers
// are skipped; the subscriber's write loop will catch up or drop off.
func (h *hub) broadcast(sessionID string, st *wordchain.StateResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[sessionID] {
		select {
		case ch <- st:
		default:
		}
	}
}

// serveWS upgrades the request and streams snapshots until the client
// disconnects. An initial snapshot is sent straight away. The feed is
// write-only, so CloseRead keeps control frames flowing and cancels the
// context when the client goes away.
func (h *hub) serveWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *wordchain.StateResult) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		h.logger.Warn("ws_accept_error", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	ch := h.subscribe(sessionID)
	defer h.unsubscribe(sessionID, ch)

	ctx := conn.CloseRead(r.Context())
	if err := writeSnapshot(ctx, conn, initial); err != nil {
		return
	}

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "closed")
			return
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case st := <-ch:
			if err := writeSnapshot(ctx, conn, st); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, st *wordchain.StateResult) error {
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return wsjson.Write(wctx, conn, st)
}
