package botapi

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Mohampouraz/Zanjirvajeh/internal/obslog"
)

// UpdateHandler receives each update in arrival order. Handlers are
// called synchronously; slow handlers delay the next poll.
type UpdateHandler func(ctx context.Context, upd Update)

// Poller long-polls getUpdates and dispatches updates to a handler,
// tracking the acknowledgement offset so updates are seen once.
type Poller struct {
	client     *Client
	handler    UpdateHandler
	timeoutSec int
	offset     int64
}

func NewPoller(client *Client, handler UpdateHandler, timeoutSec int) *Poller {
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	return &Poller{client: client, handler: handler, timeoutSec: timeoutSec}
}

// Run polls until ctx is cancelled. Transport errors back off and retry;
// the loop never returns except on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		updates, err := p.client.GetUpdates(ctx, p.offset, p.timeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			obslog.L().Warn("bot_poll_error", zap.Error(err), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, upd := range updates {
			if upd.UpdateID >= p.offset {
				p.offset = upd.UpdateID + 1
			}
			p.handler(ctx, upd)
		}
	}
}
