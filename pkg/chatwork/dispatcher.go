package chatwork

import (
	"context"
	"strings"

	"kb-assistant-be/internal/constant"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/pkg/metrics"
)

// Poster is the message-creation call the dispatcher depends on.
type Poster interface {
	PostMessage(ctx context.Context, roomID int64, body string) (string, error)
}

// Dispatcher posts answers back to the originating room.
type Dispatcher struct {
	poster  Poster
	prefix  string
	suffix  string
	logger  logger.ILogger
	metrics *metrics.Metrics
}

func NewDispatcher(poster Poster, prefix, suffix string, log logger.ILogger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		poster:  poster,
		prefix:  prefix,
		suffix:  suffix,
		logger:  log,
		metrics: m,
	}
}

// Dispatch posts text with the configured suffix. A failed post is returned
// to the caller, which decides whether to send an apology.
func (d *Dispatcher) Dispatch(ctx context.Context, roomID int64, text string) error {
	body := text
	if d.suffix != "" {
		body = strings.TrimRight(body, "\n") + "\n\n" + d.suffix
	}

	if _, err := d.poster.PostMessage(ctx, roomID, body); err != nil {
		d.metrics.DispatchError()
		return err
	}
	return nil
}

// HasPrefix reports whether a pre-roll message is configured.
func (d *Dispatcher) HasPrefix() bool {
	return d.prefix != ""
}

// SendPrefixAsync posts the pre-roll message without blocking the caller.
// The returned channel yields the outcome once and is then closed; callers
// may ignore it. The post outlives cancellation of ctx.
func (d *Dispatcher) SendPrefixAsync(ctx context.Context, roomID int64) <-chan error {
	done := make(chan error, 1)
	if d.prefix == "" {
		close(done)
		return done
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		if _, err := d.poster.PostMessage(ctx, roomID, d.prefix); err != nil {
			d.metrics.DispatchError()
			d.logger.Warn("Chatwork", "Prefix message failed", map[string]interface{}{
				"room_id": roomID,
				"error":   err.Error(),
			})
			done <- err
		}
	}()
	return done
}

// SendApology is the single best-effort fallback post. Its own failure is
// logged and not retried.
func (d *Dispatcher) SendApology(ctx context.Context, roomID int64) {
	if _, err := d.poster.PostMessage(context.WithoutCancel(ctx), roomID, constant.MessageApology); err != nil {
		d.metrics.DispatchError()
		d.logger.Error("Chatwork", "Apology message failed", map[string]interface{}{
			"room_id": roomID,
			"error":   err.Error(),
		})
	}
}

// SendText posts a fixed message without the suffix.
func (d *Dispatcher) SendText(ctx context.Context, roomID int64, text string) error {
	_, err := d.poster.PostMessage(ctx, roomID, text)
	if err != nil {
		d.metrics.DispatchError()
	}
	return err
}
