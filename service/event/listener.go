package event

import (
	"context"
	"errors"

	"cdr.dev/slog/v3"

	"github.com/viant/hitl/service/messaging"
)

// Handler processes a consumed event. Returning an error nacks the message.
type Handler func(ctx context.Context, e *Event) error

// Listener consumes a subscriber queue on its own goroutine.
type Listener struct {
	queue   messaging.Queue[Event]
	handler Handler
	logger  slog.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewListener(queue messaging.Queue[Event], handler Handler, logger slog.Logger) *Listener {
	return &Listener{
		queue:   queue,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start launches the consume loop; it runs until ctx is done or Stop is called.
func (l *Listener) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	go func() {
		defer close(l.done)
		for {
			msg, err := l.queue.Consume(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error(ctx, "consume event", slog.Error(err))
				continue
			}
			e := msg.T()
			if err = l.handler(ctx, e); err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					_ = msg.Ack()
					return
				}
				l.logger.Warn(ctx, "event handler failed",
					slog.F("topic", e.Topic),
					slog.F("identity", e.Identity),
					slog.Error(err))
				_ = msg.Nack(err)
				continue
			}
			_ = msg.Ack()
		}
	}()
}

// Stop cancels the consume loop and waits for it to exit.
func (l *Listener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}
