package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cdr.dev/slog/v3"

	"github.com/viant/hitl/service/messaging"
	"github.com/viant/hitl/service/messaging/memory"
)

// Publisher fans every event out to one in-memory queue per subscriber.
// Publishing never blocks: a subscriber whose queue is full loses the event.
type Publisher struct {
	mux         sync.RWMutex
	subscribers map[string]*memory.Queue[Event]
	config      memory.Config
	logger      slog.Logger
}

// NewPublisher creates a publisher; buffer sizes every subscriber queue.
func NewPublisher(buffer int, logger slog.Logger) *Publisher {
	config := memory.DefaultConfig()
	config.QueueBuffer = buffer
	config.DropWhenFull = true
	return &Publisher{
		subscribers: make(map[string]*memory.Queue[Event]),
		config:      config,
		logger:      logger,
	}
}

// Subscribe registers a named subscriber and returns its queue. Subscribing
// twice with the same name replaces the previous queue.
func (p *Publisher) Subscribe(name string) messaging.Queue[Event] {
	queue := memory.NewQueue[Event](p.config)
	p.mux.Lock()
	p.subscribers[name] = queue
	p.mux.Unlock()
	return queue
}

// Unsubscribe drops the named subscriber; pending events are discarded.
func (p *Publisher) Unsubscribe(name string) {
	p.mux.Lock()
	delete(p.subscribers, name)
	p.mux.Unlock()
}

// Publish delivers the event to every subscriber. Cancellation of ctx does
// not stop delivery: events about cancelled waits must still reach them.
func (p *Publisher) Publish(ctx context.Context, e *Event) error {
	ctx = context.WithoutCancel(ctx)
	p.mux.RLock()
	defer p.mux.RUnlock()
	var errs []error
	for name, queue := range p.subscribers {
		if err := queue.Publish(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("subscriber %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Observe adapts Publish to the Observer signature, logging failed fan-outs.
func (p *Publisher) Observe(ctx context.Context, e *Event) {
	if err := p.Publish(ctx, e); err != nil {
		p.logger.Warn(ctx, "dropped event",
			slog.F("topic", e.Topic),
			slog.F("identity", e.Identity),
			slog.Error(err))
	}
}
