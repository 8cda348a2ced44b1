package event

import (
	"context"
	"time"

	"github.com/viant/hitl/internal/idgen"
)

// Slot lifecycle topics.
const (
	TopicSlotPending       = "slot.pending"
	TopicSlotResolved      = "slot.resolved"
	TopicSlotTimedOut      = "slot.timed_out"
	TopicSlotRemoved       = "slot.removed"
	TopicSlotExpired       = "slot.expired"
	TopicDeliveryDiscarded = "delivery.discarded"
	TopicWaitDone          = "wait.done"
)

// Event describes a single transition observed by a registry.
type Event struct {
	ID        string        `json:"id"`
	Topic     string        `json:"topic"`
	Kind      string        `json:"kind"`     // registry kind, e.g. approval
	Identity  string        `json:"identity"` // plan or clarification request id
	Status    string        `json:"status,omitempty"`
	Value     interface{}   `json:"value,omitempty"`
	Waited    time.Duration `json:"waited,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// New creates an event stamped with the supplied time.
func New(topic, kind, identity string, at time.Time) *Event {
	return &Event{
		ID:        idgen.New(),
		Topic:     topic,
		Kind:      kind,
		Identity:  identity,
		CreatedAt: at,
	}
}

// Observer receives events synchronously from the emitting goroutine. It
// must not block.
type Observer func(ctx context.Context, e *Event)

// Observers combines several observers into one, skipping nil entries.
func Observers(observers ...Observer) Observer {
	var active []Observer
	for _, o := range observers {
		if o != nil {
			active = append(active, o)
		}
	}
	return func(ctx context.Context, e *Event) {
		for _, o := range active {
			o(ctx, e)
		}
	}
}
