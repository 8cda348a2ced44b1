package awaiter

import (
	"context"
	"sort"
	"sync"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"

	"github.com/viant/hitl/service/event"
	"github.com/viant/hitl/tracing"
)

// Registry maps request identities to wait slots. All slot state is guarded
// by a single mutex whose critical sections never block, so operations on
// distinct identities only contend for a few instructions.
type Registry[T any] struct {
	kind string

	mu    sync.Mutex
	slots map[string]*slot[T]
	// detached holds slots removed while goroutines still wait on them; they
	// stay resolvable by Deliver until their last waiter returns.
	detached map[string][]*slot[T]
	// tombstones remember settled slots removed by cleanup so that a late
	// delivery for them is discarded instead of pre-setting a new slot.
	tombstones map[string]tombstone

	timeout  time.Duration
	clock    quartz.Clock
	logger   slog.Logger
	observer event.Observer
}

// New creates a registry. kind names the registry in events, logs and metrics.
func New[T any](kind string, opts ...Option) *Registry[T] {
	o := &options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.clock == nil {
		o.clock = quartz.NewReal()
	}
	return &Registry[T]{
		kind:     kind,
		slots:    make(map[string]*slot[T]),
		detached:   make(map[string][]*slot[T]),
		tombstones: make(map[string]tombstone),
		timeout:  o.timeout,
		clock:    o.clock,
		logger:   o.logger.Named(kind),
		observer: o.observer,
	}
}

// Kind returns the registry name.
func (r *Registry[T]) Kind() string { return r.kind }

// DefaultTimeout returns the timeout applied to Wait calls without WithTimeout.
func (r *Registry[T]) DefaultTimeout() time.Duration { return r.timeout }

// MarkPending ensures a pending slot exists for id. A resolved or timed-out
// slot is re-armed with a fresh signal; a pending one is left as is so that
// goroutines already waiting on it stay attached.
func (r *Registry[T]) MarkPending(ctx context.Context, id string) {
	r.mu.Lock()
	s, ok := r.slots[id]
	armed := !ok || s.status != StatusPending
	if armed {
		r.armLocked(id)
	}
	r.mu.Unlock()
	if armed {
		r.logger.Debug(ctx, "slot pending", slog.F("identity", id))
		r.emit(ctx, event.TopicSlotPending, id, nil)
	}
}

// Lookup returns a snapshot of the live slot for id.
func (r *Registry[T]) Lookup(id string) (Slot[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return Slot[T]{}, false
	}
	return s.snapshot(), true
}

// Remove deletes the slot for id whatever its state. It is idempotent, never
// blocks and does not cancel goroutines waiting on the slot: they still
// observe a later Deliver or their own timeout. A settled slot leaves a
// tombstone until MarkPending or Wait re-arms id, or Sweep expires it, so a
// late delivery is still discarded.
func (r *Registry[T]) Remove(ctx context.Context, id string) {
	r.mu.Lock()
	s, ok := r.slots[id]
	if ok {
		delete(r.slots, id)
		switch {
		case s.status.Terminal():
			r.tombstones[id] = tombstone{status: s.status, removedAt: r.clock.Now()}
		case s.waiters > 0:
			s.detached = true
			r.detached[id] = append(r.detached[id], s)
		}
	}
	r.mu.Unlock()
	if ok {
		r.logger.Debug(ctx, "slot removed", slog.F("identity", id), slog.F("status", s.status.String()))
		r.emit(ctx, event.TopicSlotRemoved, id, func(e *event.Event) { e.Status = s.status.String() })
	}
}

// Deliver stores value for id and wakes every goroutine waiting on it. With
// no slot present the value is kept in a new resolved slot so a later Wait
// returns at once. A slot that already resolved or timed out keeps its first
// outcome, even after Remove; the value is discarded and Deliver returns false.
func (r *Registry[T]) Deliver(ctx context.Context, id string, value T) bool {
	ctx, span := tracing.StartSpan(ctx, "awaiter.deliver")
	span.WithAttributes(map[string]string{"kind": r.kind, "identity": id})

	r.mu.Lock()
	now := r.clock.Now()
	accepted := false
	for _, d := range r.detached[id] {
		if d.status == StatusPending {
			d.resolve(value, now)
			accepted = true
		}
	}
	var previous Status
	s, ok := r.slots[id]
	tomb, buried := r.tombstones[id]
	switch {
	case !ok && buried && !accepted:
		previous = tomb.status
	case !ok:
		if !accepted {
			r.armLocked(id).resolve(value, now)
			accepted = true
		}
	case s.status == StatusPending:
		s.resolve(value, now)
		accepted = true
	default:
		previous = s.status
	}
	r.mu.Unlock()

	if accepted {
		r.logger.Debug(ctx, "slot resolved", slog.F("identity", id))
		r.emit(ctx, event.TopicSlotResolved, id, func(e *event.Event) { e.Value = value })
	} else {
		r.logger.Warn(ctx, "discarded late delivery",
			slog.F("identity", id),
			slog.F("status", previous.String()))
		r.emit(ctx, event.TopicDeliveryDiscarded, id, func(e *event.Event) {
			e.Status = previous.String()
			e.Value = value
		})
	}
	span.WithAttributes(map[string]string{"accepted": boolString(accepted)})
	tracing.EndSpan(span, nil)
	return accepted
}

// Wait blocks until id resolves, the timeout elapses or ctx is done. A
// missing or timed-out slot is armed implicitly, and an already resolved
// slot returns without suspending.
func (r *Registry[T]) Wait(ctx context.Context, id string, opts ...WaitOption) Outcome[T] {
	o := &waitOptions{timeout: r.timeout}
	for _, opt := range opts {
		opt(o)
	}
	ctx, span := tracing.StartSpan(ctx, "awaiter.wait")
	span.WithAttributes(map[string]string{"kind": r.kind, "identity": id})

	started := r.clock.Now()
	outcome := r.wait(ctx, id, o.timeout)
	outcome.Waited = r.clock.Since(started)

	span.WithAttributes(map[string]string{"outcome": outcome.Status.String()})
	tracing.EndSpan(span, outcome.Err)
	r.logger.Debug(ctx, "wait done",
		slog.F("identity", id),
		slog.F("outcome", outcome.Status.String()),
		slog.F("waited", outcome.Waited))
	r.emit(ctx, event.TopicWaitDone, id, func(e *event.Event) {
		e.Status = outcome.Status.String()
		e.Waited = outcome.Waited
	})
	return outcome
}

func (r *Registry[T]) wait(ctx context.Context, id string, timeout time.Duration) Outcome[T] {
	r.mu.Lock()
	s, ok := r.slots[id]
	armed := !ok || s.status == StatusTimedOut
	if armed {
		s = r.armLocked(id)
	}
	if s.status == StatusResolved {
		value, settledAt := s.value, s.settledAt
		r.mu.Unlock()
		return Outcome[T]{ID: id, Status: StatusResolved, Value: value, SettledAt: settledAt}
	}
	s.waiters++
	r.mu.Unlock()
	if armed {
		r.emit(ctx, event.TopicSlotPending, id, nil)
	}

	timer := r.clock.NewTimer(timeout, "awaiter", "wait")
	defer timer.Stop()

	select {
	case <-s.done:
		r.mu.Lock()
		r.releaseLocked(s)
		status, value, settledAt := s.status, s.value, s.settledAt
		r.mu.Unlock()
		return Outcome[T]{ID: id, Status: status, Value: value, SettledAt: settledAt}
	case <-timer.C:
		return r.expire(ctx, s)
	case <-ctx.Done():
		r.mu.Lock()
		r.releaseLocked(s)
		r.mu.Unlock()
		return Outcome[T]{ID: id, Status: StatusCancelled, Err: ctx.Err()}
	}
}

// expire handles a fired timer. A delivery that landed before the lock was
// taken wins. Otherwise the slot only times out when no other goroutine is
// still waiting on it, so callers with longer timeouts keep their chance.
func (r *Registry[T]) expire(ctx context.Context, s *slot[T]) Outcome[T] {
	r.mu.Lock()
	r.releaseLocked(s)
	if s.status == StatusResolved {
		value, settledAt := s.value, s.settledAt
		r.mu.Unlock()
		return Outcome[T]{ID: s.id, Status: StatusResolved, Value: value, SettledAt: settledAt}
	}
	now := r.clock.Now()
	timedOut := s.status == StatusPending && s.waiters == 0
	if timedOut {
		s.timeout(now)
	}
	r.mu.Unlock()
	if timedOut {
		r.logger.Info(ctx, "slot timed out", slog.F("identity", s.id))
		r.emit(ctx, event.TopicSlotTimedOut, s.id, nil)
	}
	return Outcome[T]{ID: s.id, Status: StatusTimedOut, SettledAt: now}
}

// Sweep removes terminal slots settled at least retention ago and pending
// slots nobody waits on that were created at least retention ago. It returns
// the number of slots removed. Tombstones older than retention are dropped
// as well but not counted.
func (r *Registry[T]) Sweep(ctx context.Context, retention time.Duration) int {
	now := r.clock.Now()
	var expired []string
	r.mu.Lock()
	for id, tomb := range r.tombstones {
		if now.Sub(tomb.removedAt) >= retention {
			delete(r.tombstones, id)
		}
	}
	for id, s := range r.slots {
		var stale bool
		if s.status == StatusPending {
			stale = s.waiters == 0 && now.Sub(s.createdAt) >= retention
		} else {
			stale = now.Sub(s.settledAt) >= retention
		}
		if stale {
			delete(r.slots, id)
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()
	for _, id := range expired {
		r.emit(ctx, event.TopicSlotExpired, id, nil)
	}
	if len(expired) > 0 {
		r.logger.Info(ctx, "swept stale slots", slog.F("count", len(expired)))
	}
	return len(expired)
}

// Len returns the number of live slots.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Slots returns snapshots of all live slots ordered by identity.
func (r *Registry[T]) Slots() []Slot[T] {
	r.mu.Lock()
	out := make([]Slot[T], 0, len(r.slots))
	for _, s := range r.slots {
		out = append(out, s.snapshot())
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stats counts live slots by status, plus attached and detached waiters.
func (r *Registry[T]) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats Stats
	for _, s := range r.slots {
		switch s.status {
		case StatusPending:
			stats.Pending++
		case StatusResolved:
			stats.Resolved++
		case StatusTimedOut:
			stats.TimedOut++
		}
		stats.Waiters += s.waiters
	}
	for _, list := range r.detached {
		stats.Detached += len(list)
		for _, s := range list {
			stats.Waiters += s.waiters
		}
	}
	return stats
}

func (r *Registry[T]) armLocked(id string) *slot[T] {
	s := newSlot[T](id, r.clock.Now())
	r.slots[id] = s
	delete(r.tombstones, id)
	return s
}

func (r *Registry[T]) releaseLocked(s *slot[T]) {
	s.waiters--
	if s.waiters > 0 || !s.detached {
		return
	}
	list := r.detached[s.id]
	for i, candidate := range list {
		if candidate == s {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.detached, s.id)
	} else {
		r.detached[s.id] = list
	}
}

func (r *Registry[T]) emit(ctx context.Context, topic, id string, decorate func(e *event.Event)) {
	if r.observer == nil {
		return
	}
	e := event.New(topic, r.kind, id, r.clock.Now())
	if decorate != nil {
		decorate(e)
	}
	r.observer(ctx, e)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
