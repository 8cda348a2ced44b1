package awaiter

import "time"

// slot is guarded by the owning registry's mutex. done is closed exactly once,
// when the slot leaves StatusPending; re-arming an identity allocates a new
// slot instead of reopening the channel.
type slot[T any] struct {
	id        string
	status    Status
	value     T
	done      chan struct{}
	waiters   int
	detached  bool
	createdAt time.Time
	settledAt time.Time
}

func newSlot[T any](id string, now time.Time) *slot[T] {
	return &slot[T]{
		id:        id,
		status:    StatusPending,
		done:      make(chan struct{}),
		createdAt: now,
	}
}

func (s *slot[T]) resolve(value T, now time.Time) {
	s.value = value
	s.status = StatusResolved
	s.settledAt = now
	close(s.done)
}

func (s *slot[T]) timeout(now time.Time) {
	s.status = StatusTimedOut
	s.settledAt = now
	close(s.done)
}

func (s *slot[T]) snapshot() Slot[T] {
	return Slot[T]{
		ID:        s.id,
		Status:    s.status,
		Value:     s.value,
		Waiters:   s.waiters,
		CreatedAt: s.createdAt,
		SettledAt: s.settledAt,
	}
}

type tombstone struct {
	status    Status
	removedAt time.Time
}

// Slot is a read-only copy of a registry entry.
type Slot[T any] struct {
	ID     string
	Status Status
	// Value is meaningful only when Status is StatusResolved.
	Value     T
	Waiters   int
	CreatedAt time.Time
	SettledAt time.Time
}

// Stats aggregates slot counts for diagnostics and metrics.
type Stats struct {
	Pending  int
	Resolved int
	TimedOut int
	Waiters  int
	Detached int
}
