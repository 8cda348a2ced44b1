// Package bench compares waiting on the registry against a sleep-and-check
// loop, the approach the registry replaces.
package bench

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/viant/hitl/service/awaiter"
	"github.com/viant/hitl/service/event"
)

// Config describes one run: Requests concurrent waits, each answered Delay
// after it starts.
type Config struct {
	Requests     int
	Delay        time.Duration
	PollInterval time.Duration
	Timeout      time.Duration
}

func DefaultConfig() Config {
	return Config{
		Requests:     50,
		Delay:        50 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
		Timeout:      time.Second,
	}
}

// Result summarises a run.
type Result struct {
	Approach string
	Requests int
	Elapsed  time.Duration
	// Wakeups counts how often waiting goroutines were scheduled to check
	// for their result.
	Wakeups int64
	// MaxLag is the longest time between a delivery and its waiter noticing.
	MaxLag time.Duration
}

type lagTracker struct {
	mux sync.Mutex
	max time.Duration
}

func (l *lagTracker) observe(lag time.Duration) {
	l.mux.Lock()
	if lag > l.max {
		l.max = lag
	}
	l.mux.Unlock()
}

// Polling waits the way a loop over a shared map does: check, sleep, repeat.
func Polling(ctx context.Context, cfg Config) (*Result, error) {
	var (
		mux       sync.Mutex
		delivered = make(map[string]time.Time, cfg.Requests)
		wakeups   atomic.Int64
		lag       lagTracker
	)
	started := time.Now()
	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Requests; i++ {
		id := fmt.Sprintf("plan_%d", i)
		group.Go(func() error {
			deadline := time.Now().Add(cfg.Timeout)
			for {
				wakeups.Add(1)
				mux.Lock()
				at, ok := delivered[id]
				mux.Unlock()
				if ok {
					lag.observe(time.Since(at))
					return nil
				}
				if time.Now().After(deadline) {
					return fmt.Errorf("%s: timed out", id)
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(cfg.PollInterval):
				}
			}
		})
		group.Go(func() error {
			if err := sleep(ctx, cfg.Delay); err != nil {
				return err
			}
			mux.Lock()
			delivered[id] = time.Now()
			mux.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &Result{
		Approach: "polling",
		Requests: cfg.Requests,
		Elapsed:  time.Since(started),
		Wakeups:  wakeups.Load(),
		MaxLag:   lag.max,
	}, nil
}

// EventDriven waits on an awaiter.Registry; every waiter wakes exactly once.
func EventDriven(ctx context.Context, cfg Config) (*Result, error) {
	var (
		mux       sync.Mutex
		delivered = make(map[string]time.Time, cfg.Requests)
		wakeups   atomic.Int64
		lag       lagTracker
	)
	registry := awaiter.New[bool]("bench", awaiter.WithObserver(func(_ context.Context, e *event.Event) {
		switch e.Topic {
		case event.TopicSlotResolved:
			mux.Lock()
			delivered[e.Identity] = time.Now()
			mux.Unlock()
		case event.TopicWaitDone:
			wakeups.Add(1)
		}
	}))

	started := time.Now()
	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Requests; i++ {
		id := fmt.Sprintf("plan_%d", i)
		registry.MarkPending(ctx, id)
		group.Go(func() error {
			outcome := registry.Wait(ctx, id, awaiter.WithTimeout(cfg.Timeout))
			if outcome.Err != nil {
				return outcome.Err
			}
			if !outcome.Resolved() {
				return fmt.Errorf("%s: timed out", id)
			}
			mux.Lock()
			at := delivered[id]
			mux.Unlock()
			lag.observe(time.Since(at))
			return nil
		})
		group.Go(func() error {
			if err := sleep(ctx, cfg.Delay); err != nil {
				return err
			}
			registry.Deliver(ctx, id, true)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &Result{
		Approach: "event-driven",
		Requests: cfg.Requests,
		Elapsed:  time.Since(started),
		Wakeups:  wakeups.Load(),
		MaxLag:   lag.max,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
