package awaiter

import (
	"context"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
)

// Sweeper is implemented by every Registry regardless of its value type.
type Sweeper interface {
	Kind() string
	Sweep(ctx context.Context, retention time.Duration) int
}

// Janitor periodically sweeps registries so that slots which were delivered
// or abandoned but never cleaned up do not accumulate.
// It is the caller's responsibility to call Close on the returned instance.
type Janitor struct {
	cancel context.CancelFunc
	waiter quartz.Waiter
}

// NewJanitor starts sweeping every interval, removing slots older than retention.
func NewJanitor(ctx context.Context, logger slog.Logger, clock quartz.Clock, interval, retention time.Duration, sweepers ...Sweeper) *Janitor {
	ctx, cancel := context.WithCancel(ctx)
	waiter := clock.TickerFunc(ctx, interval, func() error {
		for _, sweeper := range sweepers {
			if removed := sweeper.Sweep(ctx, retention); removed > 0 {
				logger.Debug(ctx, "janitor swept registry",
					slog.F("kind", sweeper.Kind()),
					slog.F("removed", removed))
			}
		}
		return nil
	}, "awaiter", "janitor")
	return &Janitor{cancel: cancel, waiter: waiter}
}

// Close stops the janitor and waits for an in-flight sweep to finish.
func (j *Janitor) Close() error {
	j.cancel()
	_ = j.waiter.Wait()
	return nil
}
