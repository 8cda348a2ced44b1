package awaiter

import (
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"

	"github.com/viant/hitl/service/event"
)

// DefaultTimeout applies when neither the registry nor the call sets one.
const DefaultTimeout = 300 * time.Second

type Option func(*options)

type options struct {
	timeout  time.Duration
	clock    quartz.Clock
	logger   slog.Logger
	observer event.Observer
}

// WithDefaultTimeout sets the timeout used by Wait calls without WithTimeout.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithClock replaces the real clock, typically with quartz.NewMock in tests.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

func WithLogger(logger slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithObserver receives every slot transition and wait completion.
func WithObserver(observer event.Observer) Option {
	return func(o *options) { o.observer = observer }
}
