package memory

import "cdr.dev/slog/v3"

type Option func(*service)

// WithLogger logs every recorded decision.
func WithLogger(logger slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}
