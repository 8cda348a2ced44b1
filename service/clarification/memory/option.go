package memory

import "cdr.dev/slog/v3"

type Option func(*service)

// WithFallback replaces the text returned when no answer arrives in time.
func WithFallback(text string) Option {
	return func(s *service) {
		if text != "" {
			s.fallback = text
		}
	}
}

func WithLogger(logger slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}
