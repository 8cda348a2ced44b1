package awaiter

import "time"

// Outcome is the result of a Wait call. Value holds the delivered value only
// when Status is StatusResolved; otherwise it is the zero value and callers
// apply their own fallback.
type Outcome[T any] struct {
	ID     string
	Status Status
	Value  T
	Waited time.Duration
	// SettledAt is when the outcome was decided; zero on cancellation.
	SettledAt time.Time
	// Err is the context error when Status is StatusCancelled.
	Err error
}

// Resolved reports whether a value was delivered.
func (o Outcome[T]) Resolved() bool {
	return o.Status == StatusResolved
}

// WaitOption customises a single Wait call.
type WaitOption func(*waitOptions)

type waitOptions struct {
	timeout time.Duration
}

// WithTimeout overrides the registry default timeout for one call.
// Non-positive values keep the default.
func WithTimeout(timeout time.Duration) WaitOption {
	return func(o *waitOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithTimeoutSec is WithTimeout expressed in (fractional) seconds.
func WithTimeoutSec(seconds float64) WaitOption {
	return WithTimeout(time.Duration(seconds * float64(time.Second)))
}
