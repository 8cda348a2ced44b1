package clarification

import (
	"time"

	"github.com/viant/hitl/service/awaiter"
)

// Kind names the clarification registry in events, logs and metrics.
const Kind = "clarification"

// DefaultFallback is returned by Wait when no answer arrives in time.
const DefaultFallback = "No clarification was provided in time; proceed with your best judgment."

// Request describes a question waiting for an answer.
type Request struct {
	ID          string    `json:"id"` // clarification request id
	RequestedAt time.Time `json:"requestedAt"`
}

// Answer is the result of waiting for a clarification.
type Answer struct {
	ID     string         `json:"id"`
	Text   string         `json:"text"`
	Status awaiter.Status `json:"status"`
	Waited time.Duration  `json:"waited"`
	// AnsweredAt is when the answer or the timeout was recorded.
	AnsweredAt time.Time `json:"answeredAt,omitempty"`
}

// TimedOut reports whether Text is the fallback.
func (a *Answer) TimedOut() bool {
	return a.Status == awaiter.StatusTimedOut
}
