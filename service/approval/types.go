package approval

import (
	"time"

	"github.com/viant/hitl/service/awaiter"
)

// Kind names the approval registry in events, logs and metrics.
const Kind = "approval"

// Request describes a plan waiting for a decision.
type Request struct {
	ID          string    `json:"id"` // plan id
	RequestedAt time.Time `json:"requestedAt"`
}

// Decision is the result of waiting for a plan approval.
type Decision struct {
	ID       string         `json:"id"` // plan id
	Approved bool           `json:"approved"`
	Status   awaiter.Status `json:"status"`
	Waited   time.Duration  `json:"waited"`
	// DecidedAt is when the decision or the timeout was recorded.
	DecidedAt time.Time `json:"decidedAt,omitempty"`
}

// TimedOut reports whether the decision is the timeout fallback.
func (d *Decision) TimedOut() bool {
	return d.Status == awaiter.StatusTimedOut
}
