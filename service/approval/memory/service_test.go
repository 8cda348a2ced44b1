package memory_test

import (
	"context"
	"testing"
	"time"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/hitl/service/approval"
	memApproval "github.com/viant/hitl/service/approval/memory"
	"github.com/viant/hitl/service/awaiter"
)

func newService(t *testing.T) approval.Service {
	logger := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})
	registry := awaiter.New[bool](approval.Kind, awaiter.WithLogger(logger))
	return memApproval.New(registry, memApproval.WithLogger(logger))
}

// TestWait verifies that Wait blocks until a decision is recorded and falls
// back to a rejection when none arrives in time.
func TestWait(t *testing.T) {
	type testCase struct {
		name         string
		approve      bool
		expect       bool
		expectStatus awaiter.Status
		timeout      time.Duration
		decideDelay  time.Duration
	}

	tests := []testCase{{
		name:         "approved before timeout",
		approve:      true,
		expect:       true,
		expectStatus: awaiter.StatusResolved,
		timeout:      time.Second,
		decideDelay:  10 * time.Millisecond,
	}, {
		name:         "rejected before timeout",
		approve:      false,
		expect:       false,
		expectStatus: awaiter.StatusResolved,
		timeout:      time.Second,
		decideDelay:  10 * time.Millisecond,
	}, {
		name:         "approved before wait",
		approve:      true,
		expect:       true,
		expectStatus: awaiter.StatusResolved,
		timeout:      time.Second,
	}, {
		name:         "timeout waiting for decision",
		approve:      true, // irrelevant – decision arrives too late
		expect:       false,
		expectStatus: awaiter.StatusTimedOut,
		timeout:      50 * time.Millisecond,
		decideDelay:  150 * time.Millisecond,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc := newService(t)
			planID := "plan-1"
			svc.MarkPending(ctx, planID)

			decided := make(chan bool, 1)
			if tc.decideDelay > 0 {
				go func() {
					time.Sleep(tc.decideDelay)
					decided <- svc.SetResult(ctx, planID, tc.approve)
				}()
			} else {
				decided <- svc.SetResult(ctx, planID, tc.approve)
			}

			decision, err := svc.Wait(ctx, planID, awaiter.WithTimeout(tc.timeout))
			require.NoError(t, err)
			assert.Equal(t, planID, decision.ID)
			assert.Equal(t, tc.expect, decision.Approved)
			assert.Equal(t, tc.expectStatus, decision.Status)
			assert.False(t, decision.DecidedAt.IsZero())

			// a late decision is refused, an in-time one accepted
			assert.Equal(t, tc.expectStatus == awaiter.StatusResolved, <-decided)
		})
	}
}

func TestWait_Cancelled(t *testing.T) {
	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	svc.MarkPending(ctx, "plan-2")

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	decision, err := svc.Wait(ctx, "plan-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, decision)
	assert.False(t, decision.Approved)
	assert.Equal(t, awaiter.StatusCancelled, decision.Status)
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	svc.MarkPending(ctx, "plan-3")
	assert.True(t, svc.SetResult(ctx, "plan-3", true))
	svc.Cleanup(ctx, "plan-3")
	svc.Cleanup(ctx, "plan-3")

	// a fresh round for the same plan does not see the old decision
	svc.MarkPending(ctx, "plan-3")
	decision, err := svc.Wait(ctx, "plan-3", awaiter.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, decision.TimedOut())
	assert.False(t, decision.Approved)
}
