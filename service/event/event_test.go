package event_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/hitl/service/event"
	"github.com/viant/hitl/service/messaging"
)

func TestPublisher_FanOut(t *testing.T) {
	ctx := context.Background()
	logger := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})
	publisher := event.NewPublisher(4, logger)

	audit := publisher.Subscribe("audit")
	decider := publisher.Subscribe("decider")

	e := event.New(event.TopicSlotPending, "approval", "plan-1", time.Now())
	require.NoError(t, publisher.Publish(ctx, e))

	for _, queue := range []messaging.Queue[event.Event]{audit, decider} {
		msg, err := queue.Consume(ctx)
		require.NoError(t, err)
		assert.Equal(t, e.ID, msg.T().ID)
		assert.Equal(t, "plan-1", msg.T().Identity)
		assert.NoError(t, msg.Ack())
	}

	publisher.Unsubscribe("decider")
	require.NoError(t, publisher.Publish(ctx, event.New(event.TopicSlotRemoved, "approval", "plan-1", time.Now())))
	msg, err := audit.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, event.TopicSlotRemoved, msg.T().Topic)
}

func TestPublisher_DropsWhenSubscriberIsFull(t *testing.T) {
	ctx := context.Background()
	logger := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})
	publisher := event.NewPublisher(1, logger)
	publisher.Subscribe("slow")

	require.NoError(t, publisher.Publish(ctx, event.New(event.TopicSlotPending, "approval", "a", time.Now())))
	err := publisher.Publish(ctx, event.New(event.TopicSlotPending, "approval", "b", time.Now()))
	assert.ErrorIs(t, err, messaging.ErrQueueFull)

	// Observe swallows the error after logging it
	publisher.Observe(ctx, event.New(event.TopicSlotPending, "approval", "c", time.Now()))
}

func TestPublisher_DeliversWithCancelledContext(t *testing.T) {
	logger := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})
	publisher := event.NewPublisher(4, logger)
	audit := publisher.Subscribe("audit")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := event.New(event.TopicWaitDone, "approval", "plan-1", time.Now())
	e.Status = "cancelled"
	require.NoError(t, publisher.Publish(ctx, e))

	consumeCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	msg, err := audit.Consume(consumeCtx)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", msg.T().Status)
}

func TestListener(t *testing.T) {
	type testCase struct {
		name      string
		failFirst bool
	}
	for _, tc := range []testCase{
		{name: "handled"},
		{name: "redelivered after handler failure", failFirst: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			logger := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})
			publisher := event.NewPublisher(8, logger)

			var mu sync.Mutex
			var calls int
			received := make(chan *event.Event, 2)
			listener := event.NewListener(publisher.Subscribe("test"), func(ctx context.Context, e *event.Event) error {
				mu.Lock()
				calls++
				attempt := calls
				mu.Unlock()
				if tc.failFirst && attempt == 1 {
					return errors.New("transient")
				}
				received <- e
				return nil
			}, logger)
			listener.Start(ctx)
			defer listener.Stop()

			require.NoError(t, publisher.Publish(ctx, event.New(event.TopicSlotResolved, "clarification", "req-1", time.Now())))
			select {
			case e := <-received:
				assert.Equal(t, "req-1", e.Identity)
			case <-time.After(2 * time.Second):
				t.Fatal("event was not handled")
			}
		})
	}
}

func TestObservers(t *testing.T) {
	var seen []string
	observer := event.Observers(
		func(_ context.Context, e *event.Event) { seen = append(seen, "first:"+e.Identity) },
		nil,
		func(_ context.Context, e *event.Event) { seen = append(seen, "second:"+e.Identity) },
	)
	for i := 0; i < 2; i++ {
		observer(context.Background(), event.New(event.TopicWaitDone, "approval", fmt.Sprint(i), time.Now()))
	}
	assert.Equal(t, []string{"first:0", "second:0", "first:1", "second:1"}, seen)
}
