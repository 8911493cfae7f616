package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct {
	mu      sync.Mutex
	pending []Event
	relayed []string
	err     error
}

func (o *fakeOutbox) Pending(_ context.Context, limit int) ([]Event, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	if limit > len(o.pending) {
		limit = len(o.pending)
	}
	return append([]Event(nil), o.pending[:limit]...), nil
}

func (o *fakeOutbox) MarkRelayed(_ context.Context, ids []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.relayed = append(o.relayed, ids...)
	marked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		marked[id] = struct{}{}
	}
	remaining := o.pending[:0]
	for _, event := range o.pending {
		if _, ok := marked[event.ID]; !ok {
			remaining = append(remaining, event)
		}
	}
	o.pending = remaining
	return nil
}

func stagedEvents(n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{ID: string(rune('a' + i)), FarmID: 1, Action: "Status Updated"}
	}
	return events
}

func TestShipBatchMarksDeliveredEvents(t *testing.T) {
	outbox := &fakeOutbox{pending: stagedEvents(3)}
	sink := &recordingSink{}
	r := NewRelay(outbox, sink)

	require.NoError(t, r.shipBatch(context.Background()))

	assert.Len(t, sink.all(), 3)
	assert.Equal(t, []string{"a", "b", "c"}, outbox.relayed)
	assert.Empty(t, outbox.pending)
}

func TestShipBatchEmptyOutboxIsNoop(t *testing.T) {
	outbox := &fakeOutbox{}
	sink := &recordingSink{}
	r := NewRelay(outbox, sink)

	require.NoError(t, r.shipBatch(context.Background()))
	assert.Empty(t, sink.all())
	assert.Empty(t, outbox.relayed)
}

func TestShipBatchRespectsBatchSize(t *testing.T) {
	outbox := &fakeOutbox{pending: stagedEvents(5)}
	sink := &recordingSink{}
	r := NewRelay(outbox, sink, WithRelayBatch(2))

	require.NoError(t, r.shipBatch(context.Background()))
	assert.Len(t, sink.all(), 2)
	assert.Len(t, outbox.pending, 3)
}

func TestShipBatchKeepsUndeliveredEvents(t *testing.T) {
	outbox := &fakeOutbox{pending: stagedEvents(3)}
	failAfter := &failAfterSink{inner: &recordingSink{}, allow: 1}
	r := NewRelay(outbox, failAfter)

	// Only the delivered prefix is marked; the rest stays pending for the
	// next tick, so nothing is lost.
	require.NoError(t, r.shipBatch(context.Background()))
	assert.Equal(t, []string{"a"}, outbox.relayed)
	assert.Len(t, outbox.pending, 2)

	failAfter.allow = 10
	require.NoError(t, r.shipBatch(context.Background()))
	assert.Equal(t, []string{"a", "b", "c"}, outbox.relayed)
	assert.Empty(t, outbox.pending)
}

func TestShipBatchSurfacesOutboxError(t *testing.T) {
	boom := errors.New("db down")
	r := NewRelay(&fakeOutbox{err: boom}, &recordingSink{})

	assert.ErrorIs(t, r.shipBatch(context.Background()), boom)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	outbox := &fakeOutbox{pending: stagedEvents(1)}
	sink := &recordingSink{}
	r := NewRelay(outbox, sink, WithRelayInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return len(sink.all()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}

type failAfterSink struct {
	inner *recordingSink
	allow int
	seen  int
}

func (s *failAfterSink) Append(ctx context.Context, event Event) error {
	s.seen++
	if s.seen > s.allow {
		return errors.New("broker unavailable")
	}
	return s.inner.Append(ctx, event)
}
