package messaging

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/vetdesk/frontdesk-backend/internal/observability"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

type fakeBus struct {
	published []PendingMessage
	failAfter int // publish calls before failing; -1 never fails
}

func (b *fakeBus) Publish(_ context.Context, channel string, body []byte) error {
	if b.failAfter >= 0 && len(b.published) >= b.failAfter {
		return errors.New("transport down")
	}
	b.published = append(b.published, PendingMessage{Channel: channel, Body: body})
	return nil
}

func (b *fakeBus) Subscribe(context.Context, string, func(context.Context, []byte)) error {
	return nil
}

func (b *fakeBus) Close() error { return nil }

type fakeSource struct {
	pending []PendingMessage
	marked  []uuid.UUID
}

func (s *fakeSource) Pending(_ context.Context, limit int) ([]PendingMessage, error) {
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeSource) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	s.marked = append(s.marked, ids...)
	remaining := s.pending[:0]
	for _, m := range s.pending {
		published := false
		for _, id := range ids {
			if m.ID == id {
				published = true
				break
			}
		}
		if !published {
			remaining = append(remaining, m)
		}
	}
	s.pending = remaining
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func pendingMessages(n int) []PendingMessage {
	out := make([]PendingMessage, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, PendingMessage{
			ID:      uuid.New(),
			Channel: ChannelFrontDesk,
			Body:    []byte(fmt.Sprintf(`{"seq":%d}`, i)),
		})
	}
	return out
}

func TestDrainPublishesInOrderAndMarks(t *testing.T) {
	bus := &fakeBus{failAfter: -1}
	source := &fakeSource{pending: pendingMessages(3)}
	want := make([]uuid.UUID, 0, 3)
	for _, m := range source.pending {
		want = append(want, m.ID)
	}

	d := NewDispatcher(bus, source, observability.NewMetrics(), 0, testLogger(t))
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	if len(bus.published) != 3 {
		t.Fatalf("published %d messages, want 3", len(bus.published))
	}
	for i, body := range bus.published {
		if string(body.Body) != fmt.Sprintf(`{"seq":%d}`, i) {
			t.Fatalf("message %d out of order: %s", i, body.Body)
		}
	}
	if len(source.marked) != 3 {
		t.Fatalf("marked %d messages, want 3", len(source.marked))
	}
	for i, id := range source.marked {
		if id != want[i] {
			t.Fatalf("marked id %d = %v, want %v", i, id, want[i])
		}
	}
	if len(source.pending) != 0 {
		t.Fatalf("%d messages still pending", len(source.pending))
	}
}

func TestDrainStopsAtFirstPublishFailure(t *testing.T) {
	bus := &fakeBus{failAfter: 1}
	source := &fakeSource{pending: pendingMessages(3)}

	d := NewDispatcher(bus, source, observability.NewMetrics(), 0, testLogger(t))
	if err := d.Drain(context.Background()); err == nil {
		t.Fatal("Drain should surface the publish failure")
	}

	// only the message that made it out is marked; the rest stay pending in
	// their original order
	if len(bus.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(bus.published))
	}
	if len(source.marked) != 1 {
		t.Fatalf("marked %d messages, want 1", len(source.marked))
	}
	if len(source.pending) != 2 {
		t.Fatalf("%d messages pending, want 2", len(source.pending))
	}

	// transport recovers; the next pass publishes the remainder in order
	bus.failAfter = -1
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("second Drain: %v", err)
	}
	if len(bus.published) != 3 {
		t.Fatalf("published %d messages after recovery, want 3", len(bus.published))
	}
	for i, body := range bus.published {
		if string(body.Body) != fmt.Sprintf(`{"seq":%d}`, i) {
			t.Fatalf("message %d out of order after recovery: %s", i, body.Body)
		}
	}
}

func TestDrainCountsPublishedPerChannel(t *testing.T) {
	bus := &fakeBus{failAfter: 2}
	source := &fakeSource{pending: pendingMessages(3)}
	metrics := observability.NewMetrics()

	d := NewDispatcher(bus, source, metrics, 0, testLogger(t))
	if err := d.Drain(context.Background()); err == nil {
		t.Fatal("Drain should surface the publish failure")
	}

	// only the two messages that actually went out count
	snap := metrics.Snapshot()
	key := "outbox_published_total{" + ChannelFrontDesk + "}"
	if snap[key] != 2 {
		t.Fatalf("%s = %d, want 2", key, snap[key])
	}
}

func TestDrainWithNothingPendingIsANoOp(t *testing.T) {
	bus := &fakeBus{failAfter: -1}
	source := &fakeSource{}

	d := NewDispatcher(bus, source, observability.NewMetrics(), 0, testLogger(t))
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(bus.published) != 0 || len(source.marked) != 0 {
		t.Fatal("empty outbox should publish and mark nothing")
	}
}
