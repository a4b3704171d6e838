package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/frontdesk-backend/internal/observability"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

// PendingMessage is a committed outbox row awaiting publication.
type PendingMessage struct {
	ID      uuid.UUID
	Channel string
	Body    []byte
}

// OutboxSource is the slice of the outbox the dispatcher needs.
type OutboxSource interface {
	Pending(ctx context.Context, limit int) ([]PendingMessage, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Dispatcher drains the outbox and publishes to the bus in sequence order.
// A message is marked published only after Publish succeeds, so a crash or
// transport failure replays it on the next pass: at-least-once, with order
// preserved per database because the pass stops at the first failure.
type Dispatcher struct {
	log      *logger.Logger
	bus      Bus
	source   OutboxSource
	metrics  *observability.Metrics
	interval time.Duration
	batch    int
}

func NewDispatcher(bus Bus, source OutboxSource, metrics *observability.Metrics, interval time.Duration, baseLog *logger.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Dispatcher{
		log:      baseLog.With("service", "OutboxDispatcher"),
		bus:      bus,
		source:   source,
		metrics:  metrics,
		interval: interval,
		batch:    100,
	}
}

// Run blocks until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Drain(ctx); err != nil && ctx.Err() == nil {
				d.log.Warn("outbox drain failed, will retry", "error", err)
			}
		}
	}
}

// Drain publishes one batch. Exported so tests and shutdown paths can flush
// synchronously.
func (d *Dispatcher) Drain(ctx context.Context) error {
	msgs, err := d.source.Pending(ctx, d.batch)
	if err != nil {
		return err
	}
	published := make([]uuid.UUID, 0, len(msgs))
	var publishErr error
	for _, m := range msgs {
		if err := d.bus.Publish(ctx, m.Channel, m.Body); err != nil {
			// stop at the first failure to keep sequence order
			publishErr = err
			break
		}
		published = append(published, m.ID)
		d.metrics.IncPublished(m.Channel)
	}
	if len(published) > 0 {
		if err := d.source.MarkPublished(ctx, published); err != nil {
			// the rows stay pending and will be republished; consumers
			// are idempotent, so the duplicate is harmless
			return err
		}
	}
	return publishErr
}
