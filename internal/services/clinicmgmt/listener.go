package clinicmgmt

import (
	"context"
	"encoding/json"

	"github.com/vetdesk/frontdesk-backend/internal/messaging"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

// Listener follows the front desk's schedule envelopes. Today it records
// scheduled and confirmed appointments; the confirmation-email sender hangs
// off the same hook once an SMTP provider is wired.
type Listener struct {
	bus messaging.Bus
	log *logger.Logger
}

func NewListener(bus messaging.Bus, baseLog *logger.Logger) *Listener {
	return &Listener{bus: bus, log: baseLog.With("service", "FrontDeskListener")}
}

func (l *Listener) Run(ctx context.Context) error {
	return l.bus.Subscribe(ctx, messaging.ChannelFrontDesk, func(ctx context.Context, body []byte) {
		var env messaging.DomainEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			l.log.Warn("dropping malformed schedule envelope", "error", err)
			return
		}
		l.log.Info("schedule event received",
			"eventType", env.EventType,
			"aggregateId", env.AggregateID,
			"occurredAt", env.OccurredAt,
		)
	})
}
