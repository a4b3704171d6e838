// Package sync applies clinic-management integration events to the front
// desk's reference projections. It is the only writer of those rows.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	syncedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/synced"
	"github.com/vetdesk/frontdesk-backend/internal/domain/synced"
	"github.com/vetdesk/frontdesk-backend/internal/messaging"
	"github.com/vetdesk/frontdesk-backend/internal/observability"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

// Store is the projection write port the consumer applies events through.
type Store = syncedrepo.Writer

type Consumer struct {
	bus     messaging.Bus
	store   Store
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewConsumer(bus messaging.Bus, store Store, baseLog *logger.Logger, metrics *observability.Metrics) *Consumer {
	return &Consumer{
		bus:     bus,
		store:   store,
		log:     baseLog.With("service", "SyncConsumer"),
		metrics: metrics,
	}
}

// Run binds the consumer to the clinic-management channel until ctx ends.
// Apply failures are logged and dropped; redelivery is the transport's job
// and applying is idempotent either way.
func (c *Consumer) Run(ctx context.Context) error {
	return c.bus.Subscribe(ctx, messaging.ChannelClinicManagement, func(ctx context.Context, body []byte) {
		if err := c.Apply(ctx, body); err != nil {
			c.log.Warn("dropping integration event", "error", err)
		}
	})
}

// Apply decodes and applies one integration event. Stale and duplicate
// deliveries return nil after a skip; malformed payloads return an error.
func (c *Consumer) Apply(ctx context.Context, body []byte) error {
	var ev messaging.IntegrationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode integration event: %w", err)
	}
	switch ev.EventType {
	case messaging.EventEntityCreated, messaging.EventEntityUpdated:
	default:
		return fmt.Errorf("unknown event type %q", ev.EventType)
	}
	if !messaging.ValidEntityKind(ev.EntityKind) {
		return fmt.Errorf("unknown entity kind %q", ev.EntityKind)
	}
	if ev.EntityID <= 0 {
		return fmt.Errorf("invalid entity id %d", ev.EntityID)
	}
	if ev.OccurredAt.IsZero() {
		return fmt.Errorf("missing occurredAt for %s %d", ev.EntityKind, ev.EntityID)
	}

	applied, err := c.apply(dbctx.Context{Ctx: ctx}, ev)
	if err != nil {
		return fmt.Errorf("apply %s %s %d: %w", ev.EventType, ev.EntityKind, ev.EntityID, err)
	}
	if applied {
		c.metrics.IncSyncApplied(ev.EntityKind)
		c.log.Info("applied integration event",
			"eventType", ev.EventType, "entityKind", ev.EntityKind, "entityId", ev.EntityID)
	} else {
		c.metrics.IncSyncSkipped(ev.EntityKind)
		c.log.Debug("skipped stale integration event",
			"eventType", ev.EventType, "entityKind", ev.EntityKind, "entityId", ev.EntityID)
	}
	return nil
}

func (c *Consumer) apply(dbc dbctx.Context, ev messaging.IntegrationEvent) (bool, error) {
	f := fieldReader{fields: ev.Fields}
	id := ev.EntityID
	at := ev.OccurredAt
	switch ev.EntityKind {
	case messaging.KindDoctor:
		return c.store.UpsertDoctor(dbc, synced.Doctor{
			ID: id, Name: f.str("name"), LastEventAt: at,
		})
	case messaging.KindDoctorAssistant:
		return c.store.UpsertDoctorAssistant(dbc, synced.DoctorAssistant{
			ID: id, Name: f.str("name"), LastEventAt: at,
		})
	case messaging.KindDoctorSpecialtyType:
		return c.store.UpsertDoctorSpecialtyType(dbc, synced.DoctorSpecialtyType{
			ID: id, Name: f.str("name"), Description: f.str("description"), LastEventAt: at,
		})
	case messaging.KindClient:
		return c.store.UpsertClient(dbc, synced.Client{
			ID:                id,
			FullName:          f.str("fullName"),
			PreferredName:     f.str("preferredName"),
			Salutation:        f.str("salutation"),
			EmailAddress:      f.str("emailAddress"),
			PreferredDoctorID: f.num("preferredDoctorId"),
			LastEventAt:       at,
		})
	case messaging.KindPatient:
		return c.store.UpsertPatient(dbc, synced.Patient{
			ID:                id,
			ClientID:          f.num("clientId"),
			Name:              f.str("name"),
			Species:           f.str("species"),
			Breed:             f.str("breed"),
			Sex:               f.str("sex"),
			PreferredDoctorID: f.num("preferredDoctorId"),
			LastEventAt:       at,
		})
	case messaging.KindRoom:
		return c.store.UpsertRoom(dbc, synced.Room{
			ID: id, Name: f.str("name"), LastEventAt: at,
		})
	case messaging.KindAppointmentType:
		return c.store.UpsertAppointmentType(dbc, synced.AppointmentType{
			ID:          id,
			Name:        f.str("name"),
			Code:        f.str("code"),
			Duration:    f.num("duration"),
			LastEventAt: at,
		})
	}
	return false, fmt.Errorf("unhandled entity kind %q", ev.EntityKind)
}

type fieldReader struct {
	fields map[string]string
}

func (f fieldReader) str(key string) string { return f.fields[key] }

func (f fieldReader) num(key string) int {
	n, err := strconv.Atoi(f.fields[key])
	if err != nil {
		return 0
	}
	return n
}
