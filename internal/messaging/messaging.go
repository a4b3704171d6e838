// Package messaging defines the transport port between the two bounded
// contexts and the wire shapes that cross it. Delivery is at-least-once and
// unordered across aggregates; consumers must be idempotent.
package messaging

import (
	"context"
	"time"
)

// Each producing context publishes on its own logical channel; consumers
// bind the channel of the context they follow.
const (
	// ChannelClinicManagement carries reference-data integration events
	// from clinic management to the front desk.
	ChannelClinicManagement = "clinicmanagement-frontdesk"
	// ChannelFrontDesk carries schedule domain envelopes out of the front
	// desk (confirmation emails, public site, ...).
	ChannelFrontDesk = "frontdesk-clinicmanagement"
)

const (
	EventEntityCreated = "entity-created"
	EventEntityUpdated = "entity-updated"
)

// EntityKind enumerates the synced reference kinds.
const (
	KindDoctor              = "Doctor"
	KindDoctorAssistant     = "DoctorAssistant"
	KindDoctorSpecialtyType = "DoctorSpecialtyType"
	KindClient              = "Client"
	KindPatient             = "Patient"
	KindRoom                = "Room"
	KindAppointmentType     = "AppointmentType"
)

func ValidEntityKind(kind string) bool {
	switch kind {
	case KindDoctor, KindDoctorAssistant, KindDoctorSpecialtyType,
		KindClient, KindPatient, KindRoom, KindAppointmentType:
		return true
	}
	return false
}

// IntegrationEvent is the cross-context wire contract. Fields is a full
// field map, not a delta: applying it is a full replace, which keeps the
// consumer idempotent under redelivery. OccurredAt orders logically
// out-of-order deliveries.
type IntegrationEvent struct {
	EventType  string            `json:"eventType"`
	EntityID   int               `json:"entityId"`
	EntityKind string            `json:"entityKind"`
	Fields     map[string]string `json:"fields"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// DomainEnvelope is the intra-context shape schedule domain events travel
// in once the outbox dispatcher hands them to the transport.
type DomainEnvelope struct {
	EventType   string    `json:"eventType"`
	AggregateID string    `json:"aggregateId"`
	OccurredAt  time.Time `json:"occurredAt"`
	Snapshot    any       `json:"snapshot"`
}

// Bus is the message-transport port. Publish is fire-and-forget with
// at-least-once semantics toward subscribers; Subscribe binds a handler to
// a channel until ctx is canceled. Handler failures are the handler's to
// absorb — the bus never stops the loop for them.
type Bus interface {
	Publish(ctx context.Context, channel string, body []byte) error
	Subscribe(ctx context.Context, channel string, handle func(ctx context.Context, body []byte)) error
	Close() error
}
