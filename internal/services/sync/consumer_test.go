package sync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/vetdesk/frontdesk-backend/internal/domain/synced"
	"github.com/vetdesk/frontdesk-backend/internal/messaging"
	"github.com/vetdesk/frontdesk-backend/internal/observability"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

// memStore mirrors the repository's apply rule: insert when absent, replace
// when newer, skip otherwise.
type memStore struct {
	doctors map[int]synced.Doctor
	clients map[int]synced.Client
	types   map[int]synced.AppointmentType
	rooms   map[int]synced.Room
}

func newMemStore() *memStore {
	return &memStore{
		doctors: map[int]synced.Doctor{},
		clients: map[int]synced.Client{},
		types:   map[int]synced.AppointmentType{},
		rooms:   map[int]synced.Room{},
	}
}

func applyRow[T any](rows map[int]T, id int, eventAt time.Time, lastEventAt func(T) time.Time, row T) (bool, error) {
	existing, ok := rows[id]
	if ok && !eventAt.After(lastEventAt(existing)) {
		return false, nil
	}
	rows[id] = row
	return true, nil
}

func (s *memStore) UpsertDoctor(_ dbctx.Context, d synced.Doctor) (bool, error) {
	return applyRow(s.doctors, d.ID, d.LastEventAt, func(r synced.Doctor) time.Time { return r.LastEventAt }, d)
}

func (s *memStore) UpsertDoctorAssistant(dbctx.Context, synced.DoctorAssistant) (bool, error) {
	return true, nil
}

func (s *memStore) UpsertDoctorSpecialtyType(dbctx.Context, synced.DoctorSpecialtyType) (bool, error) {
	return true, nil
}

func (s *memStore) UpsertClient(_ dbctx.Context, c synced.Client) (bool, error) {
	return applyRow(s.clients, c.ID, c.LastEventAt, func(r synced.Client) time.Time { return r.LastEventAt }, c)
}

func (s *memStore) UpsertPatient(dbctx.Context, synced.Patient) (bool, error) {
	return true, nil
}

func (s *memStore) UpsertRoom(_ dbctx.Context, r synced.Room) (bool, error) {
	return applyRow(s.rooms, r.ID, r.LastEventAt, func(row synced.Room) time.Time { return row.LastEventAt }, r)
}

func (s *memStore) UpsertAppointmentType(_ dbctx.Context, t synced.AppointmentType) (bool, error) {
	return applyRow(s.types, t.ID, t.LastEventAt, func(r synced.AppointmentType) time.Time { return r.LastEventAt }, t)
}

func newTestConsumer(t *testing.T) (*Consumer, *memStore) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	store := newMemStore()
	return NewConsumer(nil, store, log, observability.NewMetrics()), store
}

func encode(t *testing.T, ev messaging.IntegrationEvent) []byte {
	t.Helper()
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return body
}

func TestApplyCreatesProjection(t *testing.T) {
	c, store := newTestConsumer(t)
	at := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	err := c.Apply(context.Background(), encode(t, messaging.IntegrationEvent{
		EventType:  messaging.EventEntityCreated,
		EntityID:   4,
		EntityKind: messaging.KindAppointmentType,
		Fields:     map[string]string{"name": "Wellness Exam", "code": "WE", "duration": "30"},
		OccurredAt: at,
	}))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, ok := store.types[4]
	if !ok {
		t.Fatal("projection row was not created")
	}
	if got.Name != "Wellness Exam" || got.Code != "WE" || got.Duration != 30 {
		t.Fatalf("projection = %+v", got)
	}
	if !got.LastEventAt.Equal(at) {
		t.Fatalf("lastEventAt = %v, want %v", got.LastEventAt, at)
	}
}

func TestApplyReplacesWithNewerEvent(t *testing.T) {
	c, store := newTestConsumer(t)
	at := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	created := messaging.IntegrationEvent{
		EventType:  messaging.EventEntityCreated,
		EntityID:   1,
		EntityKind: messaging.KindDoctor,
		Fields:     map[string]string{"name": "Dr. Smith"},
		OccurredAt: at,
	}
	if err := c.Apply(context.Background(), encode(t, created)); err != nil {
		t.Fatalf("Apply created: %v", err)
	}

	updated := created
	updated.EventType = messaging.EventEntityUpdated
	updated.Fields = map[string]string{"name": "Dr. Smith-Jones"}
	updated.OccurredAt = at.Add(time.Minute)
	if err := c.Apply(context.Background(), encode(t, updated)); err != nil {
		t.Fatalf("Apply updated: %v", err)
	}

	if got := store.doctors[1].Name; got != "Dr. Smith-Jones" {
		t.Fatalf("doctor name = %q, want the updated one", got)
	}
}

func TestApplySkipsStaleAndDuplicateEvents(t *testing.T) {
	c, store := newTestConsumer(t)
	at := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	newer := messaging.IntegrationEvent{
		EventType:  messaging.EventEntityUpdated,
		EntityID:   1,
		EntityKind: messaging.KindDoctor,
		Fields:     map[string]string{"name": "Dr. Current"},
		OccurredAt: at.Add(time.Hour),
	}
	if err := c.Apply(context.Background(), encode(t, newer)); err != nil {
		t.Fatalf("Apply newer: %v", err)
	}

	// the created event arrives late, out of order
	stale := messaging.IntegrationEvent{
		EventType:  messaging.EventEntityCreated,
		EntityID:   1,
		EntityKind: messaging.KindDoctor,
		Fields:     map[string]string{"name": "Dr. Original"},
		OccurredAt: at,
	}
	if err := c.Apply(context.Background(), encode(t, stale)); err != nil {
		t.Fatalf("Apply stale: %v", err)
	}
	if got := store.doctors[1].Name; got != "Dr. Current" {
		t.Fatalf("stale event overwrote projection: name = %q", got)
	}

	// exact redelivery of the newer event is also a no-op
	if err := c.Apply(context.Background(), encode(t, newer)); err != nil {
		t.Fatalf("Apply redelivery: %v", err)
	}
	if got := store.doctors[1].Name; got != "Dr. Current" {
		t.Fatalf("redelivery changed projection: name = %q", got)
	}
}

func TestApplyRejectsMalformedEvents(t *testing.T) {
	c, _ := newTestConsumer(t)
	at := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	if err := c.Apply(context.Background(), []byte("not json")); err == nil {
		t.Fatal("malformed body should error")
	}

	bad := []messaging.IntegrationEvent{
		{EventType: "entity-archived", EntityID: 1, EntityKind: messaging.KindDoctor, OccurredAt: at},
		{EventType: messaging.EventEntityCreated, EntityID: 1, EntityKind: "Invoice", OccurredAt: at},
		{EventType: messaging.EventEntityCreated, EntityID: 0, EntityKind: messaging.KindDoctor, OccurredAt: at},
		{EventType: messaging.EventEntityCreated, EntityID: 1, EntityKind: messaging.KindDoctor},
	}
	for i, ev := range bad {
		if err := c.Apply(context.Background(), encode(t, ev)); err == nil {
			t.Fatalf("event %d should be rejected", i)
		}
	}
}

func TestApplyParsesNumericFields(t *testing.T) {
	c, store := newTestConsumer(t)
	at := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	err := c.Apply(context.Background(), encode(t, messaging.IntegrationEvent{
		EventType:  messaging.EventEntityCreated,
		EntityID:   7,
		EntityKind: messaging.KindClient,
		Fields: map[string]string{
			"fullName":          "Pat Jones",
			"preferredDoctorId": "3",
		},
		OccurredAt: at,
	}))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := store.clients[7]
	if got.FullName != "Pat Jones" || got.PreferredDoctorID != 3 {
		t.Fatalf("client projection = %+v", got)
	}
}
