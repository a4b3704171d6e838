package scheduling

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventAppointmentScheduled = "appointment-scheduled"
	EventAppointmentUpdated   = "appointment-updated"
	EventAppointmentConfirmed = "appointment-confirmed"
)

// AppointmentSnapshot captures the appointment fields an event carries out
// of the aggregate. Events hold a copy, not the live entity, so observers
// never see later mutations.
type AppointmentSnapshot struct {
	AppointmentID          uuid.UUID  `json:"appointmentId"`
	ScheduleID             uuid.UUID  `json:"scheduleId"`
	ClientID               int        `json:"clientId"`
	PatientID              int        `json:"patientId"`
	RoomID                 int        `json:"roomId"`
	DoctorID               int        `json:"doctorId"`
	AppointmentTypeID      int        `json:"appointmentTypeId"`
	Start                  time.Time  `json:"start"`
	End                    time.Time  `json:"end"`
	Title                  string     `json:"title"`
	ConfirmedAt            *time.Time `json:"confirmedAt,omitempty"`
	PotentiallyConflicting bool       `json:"potentiallyConflicting"`
}

type appointmentEvent struct {
	eventType  string
	occurredAt time.Time

	Appointment AppointmentSnapshot
}

func (e appointmentEvent) EventType() string     { return e.eventType }
func (e appointmentEvent) OccurredAt() time.Time { return e.occurredAt }

// AggregateID is the schedule the appointment belongs to; the schedule is
// the consistency boundary events are attributed to.
func (e appointmentEvent) AggregateID() uuid.UUID { return e.Appointment.ScheduleID }

func (e appointmentEvent) Snapshot() AppointmentSnapshot { return e.Appointment }

type AppointmentScheduled struct{ appointmentEvent }
type AppointmentUpdated struct{ appointmentEvent }
type AppointmentConfirmed struct{ appointmentEvent }

func newAppointmentScheduled(a *Appointment) AppointmentScheduled {
	return AppointmentScheduled{appointmentEvent{
		eventType:   EventAppointmentScheduled,
		occurredAt:  time.Now().UTC(),
		Appointment: a.Snapshot(),
	}}
}

func newAppointmentUpdated(a *Appointment) AppointmentUpdated {
	return AppointmentUpdated{appointmentEvent{
		eventType:   EventAppointmentUpdated,
		occurredAt:  time.Now().UTC(),
		Appointment: a.Snapshot(),
	}}
}

func newAppointmentConfirmed(a *Appointment) AppointmentConfirmed {
	return AppointmentConfirmed{appointmentEvent{
		eventType:   EventAppointmentConfirmed,
		occurredAt:  time.Now().UTC(),
		Appointment: a.Snapshot(),
	}}
}
