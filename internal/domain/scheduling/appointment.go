package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/frontdesk-backend/internal/domain/aggregates"
	"github.com/vetdesk/frontdesk-backend/internal/domain/entity"
	"github.com/vetdesk/frontdesk-backend/internal/domain/synced"
)

// Appointment is one scheduled visit. It only ever comes into existence
// through Schedule.AddNewAppointment and is only ever mutated through the
// named operations below; fields stay unexported so nothing outside this
// package can reach around them.
//
// Appointment holds no back-reference to its Schedule. Mutations that can
// change overlap status instead take an onUpdated callback the owning
// Schedule supplies (its AppointmentUpdatedHandler), which keeps the
// ownership graph acyclic.
type Appointment struct {
	entity.Base[uuid.UUID]

	scheduleID            uuid.UUID
	clientID              int
	patientID             int
	roomID                int
	doctorID              int
	appointmentTypeID     int
	insuranceID           uuid.UUID
	insurancePolicyNumber string
	timeRange             TimeRange
	title                 string
	confirmedAt           *time.Time

	// potentiallyConflicting is derived; the Schedule recomputes it and
	// callers never set it directly.
	potentiallyConflicting bool
}

// NewAppointment guards every foreign identity and required field so an
// appointment can never exist partially constructed.
func NewAppointment(
	id uuid.UUID,
	appointmentTypeID int,
	scheduleID uuid.UUID,
	clientID int,
	doctorID int,
	patientID int,
	roomID int,
	timeRange TimeRange,
	title string,
	insuranceID uuid.UUID,
	insurancePolicyNumber string,
	confirmedAt *time.Time,
) (*Appointment, error) {
	const op = "scheduling.NewAppointment"
	if id == uuid.Nil {
		return nil, aggregates.Validation(op, "missing appointment id")
	}
	if scheduleID == uuid.Nil {
		return nil, aggregates.Validation(op, "missing schedule id")
	}
	if insuranceID == uuid.Nil {
		return nil, aggregates.Validation(op, "missing insurance id")
	}
	if appointmentTypeID <= 0 {
		return nil, aggregates.Validation(op, "appointment type id must be positive")
	}
	if clientID <= 0 {
		return nil, aggregates.Validation(op, "client id must be positive")
	}
	if doctorID <= 0 {
		return nil, aggregates.Validation(op, "doctor id must be positive")
	}
	if patientID <= 0 {
		return nil, aggregates.Validation(op, "patient id must be positive")
	}
	if roomID <= 0 {
		return nil, aggregates.Validation(op, "room id must be positive")
	}
	if timeRange.IsZero() {
		return nil, aggregates.Validation(op, "missing time range")
	}
	if title == "" {
		return nil, aggregates.Validation(op, "missing title")
	}
	if insurancePolicyNumber == "" {
		return nil, aggregates.Validation(op, "missing insurance policy number")
	}
	return &Appointment{
		Base:                  entity.NewBase(id),
		scheduleID:            scheduleID,
		clientID:              clientID,
		patientID:             patientID,
		roomID:                roomID,
		doctorID:              doctorID,
		appointmentTypeID:     appointmentTypeID,
		insuranceID:           insuranceID,
		insurancePolicyNumber: insurancePolicyNumber,
		timeRange:             timeRange,
		title:                 title,
		confirmedAt:           confirmedAt,
	}, nil
}

func (a *Appointment) ScheduleID() uuid.UUID          { return a.scheduleID }
func (a *Appointment) ClientID() int                  { return a.clientID }
func (a *Appointment) PatientID() int                 { return a.patientID }
func (a *Appointment) RoomID() int                    { return a.roomID }
func (a *Appointment) DoctorID() int                  { return a.doctorID }
func (a *Appointment) AppointmentTypeID() int         { return a.appointmentTypeID }
func (a *Appointment) InsuranceID() uuid.UUID         { return a.insuranceID }
func (a *Appointment) InsurancePolicyNumber() string  { return a.insurancePolicyNumber }
func (a *Appointment) TimeRange() TimeRange           { return a.timeRange }
func (a *Appointment) Title() string                  { return a.title }
func (a *Appointment) IsPotentiallyConflicting() bool { return a.potentiallyConflicting }

func (a *Appointment) ConfirmedAt() *time.Time {
	if a.confirmedAt == nil {
		return nil
	}
	t := *a.confirmedAt
	return &t
}

func (a *Appointment) Snapshot() AppointmentSnapshot {
	return AppointmentSnapshot{
		AppointmentID:          a.ID(),
		ScheduleID:             a.scheduleID,
		ClientID:               a.clientID,
		PatientID:              a.patientID,
		RoomID:                 a.roomID,
		DoctorID:               a.doctorID,
		AppointmentTypeID:      a.appointmentTypeID,
		Start:                  a.timeRange.Start(),
		End:                    a.timeRange.End(),
		Title:                  a.title,
		ConfirmedAt:            a.ConfirmedAt(),
		PotentiallyConflicting: a.potentiallyConflicting,
	}
}

// UpdateRoom reassigns the room. Equal input is a no-op so redelivered or
// repeated commands don't raise event storms.
func (a *Appointment) UpdateRoom(newRoomID int) error {
	if newRoomID <= 0 {
		return aggregates.Validation("scheduling.Appointment.UpdateRoom", "room id must be positive")
	}
	if newRoomID == a.roomID {
		return nil
	}
	a.roomID = newRoomID
	a.RecordEvent(newAppointmentUpdated(a))
	return nil
}

func (a *Appointment) UpdateDoctor(newDoctorID int) error {
	if newDoctorID <= 0 {
		return aggregates.Validation("scheduling.Appointment.UpdateDoctor", "doctor id must be positive")
	}
	if newDoctorID == a.doctorID {
		return nil
	}
	a.doctorID = newDoctorID
	a.RecordEvent(newAppointmentUpdated(a))
	return nil
}

// UpdateStartTime re-anchors the time range, preserving its duration. The
// onUpdated hook runs before the event is recorded so conflict detection
// sees the new range.
func (a *Appointment) UpdateStartTime(newStart time.Time, onUpdated func()) error {
	if newStart.Equal(a.timeRange.Start()) {
		return nil
	}
	tr, err := a.timeRange.WithNewStart(newStart)
	if err != nil {
		return err
	}
	a.timeRange = tr
	if onUpdated != nil {
		onUpdated()
	}
	a.RecordEvent(newAppointmentUpdated(a))
	return nil
}

// UpdateAppointmentType recomputes the range end from the new type's
// duration.
func (a *Appointment) UpdateAppointmentType(appointmentType *synced.AppointmentType, onUpdated func()) error {
	const op = "scheduling.Appointment.UpdateAppointmentType"
	if appointmentType == nil {
		return aggregates.Validation(op, "missing appointment type")
	}
	if appointmentType.ID == a.appointmentTypeID {
		return nil
	}
	tr, err := NewTimeRangeWithDuration(a.timeRange.Start(), appointmentType.Duration)
	if err != nil {
		return err
	}
	a.appointmentTypeID = appointmentType.ID
	a.timeRange = tr
	if onUpdated != nil {
		onUpdated()
	}
	a.RecordEvent(newAppointmentUpdated(a))
	return nil
}

func (a *Appointment) UpdateTitle(newTitle string) error {
	if newTitle == "" {
		return aggregates.Validation("scheduling.Appointment.UpdateTitle", "missing title")
	}
	if newTitle == a.title {
		return nil
	}
	a.title = newTitle
	a.RecordEvent(newAppointmentUpdated(a))
	return nil
}

// Confirm is idempotent; a confirmation cannot be rescinded through this
// path, so a second call is a no-op.
func (a *Appointment) Confirm(confirmedAt time.Time) {
	if a.confirmedAt != nil {
		return
	}
	t := confirmedAt
	a.confirmedAt = &t
	a.RecordEvent(newAppointmentConfirmed(a))
}
