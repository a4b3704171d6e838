// Package contracts declares the aggregate command ports and their
// input/view DTOs. It sits above the domain packages so the ports can
// speak in domain types while the error taxonomy stays a leaf package.
package contracts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/frontdesk-backend/internal/domain/scheduling"
)

// Contract describes aggregate-level policy expectations.
type Contract struct {
	Name string
	// OwnsWriteTx: write methods start and manage their own atomic DB
	// transaction, including the outbox append.
	OwnsWriteTx bool
	// InvariantScopedReads: reads inside write flows are limited to what
	// invariant decisions need; broad queries stay on the repos.
	InvariantScopedReads bool
	Notes                string
}

// Aggregate is the common marker for all aggregate ports.
type Aggregate interface {
	Contract() Contract
}

var ScheduleAggregateContract = Contract{
	Name:                 "FrontDesk.ScheduleAggregate",
	OwnsWriteTx:          true,
	InvariantScopedReads: true,
	Notes:                "Owns appointment lifecycle, patient double-booking detection, and transactional outbox writes for schedule commands.",
}

// ScheduleAggregate is the command port over a clinic schedule. Every write
// loads the schedule for the input window, runs the domain operation, and
// commits state plus drained domain events (outbox) in one transaction.
//
// Failures return *aggregates.Error: CodeValidation for rejected input,
// CodeConflict for duplicate appointments and optimistic-concurrency loss,
// CodeNotFound for unresolved identities.
type ScheduleAggregate interface {
	Aggregate

	CreateSchedule(ctx context.Context, in CreateScheduleInput) (ScheduleView, error)
	ScheduleAppointment(ctx context.Context, in ScheduleAppointmentInput) (AppointmentView, error)
	CancelAppointment(ctx context.Context, in AppointmentRefInput) error
	RescheduleAppointment(ctx context.Context, in RescheduleAppointmentInput) (AppointmentView, error)
	ChangeRoom(ctx context.Context, in ChangeRoomInput) (AppointmentView, error)
	ChangeDoctor(ctx context.Context, in ChangeDoctorInput) (AppointmentView, error)
	ChangeAppointmentType(ctx context.Context, in ChangeAppointmentTypeInput) (AppointmentView, error)
	RetitleAppointment(ctx context.Context, in RetitleAppointmentInput) (AppointmentView, error)
	ConfirmAppointment(ctx context.Context, in ConfirmAppointmentInput) (AppointmentView, error)
}

type CreateScheduleInput struct {
	ScheduleID uuid.UUID
	ClinicID   int
}

type ScheduleAppointmentInput struct {
	ScheduleID        uuid.UUID
	Window            scheduling.TimeRange
	AppointmentID     uuid.UUID
	AppointmentTypeID int
	ClientID          int
	DoctorID          int
	PatientID         int
	RoomID            int
	Start             time.Time
	Title             string
	InsuranceID       uuid.UUID
	PolicyNumber      string
}

// AppointmentRefInput addresses one appointment inside a loaded window.
type AppointmentRefInput struct {
	ScheduleID    uuid.UUID
	Window        scheduling.TimeRange
	AppointmentID uuid.UUID
}

type RescheduleAppointmentInput struct {
	AppointmentRefInput
	NewStart time.Time
}

type ChangeRoomInput struct {
	AppointmentRefInput
	NewRoomID int
}

type ChangeDoctorInput struct {
	AppointmentRefInput
	NewDoctorID int
}

type ChangeAppointmentTypeInput struct {
	AppointmentRefInput
	NewAppointmentTypeID int
}

type RetitleAppointmentInput struct {
	AppointmentRefInput
	NewTitle string
}

type ConfirmAppointmentInput struct {
	AppointmentRefInput
	ConfirmedAt time.Time
}

type ScheduleView struct {
	ScheduleID   uuid.UUID
	ClinicID     int
	Appointments []scheduling.AppointmentSnapshot
}

type AppointmentView struct {
	Appointment scheduling.AppointmentSnapshot
	// ConflictingIDs lists every appointment in the window currently
	// flagged as potentially conflicting, after the command ran.
	ConflictingIDs []uuid.UUID
}
