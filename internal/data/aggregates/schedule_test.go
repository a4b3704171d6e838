package aggregates

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	outboxrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/outbox"
	schedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/scheduling"
	syncedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/synced"
	"github.com/vetdesk/frontdesk-backend/internal/data/repos/testutil"
	domainagg "github.com/vetdesk/frontdesk-backend/internal/domain/aggregates"
	"github.com/vetdesk/frontdesk-backend/internal/domain/contracts"
	"github.com/vetdesk/frontdesk-backend/internal/domain/scheduling"
	"github.com/vetdesk/frontdesk-backend/internal/domain/synced"
	"github.com/vetdesk/frontdesk-backend/internal/messaging"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
)

var clinicSeq atomic.Int64

func nextClinicID() int {
	return int(clinicSeq.Add(1)) + 200000
}

const examTypeID = 910001

var aggDay = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

// aggregateUnderTest commits real transactions, so every row it creates is
// cleaned up afterwards by schedule id.
func aggregateUnderTest(t *testing.T) (contracts.ScheduleAggregate, uuid.UUID, int) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	syncedRepo := syncedrepo.NewRepo(db, log)
	if _, err := syncedRepo.UpsertAppointmentType(dbctx.Context{Ctx: context.Background()}, synced.AppointmentType{
		ID: examTypeID, Name: "Wellness Exam", Code: "WE", Duration: 30, LastEventAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed appointment type: %v", err)
	}

	scheduleID := uuid.New()
	clinicID := nextClinicID()
	t.Cleanup(func() {
		db.Where("schedule_id = ?", scheduleID).Delete(&schedrepo.AppointmentRecord{})
		db.Where("id = ?", scheduleID).Delete(&schedrepo.ScheduleRecord{})
		db.Where("payload::text LIKE ?", "%"+scheduleID.String()+"%").Delete(&outboxrepo.Message{})
	})

	agg := NewScheduleAggregate(ScheduleAggregateDeps{
		Base:      BaseDeps{DB: db, Log: log},
		Schedules: schedrepo.NewScheduleRepo(db, log),
		Types:     syncedRepo,
		Outbox:    outboxrepo.NewRepo(db, log),
	})

	if _, err := agg.CreateSchedule(context.Background(), contracts.CreateScheduleInput{
		ScheduleID: scheduleID,
		ClinicID:   clinicID,
	}); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	return agg, scheduleID, clinicID
}

func scheduleInput(scheduleID uuid.UUID, patientID, startHour int) contracts.ScheduleAppointmentInput {
	return contracts.ScheduleAppointmentInput{
		ScheduleID:        scheduleID,
		AppointmentID:     uuid.New(),
		AppointmentTypeID: examTypeID,
		ClientID:          1,
		DoctorID:          2,
		PatientID:         patientID,
		RoomID:            3,
		Start:             aggDay.Add(time.Duration(startHour) * time.Hour),
		Title:             "checkup",
		InsuranceID:       uuid.New(),
		PolicyNumber:      "policy-001",
	}
}

func TestScheduleAppointmentDerivesDurationFromType(t *testing.T) {
	agg, scheduleID, _ := aggregateUnderTest(t)

	view, err := agg.ScheduleAppointment(context.Background(), scheduleInput(scheduleID, 10, 9))
	if err != nil {
		t.Fatalf("ScheduleAppointment: %v", err)
	}
	if got := view.Appointment.End.Sub(view.Appointment.Start); got != 30*time.Minute {
		t.Fatalf("duration = %v, want 30m from the appointment type", got)
	}
	if len(view.ConflictingIDs) != 0 {
		t.Fatalf("lone appointment flagged conflicting: %v", view.ConflictingIDs)
	}
}

func TestScheduleAppointmentUnknownTypeIsValidation(t *testing.T) {
	agg, scheduleID, _ := aggregateUnderTest(t)

	in := scheduleInput(scheduleID, 10, 9)
	in.AppointmentTypeID = 999999999
	_, err := agg.ScheduleAppointment(context.Background(), in)
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("unknown type: want validation, got %v", err)
	}
}

func TestDoubleBookingSamePatientIsFlagged(t *testing.T) {
	agg, scheduleID, _ := aggregateUnderTest(t)
	ctx := context.Background()

	first, err := agg.ScheduleAppointment(ctx, scheduleInput(scheduleID, 10, 9))
	if err != nil {
		t.Fatalf("first appointment: %v", err)
	}
	second, err := agg.ScheduleAppointment(ctx, scheduleInput(scheduleID, 10, 9))
	if err != nil {
		t.Fatalf("second appointment: %v", err)
	}

	// the double-booking is allowed but both sides are flagged
	if !second.Appointment.PotentiallyConflicting {
		t.Fatal("second appointment should be flagged")
	}
	found := false
	for _, id := range second.ConflictingIDs {
		if id == first.Appointment.AppointmentID {
			found = true
		}
	}
	if !found {
		t.Fatalf("conflicting ids %v should include the first appointment", second.ConflictingIDs)
	}
}

func TestRescheduleClearsConflict(t *testing.T) {
	agg, scheduleID, _ := aggregateUnderTest(t)
	ctx := context.Background()

	if _, err := agg.ScheduleAppointment(ctx, scheduleInput(scheduleID, 10, 9)); err != nil {
		t.Fatalf("first appointment: %v", err)
	}
	second, err := agg.ScheduleAppointment(ctx, scheduleInput(scheduleID, 10, 9))
	if err != nil {
		t.Fatalf("second appointment: %v", err)
	}
	if !second.Appointment.PotentiallyConflicting {
		t.Fatal("precondition: double booking should be flagged")
	}

	moved, err := agg.RescheduleAppointment(ctx, contracts.RescheduleAppointmentInput{
		AppointmentRefInput: contracts.AppointmentRefInput{
			ScheduleID:    scheduleID,
			AppointmentID: second.Appointment.AppointmentID,
		},
		NewStart: aggDay.Add(14 * time.Hour),
	})
	if err != nil {
		t.Fatalf("RescheduleAppointment: %v", err)
	}
	if moved.Appointment.PotentiallyConflicting {
		t.Fatal("moved appointment should no longer be flagged")
	}
	if len(moved.ConflictingIDs) != 0 {
		t.Fatalf("conflicting ids after move: %v", moved.ConflictingIDs)
	}
}

func TestCancelAppointmentIsIdempotent(t *testing.T) {
	agg, scheduleID, _ := aggregateUnderTest(t)
	ctx := context.Background()

	view, err := agg.ScheduleAppointment(ctx, scheduleInput(scheduleID, 10, 9))
	if err != nil {
		t.Fatalf("ScheduleAppointment: %v", err)
	}
	ref := contracts.AppointmentRefInput{
		ScheduleID:    scheduleID,
		AppointmentID: view.Appointment.AppointmentID,
	}
	if err := agg.CancelAppointment(ctx, ref); err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if err := agg.CancelAppointment(ctx, ref); err != nil {
		t.Fatalf("second CancelAppointment: %v", err)
	}
}

func TestConfirmAppointmentSetsTimestampOnce(t *testing.T) {
	agg, scheduleID, _ := aggregateUnderTest(t)
	ctx := context.Background()

	view, err := agg.ScheduleAppointment(ctx, scheduleInput(scheduleID, 10, 9))
	if err != nil {
		t.Fatalf("ScheduleAppointment: %v", err)
	}
	ref := contracts.AppointmentRefInput{
		ScheduleID:    scheduleID,
		AppointmentID: view.Appointment.AppointmentID,
	}

	confirmed, err := agg.ConfirmAppointment(ctx, contracts.ConfirmAppointmentInput{AppointmentRefInput: ref})
	if err != nil {
		t.Fatalf("ConfirmAppointment: %v", err)
	}
	if confirmed.Appointment.ConfirmedAt == nil {
		t.Fatal("confirmedAt not set")
	}
	first := *confirmed.Appointment.ConfirmedAt

	again, err := agg.ConfirmAppointment(ctx, contracts.ConfirmAppointmentInput{AppointmentRefInput: ref})
	if err != nil {
		t.Fatalf("second ConfirmAppointment: %v", err)
	}
	if again.Appointment.ConfirmedAt == nil || !again.Appointment.ConfirmedAt.Equal(first) {
		t.Fatalf("confirmedAt changed on reconfirm: %v -> %v", first, again.Appointment.ConfirmedAt)
	}
}

func TestCommandsWriteOutboxRows(t *testing.T) {
	agg, scheduleID, _ := aggregateUnderTest(t)
	ctx := context.Background()
	db := testutil.DB(t)

	if _, err := agg.ScheduleAppointment(ctx, scheduleInput(scheduleID, 10, 9)); err != nil {
		t.Fatalf("ScheduleAppointment: %v", err)
	}

	var rows []outboxrepo.Message
	err := db.Where("channel = ? AND payload::text LIKE ?",
		messaging.ChannelFrontDesk, "%"+scheduleID.String()+"%").
		Order("seq ASC").Find(&rows).Error
	if err != nil {
		t.Fatalf("query outbox: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("%d outbox rows, want 1", len(rows))
	}
	if rows[0].EventType != scheduling.EventAppointmentScheduled {
		t.Fatalf("outbox event type = %q, want %q", rows[0].EventType, scheduling.EventAppointmentScheduled)
	}
	if rows[0].PublishedAt != nil {
		t.Fatal("fresh outbox row already marked published")
	}
}

func TestMutationsOnMissingAppointmentAreNotFound(t *testing.T) {
	agg, scheduleID, _ := aggregateUnderTest(t)

	_, err := agg.RetitleAppointment(context.Background(), contracts.RetitleAppointmentInput{
		AppointmentRefInput: contracts.AppointmentRefInput{
			ScheduleID:    scheduleID,
			AppointmentID: uuid.New(),
		},
		NewTitle: "renamed",
	})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("want not_found, got %v", err)
	}
}

func TestCrossMidnightBookingFlagsNextDayOverlap(t *testing.T) {
	agg, scheduleID, _ := aggregateUnderTest(t)
	ctx := context.Background()

	// existing appointment early the next day
	early := scheduleInput(scheduleID, 10, 0)
	early.Start = aggDay.Add(24*time.Hour + 5*time.Minute)
	first, err := agg.ScheduleAppointment(ctx, early)
	if err != nil {
		t.Fatalf("next-day appointment: %v", err)
	}

	// a 23:50 booking for the same patient runs 23:50-00:20 and overlaps it
	late := scheduleInput(scheduleID, 10, 0)
	late.Start = aggDay.Add(23*time.Hour + 50*time.Minute)
	second, err := agg.ScheduleAppointment(ctx, late)
	if err != nil {
		t.Fatalf("cross-midnight appointment: %v", err)
	}

	if !second.Appointment.PotentiallyConflicting {
		t.Fatal("cross-midnight appointment should be flagged")
	}
	found := false
	for _, id := range second.ConflictingIDs {
		if id == first.Appointment.AppointmentID {
			found = true
		}
	}
	if !found {
		t.Fatalf("conflicting ids %v should include the next-day appointment", second.ConflictingIDs)
	}
}
