package scheduling

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	schedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/scheduling"
	syncedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/synced"
	"github.com/vetdesk/frontdesk-backend/internal/data/repos/testutil"
	domain "github.com/vetdesk/frontdesk-backend/internal/domain/scheduling"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
)

var svcClinicSeq atomic.Int64

var svcDay = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

// serviceUnderTest seeds one committed schedule with three appointments,
// two of them double-booked for the same patient, and cleans up afterwards.
func serviceUnderTest(t *testing.T) (Service, int, []uuid.UUID) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := schedrepo.NewScheduleRepo(db, log)

	clinicID := int(svcClinicSeq.Add(1)) + 300000
	scheduleID := uuid.New()
	t.Cleanup(func() {
		db.Where("schedule_id = ?", scheduleID).Delete(&schedrepo.AppointmentRecord{})
		db.Where("id = ?", scheduleID).Delete(&schedrepo.ScheduleRecord{})
	})

	dbc := dbctx.Context{Ctx: context.Background()}
	window, err := domain.NewTimeRange(svcDay, svcDay.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("NewTimeRange: %v", err)
	}
	created, err := domain.NewSchedule(scheduleID, clinicID, window)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	if err := repo.Create(dbc, created); err != nil {
		t.Fatalf("Create: %v", err)
	}
	sched, err := repo.Load(dbc, domain.ScheduleByID(scheduleID, window))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	add := func(patientID int, start time.Time) uuid.UUID {
		tr, err := domain.NewTimeRangeWithDuration(start, 30)
		if err != nil {
			t.Fatalf("NewTimeRangeWithDuration: %v", err)
		}
		a, err := domain.NewAppointment(uuid.New(), 1, scheduleID, 1, 2, patientID, 3, tr, "checkup", uuid.New(), "policy-001", nil)
		if err != nil {
			t.Fatalf("NewAppointment: %v", err)
		}
		if err := sched.AddNewAppointment(a); err != nil {
			t.Fatalf("AddNewAppointment: %v", err)
		}
		return a.ID()
	}
	ids := []uuid.UUID{
		add(1, svcDay.Add(10*time.Hour)),                // 10:00, patient 1
		add(1, svcDay.Add(10*time.Hour+15*time.Minute)), // 10:15, patient 1
		add(2, svcDay.Add(14*time.Hour)),                // 14:00, patient 2
	}
	if err := repo.Persist(dbc, sched); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	svc := New(db, log, nil, repo, syncedrepo.NewRepo(db, log))
	return svc, clinicID, ids
}

func TestGetScheduleReturnsWindowedView(t *testing.T) {
	svc, clinicID, ids := serviceUnderTest(t)

	window, err := domain.NewTimeRange(svcDay, svcDay.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("NewTimeRange: %v", err)
	}
	view, err := svc.GetSchedule(context.Background(), clinicID, window)
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if view.ClinicID != clinicID {
		t.Fatalf("clinic id = %d, want %d", view.ClinicID, clinicID)
	}
	if len(view.Appointments) != len(ids) {
		t.Fatalf("%d appointments in view, want %d", len(view.Appointments), len(ids))
	}

	morning, err := domain.NewTimeRange(svcDay.Add(9*time.Hour), svcDay.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("NewTimeRange: %v", err)
	}
	view, err = svc.GetSchedule(context.Background(), clinicID, morning)
	if err != nil {
		t.Fatalf("GetSchedule morning window: %v", err)
	}
	if len(view.Appointments) != 2 {
		t.Fatalf("%d appointments in morning window, want 2", len(view.Appointments))
	}
}

func TestListAppointmentsPairsConflictsByPatient(t *testing.T) {
	svc, clinicID, ids := serviceUnderTest(t)

	views, err := svc.ListAppointments(context.Background(), clinicID, svcDay)
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(views) != len(ids) {
		t.Fatalf("%d views, want %d", len(views), len(ids))
	}
	byID := map[uuid.UUID][]uuid.UUID{}
	for _, v := range views {
		byID[v.Appointment.AppointmentID] = v.ConflictingIDs
	}
	if got := byID[ids[0]]; len(got) != 1 || got[0] != ids[1] {
		t.Fatalf("first appointment conflicts = %v, want [%v]", got, ids[1])
	}
	if got := byID[ids[1]]; len(got) != 1 || got[0] != ids[0] {
		t.Fatalf("second appointment conflicts = %v, want [%v]", got, ids[0])
	}
	if got := byID[ids[2]]; len(got) != 0 {
		t.Fatalf("cross-patient appointment conflicts = %v, want none", got)
	}
}
