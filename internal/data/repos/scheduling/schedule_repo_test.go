package scheduling_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/frontdesk-backend/internal/data/repos/scheduling"
	"github.com/vetdesk/frontdesk-backend/internal/data/repos/testutil"
	"github.com/vetdesk/frontdesk-backend/internal/domain/aggregates"
	domain "github.com/vetdesk/frontdesk-backend/internal/domain/scheduling"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
)

var clinicSeq atomic.Int64

func nextClinicID() int {
	return int(clinicSeq.Add(1)) + 100000
}

var repoDay = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

func dayWindow(t *testing.T) domain.TimeRange {
	t.Helper()
	w, err := domain.NewTimeRange(repoDay, repoDay.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("NewTimeRange: %v", err)
	}
	return w
}

func repoUnderTest(t *testing.T) (scheduling.ScheduleRepo, dbctx.Context) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := scheduling.NewScheduleRepo(db, testutil.Logger(t))
	return repo, dbctx.Context{Ctx: context.Background(), Tx: tx}
}

func createSchedule(t *testing.T, repo scheduling.ScheduleRepo, dbc dbctx.Context) *domain.Schedule {
	t.Helper()
	s, err := domain.NewSchedule(uuid.New(), nextClinicID(), dayWindow(t))
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	if err := repo.Create(dbc, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return s
}

func buildAppointment(t *testing.T, scheduleID uuid.UUID, patientID, startHour, minutes int) *domain.Appointment {
	t.Helper()
	tr, err := domain.NewTimeRangeWithDuration(repoDay.Add(time.Duration(startHour)*time.Hour), minutes)
	if err != nil {
		t.Fatalf("NewTimeRangeWithDuration: %v", err)
	}
	a, err := domain.NewAppointment(uuid.New(), 1, scheduleID, 1, 2, patientID, 3, tr, "checkup", uuid.New(), "policy-001", nil)
	if err != nil {
		t.Fatalf("NewAppointment: %v", err)
	}
	return a
}

func TestCreateAndLoadSchedule(t *testing.T) {
	repo, dbc := repoUnderTest(t)
	s := createSchedule(t, repo, dbc)

	byID, err := repo.Load(dbc, domain.ScheduleByID(s.ID(), dayWindow(t)))
	if err != nil {
		t.Fatalf("Load by id: %v", err)
	}
	if byID.ID() != s.ID() || byID.ClinicID() != s.ClinicID() {
		t.Fatalf("loaded %v/%d, want %v/%d", byID.ID(), byID.ClinicID(), s.ID(), s.ClinicID())
	}
	if byID.Version() != 1 {
		t.Fatalf("fresh schedule version = %d, want 1", byID.Version())
	}

	byClinic, err := repo.Load(dbc, domain.ScheduleByClinic(s.ClinicID(), dayWindow(t)))
	if err != nil {
		t.Fatalf("Load by clinic: %v", err)
	}
	if byClinic.ID() != s.ID() {
		t.Fatalf("clinic lookup loaded %v, want %v", byClinic.ID(), s.ID())
	}
}

func TestLoadUnknownScheduleIsNotFound(t *testing.T) {
	repo, dbc := repoUnderTest(t)

	_, err := repo.Load(dbc, domain.ScheduleByID(uuid.New(), dayWindow(t)))
	if !aggregates.IsCode(err, aggregates.CodeNotFound) {
		t.Fatalf("want not_found, got %v", err)
	}

	_, err = repo.Load(dbc, domain.ScheduleSpec{})
	if !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("empty spec: want validation, got %v", err)
	}
}

func TestPersistRoundTripsAppointments(t *testing.T) {
	repo, dbc := repoUnderTest(t)
	s := createSchedule(t, repo, dbc)

	a := buildAppointment(t, s.ID(), 10, 9, 60)
	b := buildAppointment(t, s.ID(), 10, 9, 30)
	if err := s.AddNewAppointment(a); err != nil {
		t.Fatalf("AddNewAppointment: %v", err)
	}
	if err := s.AddNewAppointment(b); err != nil {
		t.Fatalf("AddNewAppointment: %v", err)
	}
	if err := repo.Persist(dbc, s); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := repo.Load(dbc, domain.ScheduleByID(s.ID(), dayWindow(t)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Version() != 2 {
		t.Fatalf("version after persist = %d, want 2", loaded.Version())
	}
	appts := loaded.Appointments()
	if len(appts) != 2 {
		t.Fatalf("loaded %d appointments, want 2", len(appts))
	}
	// start_time ASC ordering and recomputed conflict flags
	if !appts[0].TimeRange().Start().Before(appts[1].TimeRange().Start()) &&
		!appts[0].TimeRange().Start().Equal(appts[1].TimeRange().Start()) {
		t.Fatal("appointments not ordered by start time")
	}
	for i, appt := range appts {
		if !appt.IsPotentiallyConflicting() {
			t.Fatalf("appointment %d lost its conflict flag on reload", i)
		}
	}
}

func TestPersistUpdatesExistingAppointments(t *testing.T) {
	repo, dbc := repoUnderTest(t)
	s := createSchedule(t, repo, dbc)
	a := buildAppointment(t, s.ID(), 10, 9, 30)
	if err := s.AddNewAppointment(a); err != nil {
		t.Fatalf("AddNewAppointment: %v", err)
	}
	if err := repo.Persist(dbc, s); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := repo.Load(dbc, domain.ScheduleByID(s.ID(), dayWindow(t)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	appt := loaded.AppointmentByID(a.ID())
	if appt == nil {
		t.Fatal("appointment missing after persist")
	}
	if err := appt.UpdateTitle("dental cleaning"); err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}
	if err := repo.Persist(dbc, loaded); err != nil {
		t.Fatalf("second Persist: %v", err)
	}

	reloaded, err := repo.Load(dbc, domain.ScheduleByID(s.ID(), dayWindow(t)))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.AppointmentByID(a.ID()).Title(); got != "dental cleaning" {
		t.Fatalf("title after update = %q", got)
	}
	if reloaded.Version() != 3 {
		t.Fatalf("version = %d, want 3", reloaded.Version())
	}
}

func TestPersistStaleVersionConflicts(t *testing.T) {
	repo, dbc := repoUnderTest(t)
	s := createSchedule(t, repo, dbc)

	first, err := repo.Load(dbc, domain.ScheduleByID(s.ID(), dayWindow(t)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := repo.Load(dbc, domain.ScheduleByID(s.ID(), dayWindow(t)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := repo.Persist(dbc, first); err != nil {
		t.Fatalf("Persist first: %v", err)
	}
	err = repo.Persist(dbc, second)
	if !aggregates.IsCode(err, aggregates.CodeConflict) {
		t.Fatalf("stale persist: want conflict, got %v", err)
	}
}

func TestPersistDeletesRemovedAppointments(t *testing.T) {
	repo, dbc := repoUnderTest(t)
	s := createSchedule(t, repo, dbc)
	a := buildAppointment(t, s.ID(), 10, 9, 30)
	if err := s.AddNewAppointment(a); err != nil {
		t.Fatalf("AddNewAppointment: %v", err)
	}
	if err := repo.Persist(dbc, s); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := repo.Load(dbc, domain.ScheduleByID(s.ID(), dayWindow(t)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	loaded.DeleteAppointment(a.ID())
	if err := repo.Persist(dbc, loaded); err != nil {
		t.Fatalf("Persist after delete: %v", err)
	}

	reloaded, err := repo.Load(dbc, domain.ScheduleByID(s.ID(), dayWindow(t)))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := len(reloaded.Appointments()); got != 0 {
		t.Fatalf("%d appointments remain after delete", got)
	}
}

func TestLoadWindowFiltersAppointments(t *testing.T) {
	repo, dbc := repoUnderTest(t)
	s := createSchedule(t, repo, dbc)

	morning := buildAppointment(t, s.ID(), 10, 9, 30)
	evening := buildAppointment(t, s.ID(), 11, 20, 30)
	if err := s.AddNewAppointment(morning); err != nil {
		t.Fatalf("AddNewAppointment: %v", err)
	}
	if err := s.AddNewAppointment(evening); err != nil {
		t.Fatalf("AddNewAppointment: %v", err)
	}
	if err := repo.Persist(dbc, s); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	window, err := domain.NewTimeRange(repoDay.Add(8*time.Hour), repoDay.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("NewTimeRange: %v", err)
	}
	loaded, err := repo.Load(dbc, domain.ScheduleByID(s.ID(), window))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(loaded.Appointments()); got != 1 {
		t.Fatalf("window load returned %d appointments, want 1", got)
	}
	if loaded.Appointments()[0].ID() != morning.ID() {
		t.Fatal("window load returned the wrong appointment")
	}

	// zero window loads everything
	all, err := repo.Load(dbc, domain.ScheduleByID(s.ID(), domain.TimeRange{}))
	if err != nil {
		t.Fatalf("Load all: %v", err)
	}
	if got := len(all.Appointments()); got != 2 {
		t.Fatalf("zero-window load returned %d appointments, want 2", got)
	}
}
