// Package scheduling is the front-desk application service. Commands pass
// through the schedule aggregate untouched; this layer adds the read side
// the reception UI needs (schedule views and reference-data lists).
package scheduling

import (
	"context"
	"time"

	"gorm.io/gorm"

	schedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/scheduling"
	syncedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/synced"
	"github.com/vetdesk/frontdesk-backend/internal/domain/contracts"
	domain "github.com/vetdesk/frontdesk-backend/internal/domain/scheduling"
	"github.com/vetdesk/frontdesk-backend/internal/domain/synced"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

type Service interface {
	Commands() contracts.ScheduleAggregate

	GetSchedule(ctx context.Context, clinicID int, window domain.TimeRange) (contracts.ScheduleView, error)
	ListAppointments(ctx context.Context, clinicID int, day time.Time) ([]contracts.AppointmentView, error)

	ListDoctors(ctx context.Context) ([]synced.Doctor, error)
	ListRooms(ctx context.Context) ([]synced.Room, error)
	ListAppointmentTypes(ctx context.Context) ([]synced.AppointmentType, error)
	ListClients(ctx context.Context) ([]synced.Client, error)
	ListPatientsByClient(ctx context.Context, clientID int) ([]synced.Patient, error)
}

type service struct {
	db        *gorm.DB
	log       *logger.Logger
	commands  contracts.ScheduleAggregate
	schedules schedrepo.ScheduleRepo
	reference syncedrepo.Reader
}

func New(db *gorm.DB, log *logger.Logger, commands contracts.ScheduleAggregate, schedules schedrepo.ScheduleRepo, reference syncedrepo.Reader) Service {
	return &service{
		db:        db,
		log:       log.With("service", "SchedulingService"),
		commands:  commands,
		schedules: schedules,
		reference: reference,
	}
}

func (s *service) Commands() contracts.ScheduleAggregate { return s.commands }

func (s *service) GetSchedule(ctx context.Context, clinicID int, window domain.TimeRange) (contracts.ScheduleView, error) {
	var out contracts.ScheduleView
	dbc := dbctx.Context{Ctx: ctx}
	sched, err := s.schedules.Load(dbc, domain.ScheduleByClinic(clinicID, window))
	if err != nil {
		return out, err
	}
	out.ScheduleID = sched.ID()
	out.ClinicID = sched.ClinicID()
	for _, appt := range sched.Appointments() {
		out.Appointments = append(out.Appointments, appt.Snapshot())
	}
	return out, nil
}

// ListAppointments returns each appointment of the clinic day together with
// the ids it currently conflicts with, for the reception board.
func (s *service) ListAppointments(ctx context.Context, clinicID int, day time.Time) ([]contracts.AppointmentView, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	window, err := domain.NewTimeRange(start, start.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	sched, err := s.schedules.Load(dbc, domain.ScheduleByClinic(clinicID, window))
	if err != nil {
		return nil, err
	}
	appts := sched.Appointments()
	out := make([]contracts.AppointmentView, 0, len(appts))
	for _, appt := range appts {
		view := contracts.AppointmentView{Appointment: appt.Snapshot()}
		for _, other := range appts {
			if other.ID() == appt.ID() {
				continue
			}
			if other.PatientID() == appt.PatientID() && appt.TimeRange().Overlaps(other.TimeRange()) {
				view.ConflictingIDs = append(view.ConflictingIDs, other.ID())
			}
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *service) ListDoctors(ctx context.Context) ([]synced.Doctor, error) {
	return s.reference.ListDoctors(dbctx.Context{Ctx: ctx})
}

func (s *service) ListRooms(ctx context.Context) ([]synced.Room, error) {
	return s.reference.ListRooms(dbctx.Context{Ctx: ctx})
}

func (s *service) ListAppointmentTypes(ctx context.Context) ([]synced.AppointmentType, error) {
	return s.reference.ListAppointmentTypes(dbctx.Context{Ctx: ctx})
}

func (s *service) ListClients(ctx context.Context) ([]synced.Client, error) {
	return s.reference.ListClients(dbctx.Context{Ctx: ctx})
}

func (s *service) ListPatientsByClient(ctx context.Context, clientID int) ([]synced.Patient, error) {
	return s.reference.ListPatientsByClient(dbctx.Context{Ctx: ctx}, clientID)
}
