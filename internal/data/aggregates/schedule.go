package aggregates

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	outboxrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/outbox"
	schedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/scheduling"
	syncedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/synced"
	domainagg "github.com/vetdesk/frontdesk-backend/internal/domain/aggregates"
	"github.com/vetdesk/frontdesk-backend/internal/domain/contracts"
	"github.com/vetdesk/frontdesk-backend/internal/domain/entity"
	"github.com/vetdesk/frontdesk-backend/internal/domain/scheduling"
	"github.com/vetdesk/frontdesk-backend/internal/messaging"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
)

type ScheduleAggregateDeps struct {
	Base BaseDeps

	Schedules schedrepo.ScheduleRepo
	// Types is read-only reference data; the aggregate only consults it
	// for invariant-scoped decisions (appointment durations).
	Types  syncedrepo.Reader
	Outbox outboxrepo.Repo
}

type scheduleAggregate struct {
	deps ScheduleAggregateDeps
}

func NewScheduleAggregate(deps ScheduleAggregateDeps) contracts.ScheduleAggregate {
	deps.Base = deps.Base.withDefaults()
	return &scheduleAggregate{deps: deps}
}

func (a *scheduleAggregate) Contract() contracts.Contract {
	return contracts.ScheduleAggregateContract
}

func (a *scheduleAggregate) CreateSchedule(ctx context.Context, in contracts.CreateScheduleInput) (contracts.ScheduleView, error) {
	const op = "FrontDesk.Schedule.Create"
	var out contracts.ScheduleView
	s, err := scheduling.NewSchedule(in.ScheduleID, in.ClinicID, scheduling.TimeRange{})
	if err != nil {
		return out, MapError(op, err)
	}
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		return a.deps.Schedules.Create(dbc, s)
	})
	if err != nil {
		return out, err
	}
	out = contracts.ScheduleView{ScheduleID: s.ID(), ClinicID: s.ClinicID()}
	return out, nil
}

func (a *scheduleAggregate) ScheduleAppointment(ctx context.Context, in contracts.ScheduleAppointmentInput) (contracts.AppointmentView, error) {
	const op = "FrontDesk.Schedule.ScheduleAppointment"
	var out contracts.AppointmentView
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		apptType, err := a.deps.Types.GetAppointmentType(dbc, in.AppointmentTypeID)
		if err != nil {
			return err
		}
		if apptType == nil {
			return domainagg.Validation(op, "unknown appointment type")
		}
		timeRange, err := scheduling.NewTimeRangeWithDuration(in.Start, apptType.Duration)
		if err != nil {
			return err
		}
		window := in.Window
		if window.IsZero() {
			window = loadWindow(timeRange)
		}
		s, err := a.deps.Schedules.Load(dbc, scheduling.ScheduleByID(in.ScheduleID, window))
		if err != nil {
			return err
		}
		appointment, err := scheduling.NewAppointment(
			in.AppointmentID,
			in.AppointmentTypeID,
			s.ID(),
			in.ClientID,
			in.DoctorID,
			in.PatientID,
			in.RoomID,
			timeRange,
			in.Title,
			in.InsuranceID,
			in.PolicyNumber,
			nil,
		)
		if err != nil {
			return err
		}
		if err := s.AddNewAppointment(appointment); err != nil {
			return err
		}
		if err := a.commit(dbc, s); err != nil {
			return err
		}
		out = appointmentView(s, appointment)
		return nil
	})
	return out, err
}

func (a *scheduleAggregate) CancelAppointment(ctx context.Context, in contracts.AppointmentRefInput) error {
	const op = "FrontDesk.Schedule.CancelAppointment"
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Schedules.Load(dbc, scheduling.ScheduleByID(in.ScheduleID, in.Window))
		if err != nil {
			return err
		}
		s.DeleteAppointment(in.AppointmentID)
		return a.commit(dbc, s)
	})
}

func (a *scheduleAggregate) RescheduleAppointment(ctx context.Context, in contracts.RescheduleAppointmentInput) (contracts.AppointmentView, error) {
	const op = "FrontDesk.Schedule.RescheduleAppointment"
	return a.mutateAppointment(ctx, op, in.AppointmentRefInput, func(s *scheduling.Schedule, appt *scheduling.Appointment) error {
		return appt.UpdateStartTime(in.NewStart, s.AppointmentUpdatedHandler)
	})
}

func (a *scheduleAggregate) ChangeRoom(ctx context.Context, in contracts.ChangeRoomInput) (contracts.AppointmentView, error) {
	const op = "FrontDesk.Schedule.ChangeRoom"
	return a.mutateAppointment(ctx, op, in.AppointmentRefInput, func(_ *scheduling.Schedule, appt *scheduling.Appointment) error {
		return appt.UpdateRoom(in.NewRoomID)
	})
}

func (a *scheduleAggregate) ChangeDoctor(ctx context.Context, in contracts.ChangeDoctorInput) (contracts.AppointmentView, error) {
	const op = "FrontDesk.Schedule.ChangeDoctor"
	return a.mutateAppointment(ctx, op, in.AppointmentRefInput, func(_ *scheduling.Schedule, appt *scheduling.Appointment) error {
		return appt.UpdateDoctor(in.NewDoctorID)
	})
}

func (a *scheduleAggregate) ChangeAppointmentType(ctx context.Context, in contracts.ChangeAppointmentTypeInput) (contracts.AppointmentView, error) {
	const op = "FrontDesk.Schedule.ChangeAppointmentType"
	return a.mutateAppointmentDeps(ctx, op, in.AppointmentRefInput, func(dbc dbctx.Context, s *scheduling.Schedule, appt *scheduling.Appointment) error {
		apptType, err := a.deps.Types.GetAppointmentType(dbc, in.NewAppointmentTypeID)
		if err != nil {
			return err
		}
		if apptType == nil {
			return domainagg.Validation(op, "unknown appointment type")
		}
		return appt.UpdateAppointmentType(apptType, s.AppointmentUpdatedHandler)
	})
}

func (a *scheduleAggregate) RetitleAppointment(ctx context.Context, in contracts.RetitleAppointmentInput) (contracts.AppointmentView, error) {
	const op = "FrontDesk.Schedule.RetitleAppointment"
	return a.mutateAppointment(ctx, op, in.AppointmentRefInput, func(_ *scheduling.Schedule, appt *scheduling.Appointment) error {
		return appt.UpdateTitle(in.NewTitle)
	})
}

func (a *scheduleAggregate) ConfirmAppointment(ctx context.Context, in contracts.ConfirmAppointmentInput) (contracts.AppointmentView, error) {
	const op = "FrontDesk.Schedule.ConfirmAppointment"
	confirmedAt := in.ConfirmedAt
	if confirmedAt.IsZero() {
		confirmedAt = time.Now().UTC()
	}
	return a.mutateAppointment(ctx, op, in.AppointmentRefInput, func(_ *scheduling.Schedule, appt *scheduling.Appointment) error {
		appt.Confirm(confirmedAt)
		return nil
	})
}

func (a *scheduleAggregate) mutateAppointment(ctx context.Context, op string, ref contracts.AppointmentRefInput, fn func(s *scheduling.Schedule, appt *scheduling.Appointment) error) (contracts.AppointmentView, error) {
	return a.mutateAppointmentDeps(ctx, op, ref, func(_ dbctx.Context, s *scheduling.Schedule, appt *scheduling.Appointment) error {
		return fn(s, appt)
	})
}

func (a *scheduleAggregate) mutateAppointmentDeps(ctx context.Context, op string, ref contracts.AppointmentRefInput, fn func(dbc dbctx.Context, s *scheduling.Schedule, appt *scheduling.Appointment) error) (contracts.AppointmentView, error) {
	var out contracts.AppointmentView
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Schedules.Load(dbc, scheduling.ScheduleByID(ref.ScheduleID, ref.Window))
		if err != nil {
			return err
		}
		appt := s.AppointmentByID(ref.AppointmentID)
		if appt == nil {
			return domainagg.NotFound(op, "appointment not found: "+ref.AppointmentID.String())
		}
		if err := fn(dbc, s, appt); err != nil {
			return err
		}
		if err := a.commit(dbc, s); err != nil {
			return err
		}
		out = appointmentView(s, appt)
		return nil
	})
	return out, err
}

// commit persists aggregate state and appends the drained domain events to
// the outbox inside the same transaction. Events therefore become visible
// to the dispatcher only if the state change commits.
func (a *scheduleAggregate) commit(dbc dbctx.Context, s *scheduling.Schedule) error {
	if err := a.deps.Schedules.Persist(dbc, s); err != nil {
		return err
	}
	events := s.DrainAllEvents()
	if len(events) == 0 {
		return nil
	}
	msgs, err := outboxMessages(events)
	if err != nil {
		return err
	}
	return a.deps.Outbox.Append(dbc, msgs)
}

type appointmentEventPayload interface {
	entity.Event
	AggregateID() uuid.UUID
	Snapshot() scheduling.AppointmentSnapshot
}

func outboxMessages(events []entity.Event) ([]*outboxrepo.Message, error) {
	msgs := make([]*outboxrepo.Message, 0, len(events))
	for _, ev := range events {
		env := messaging.DomainEnvelope{
			EventType:  ev.EventType(),
			OccurredAt: ev.OccurredAt(),
		}
		if ae, ok := ev.(appointmentEventPayload); ok {
			env.AggregateID = ae.AggregateID().String()
			env.Snapshot = ae.Snapshot()
		}
		body, err := json.Marshal(env)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, &outboxrepo.Message{
			Channel:   messaging.ChannelFrontDesk,
			EventType: ev.EventType(),
			Payload:   body,
		})
	}
	return msgs, nil
}

func appointmentView(s *scheduling.Schedule, appt *scheduling.Appointment) contracts.AppointmentView {
	var conflicting []uuid.UUID
	for _, other := range s.Appointments() {
		if other.IsPotentiallyConflicting() {
			conflicting = append(conflicting, other.ID())
		}
	}
	return contracts.AppointmentView{
		Appointment:    appt.Snapshot(),
		ConflictingIDs: conflicting,
	}
}

// loadWindow bounds a load to the clinic day containing the appointment,
// widened to the appointment's own end when the range crosses midnight so
// conflict detection sees next-day overlaps too.
func loadWindow(tr scheduling.TimeRange) scheduling.TimeRange {
	t := tr.Start()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.Add(24 * time.Hour)
	if tr.End().After(end) {
		end = tr.End()
	}
	out, _ := scheduling.NewTimeRange(start, end)
	return out
}
