package scheduling

import (
	"github.com/google/uuid"

	"github.com/vetdesk/frontdesk-backend/internal/domain/aggregates"
	"github.com/vetdesk/frontdesk-backend/internal/domain/entity"
)

// Schedule is the consistency boundary for a clinic's appointments over a
// date window. All appointment creation and deletion flows through it, which
// is what lets it keep the double-booking flags coherent: it knows about
// every appointment and every structural change.
//
// Appointments have no lifecycle outside their Schedule.
type Schedule struct {
	entity.Base[uuid.UUID]

	clinicID int

	// dateRange is not persisted; it describes the window this instance
	// was loaded for and varies per query.
	dateRange TimeRange

	appointments []*Appointment
	removedIDs   []uuid.UUID

	// version backs optimistic concurrency at the persistence boundary.
	version int
}

func (*Schedule) IsAggregateRoot() {}

func NewSchedule(id uuid.UUID, clinicID int, dateRange TimeRange) (*Schedule, error) {
	const op = "scheduling.NewSchedule"
	if id == uuid.Nil {
		return nil, aggregates.Validation(op, "missing schedule id")
	}
	if clinicID <= 0 {
		return nil, aggregates.Validation(op, "clinic id must be positive")
	}
	return &Schedule{
		Base:      entity.NewBase(id),
		clinicID:  clinicID,
		dateRange: dateRange,
	}, nil
}

// Rehydrate rebuilds a schedule from persisted state without raising events.
// Only the persistence adapter calls this.
func Rehydrate(id uuid.UUID, clinicID int, dateRange TimeRange, version int, appointments []*Appointment) (*Schedule, error) {
	s, err := NewSchedule(id, clinicID, dateRange)
	if err != nil {
		return nil, err
	}
	s.version = version
	s.appointments = appointments
	s.markConflictingAppointments()
	return s, nil
}

func (s *Schedule) ClinicID() int        { return s.clinicID }
func (s *Schedule) DateRange() TimeRange { return s.dateRange }
func (s *Schedule) Version() int         { return s.version }

// Appointments exposes a read-only view; mutation goes through the
// aggregate's operations only.
func (s *Schedule) Appointments() []*Appointment {
	out := make([]*Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

func (s *Schedule) AppointmentByID(id uuid.UUID) *Appointment {
	for _, a := range s.appointments {
		if a.ID() == id {
			return a
		}
	}
	return nil
}

// RemovedAppointmentIDs reports deletions since load, for the persistence
// adapter to apply. Draining it is the adapter's job.
func (s *Schedule) RemovedAppointmentIDs() []uuid.UUID {
	out := make([]uuid.UUID, len(s.removedIDs))
	copy(out, s.removedIDs)
	return out
}

// AddNewAppointment is the single entry point for new appointments, so the
// behavior that must run on every add lives in one place: validation,
// conflict marking, and the scheduled event.
func (s *Schedule) AddNewAppointment(appointment *Appointment) error {
	const op = "scheduling.Schedule.AddNewAppointment"
	if appointment == nil {
		return aggregates.Validation(op, "missing appointment")
	}
	if appointment.ID() == uuid.Nil {
		return aggregates.Validation(op, "missing appointment id")
	}
	if s.AppointmentByID(appointment.ID()) != nil {
		return aggregates.Conflict(op, "appointment already exists on schedule: "+appointment.ID().String())
	}

	s.appointments = append(s.appointments, appointment)
	s.markConflictingAppointments()
	s.RecordEvent(newAppointmentScheduled(appointment))
	return nil
}

// DeleteAppointment removes by id and re-marks conflicts. Deleting an id
// that is not present is deliberately not an error; deletion is idempotent.
func (s *Schedule) DeleteAppointment(id uuid.UUID) {
	for i, a := range s.appointments {
		if a.ID() == id {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
			s.removedIDs = append(s.removedIDs, id)
			break
		}
	}
	s.markConflictingAppointments()
}

// AppointmentUpdatedHandler is the hook appointments call when one of their
// time-affecting operations runs. It is a separate method rather than an
// inlined call so future rules can hang off the same signal without
// touching Appointment's contract.
func (s *Schedule) AppointmentUpdatedHandler() {
	s.markConflictingAppointments()
}

// markConflictingAppointments recomputes every conflict flag from scratch:
// two appointments for the same patient with overlapping time ranges are
// both flagged. Recomputing the whole set each call keeps the flags
// consistent with current data regardless of call history, and the working
// set is bounded to one clinic's window, so the quadratic pass stays cheap.
//
// Room-level and doctor-level overlap rules are intentionally not part of
// this pass yet; this is the extension point for them.
func (s *Schedule) markConflictingAppointments() {
	for _, appointment := range s.appointments {
		conflicting := false
		for _, other := range s.appointments {
			if other == appointment {
				continue
			}
			if other.PatientID() == appointment.PatientID() &&
				other.TimeRange().Overlaps(appointment.TimeRange()) {
				other.potentiallyConflicting = true
				conflicting = true
			}
		}
		appointment.potentiallyConflicting = conflicting
	}
}

// DrainAllEvents collects pending events from the schedule and each of its
// appointments, clearing the queues. The persistence adapter calls it once
// per transaction, after state changes are staged for commit.
func (s *Schedule) DrainAllEvents() []entity.Event {
	events := s.DrainEvents()
	for _, a := range s.appointments {
		events = append(events, a.DrainEvents()...)
	}
	return events
}
