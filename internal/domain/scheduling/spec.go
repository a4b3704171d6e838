package scheduling

import "github.com/google/uuid"

// ScheduleSpec is the declarative query descriptor the persistence port
// consumes instead of ad-hoc query logic. Exactly one of ScheduleID or
// ClinicID addresses the aggregate; Window bounds which appointments are
// materialized into it (the full history is never loaded).
type ScheduleSpec struct {
	ScheduleID uuid.UUID
	ClinicID   int
	Window     TimeRange
}

// ScheduleByID loads one schedule with its appointments inside the window.
func ScheduleByID(id uuid.UUID, window TimeRange) ScheduleSpec {
	return ScheduleSpec{ScheduleID: id, Window: window}
}

// ScheduleByClinic loads a clinic's schedule for the window.
func ScheduleByClinic(clinicID int, window TimeRange) ScheduleSpec {
	return ScheduleSpec{ClinicID: clinicID, Window: window}
}
