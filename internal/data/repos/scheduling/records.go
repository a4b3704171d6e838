package scheduling

import (
	"time"

	"github.com/google/uuid"

	domain "github.com/vetdesk/frontdesk-backend/internal/domain/scheduling"
)

// ScheduleRecord is the persisted shape of the aggregate root. The date
// window is deliberately absent: it is a per-query concern, recomputed on
// every load.
type ScheduleRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	ClinicID int       `gorm:"not null;uniqueIndex;column:clinic_id"`
	// Version backs optimistic concurrency: saves are rejected when the
	// row moved since load.
	Version   int       `gorm:"not null;column:version"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

func (ScheduleRecord) TableName() string { return "schedule" }

type AppointmentRecord struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey;column:id"`
	ScheduleID             uuid.UUID  `gorm:"type:uuid;not null;index;column:schedule_id"`
	ClientID               int        `gorm:"not null;column:client_id"`
	PatientID              int        `gorm:"not null;index;column:patient_id"`
	RoomID                 int        `gorm:"not null;column:room_id"`
	DoctorID               int        `gorm:"not null;column:doctor_id"`
	AppointmentTypeID      int        `gorm:"not null;column:appointment_type_id"`
	InsuranceID            uuid.UUID  `gorm:"type:uuid;not null;column:insurance_id"`
	InsurancePolicyNumber  string     `gorm:"not null;column:insurance_policy_number"`
	Title                  string     `gorm:"not null;column:title"`
	StartTime              time.Time  `gorm:"not null;index;column:start_time"`
	EndTime                time.Time  `gorm:"not null;column:end_time"`
	ConfirmedAt            *time.Time `gorm:"column:confirmed_at"`
	PotentiallyConflicting bool       `gorm:"not null;column:potentially_conflicting"`
	CreatedAt              time.Time  `gorm:"not null;column:created_at"`
	UpdatedAt              time.Time  `gorm:"not null;column:updated_at"`
}

func (AppointmentRecord) TableName() string { return "appointment" }

func appointmentToRecord(a *domain.Appointment) AppointmentRecord {
	return AppointmentRecord{
		ID:                     a.ID(),
		ScheduleID:             a.ScheduleID(),
		ClientID:               a.ClientID(),
		PatientID:              a.PatientID(),
		RoomID:                 a.RoomID(),
		DoctorID:               a.DoctorID(),
		AppointmentTypeID:      a.AppointmentTypeID(),
		InsuranceID:            a.InsuranceID(),
		InsurancePolicyNumber:  a.InsurancePolicyNumber(),
		Title:                  a.Title(),
		StartTime:              a.TimeRange().Start(),
		EndTime:                a.TimeRange().End(),
		ConfirmedAt:            a.ConfirmedAt(),
		PotentiallyConflicting: a.IsPotentiallyConflicting(),
	}
}

func appointmentFromRecord(rec AppointmentRecord) (*domain.Appointment, error) {
	tr, err := domain.NewTimeRange(rec.StartTime, rec.EndTime)
	if err != nil {
		return nil, err
	}
	return domain.NewAppointment(
		rec.ID,
		rec.AppointmentTypeID,
		rec.ScheduleID,
		rec.ClientID,
		rec.DoctorID,
		rec.PatientID,
		rec.RoomID,
		tr,
		rec.Title,
		rec.InsuranceID,
		rec.InsurancePolicyNumber,
		rec.ConfirmedAt,
	)
}
