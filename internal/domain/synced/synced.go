// Package synced holds the front desk's local projections of reference data
// owned by the clinic-management context. The rows are read-only here: only
// the sync consumer writes them, by applying inbound integration events.
// Everything else treats a direct write as a programming error.
package synced

import "time"

// Doctor mirrors the subset of the owning context's doctor the front desk
// needs. Identity values are assigned by the owning context and reused as-is.
type Doctor struct {
	ID          int       `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"not null;column:name"`
	LastEventAt time.Time `gorm:"not null;column:last_event_at"`
}

func (Doctor) TableName() string { return "synced_doctor" }

type DoctorAssistant struct {
	ID          int       `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"not null;column:name"`
	LastEventAt time.Time `gorm:"not null;column:last_event_at"`
}

func (DoctorAssistant) TableName() string { return "synced_doctor_assistant" }

type DoctorSpecialtyType struct {
	ID          int       `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"not null;column:name"`
	Description string    `gorm:"column:description"`
	LastEventAt time.Time `gorm:"not null;column:last_event_at"`
}

func (DoctorSpecialtyType) TableName() string { return "synced_doctor_specialty_type" }

type Client struct {
	ID                int       `gorm:"primaryKey;column:id"`
	FullName          string    `gorm:"not null;column:full_name"`
	PreferredName     string    `gorm:"column:preferred_name"`
	Salutation        string    `gorm:"column:salutation"`
	EmailAddress      string    `gorm:"column:email_address"`
	PreferredDoctorID int       `gorm:"column:preferred_doctor_id"`
	LastEventAt       time.Time `gorm:"not null;column:last_event_at"`
}

func (Client) TableName() string { return "synced_client" }

type Patient struct {
	ID                int       `gorm:"primaryKey;column:id"`
	ClientID          int       `gorm:"not null;column:client_id"`
	Name              string    `gorm:"not null;column:name"`
	Species           string    `gorm:"column:species"`
	Breed             string    `gorm:"column:breed"`
	Sex               string    `gorm:"column:sex"`
	PreferredDoctorID int       `gorm:"column:preferred_doctor_id"`
	LastEventAt       time.Time `gorm:"not null;column:last_event_at"`
}

func (Patient) TableName() string { return "synced_patient" }

type Room struct {
	ID          int       `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"not null;column:name"`
	LastEventAt time.Time `gorm:"not null;column:last_event_at"`
}

func (Room) TableName() string { return "synced_room" }

// AppointmentType carries the duration (in minutes) that scheduling uses to
// derive an appointment's time-range end.
type AppointmentType struct {
	ID          int       `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"not null;column:name"`
	Code        string    `gorm:"column:code"`
	Duration    int       `gorm:"not null;column:duration"`
	LastEventAt time.Time `gorm:"not null;column:last_event_at"`
}

func (AppointmentType) TableName() string { return "synced_appointment_type" }
