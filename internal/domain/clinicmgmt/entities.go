// Package clinicmgmt holds the master-data entities owned by the
// clinic-management context. This context is the writer of record for
// reference data; the front desk only ever sees projections of it, kept
// current through integration events.
package clinicmgmt

import "time"

// Identity columns are database-assigned here (unlike schedule aggregates):
// these rows are created through plain CRUD and their ints are reused as-is
// by every consuming context.

type Doctor struct {
	ID        int       `gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `gorm:"not null;column:name"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

func (Doctor) TableName() string { return "doctor" }

type DoctorAssistant struct {
	ID        int       `gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `gorm:"not null;column:name"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

func (DoctorAssistant) TableName() string { return "doctor_assistant" }

type DoctorSpecialtyType struct {
	ID          int       `gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `gorm:"not null;column:name"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`
	UpdatedAt   time.Time `gorm:"not null;column:updated_at"`
}

func (DoctorSpecialtyType) TableName() string { return "doctor_specialty_type" }

type Room struct {
	ID        int       `gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `gorm:"not null;column:name"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

func (Room) TableName() string { return "room" }

// AppointmentType's Duration (minutes) drives appointment lengths on the
// front desk.
type AppointmentType struct {
	ID        int       `gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `gorm:"not null;column:name"`
	Code      string    `gorm:"column:code"`
	Duration  int       `gorm:"not null;column:duration"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

func (AppointmentType) TableName() string { return "appointment_type" }

// Client owns its patients; a patient never exists without a client.
type Client struct {
	ID                int       `gorm:"primaryKey;autoIncrement;column:id"`
	FullName          string    `gorm:"not null;column:full_name"`
	PreferredName     string    `gorm:"column:preferred_name"`
	Salutation        string    `gorm:"column:salutation"`
	EmailAddress      string    `gorm:"column:email_address"`
	PreferredDoctorID int       `gorm:"column:preferred_doctor_id"`
	Patients          []Patient `gorm:"foreignKey:ClientID"`
	CreatedAt         time.Time `gorm:"not null;column:created_at"`
	UpdatedAt         time.Time `gorm:"not null;column:updated_at"`
}

func (Client) TableName() string { return "client" }

// AnimalType is a value object; equality is by species+breed.
type AnimalType struct {
	Species string `gorm:"column:species"`
	Breed   string `gorm:"column:breed"`
}

func (t AnimalType) Equals(other AnimalType) bool {
	return t.Species == other.Species && t.Breed == other.Breed
}

type Patient struct {
	ID                int        `gorm:"primaryKey;autoIncrement;column:id"`
	ClientID          int        `gorm:"not null;column:client_id"`
	Name              string     `gorm:"not null;column:name"`
	AnimalType        AnimalType `gorm:"embedded"`
	Sex               string     `gorm:"column:sex"`
	PreferredDoctorID int        `gorm:"column:preferred_doctor_id"`
	CreatedAt         time.Time  `gorm:"not null;column:created_at"`
	UpdatedAt         time.Time  `gorm:"not null;column:updated_at"`
}

func (Patient) TableName() string { return "patient" }
