// Package clinicmgmt is the persistence adapter for the master-data
// entities the clinic-management context owns.
package clinicmgmt

import (
	"errors"

	"gorm.io/gorm"

	domain "github.com/vetdesk/frontdesk-backend/internal/domain/clinicmgmt"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

type Repo interface {
	CreateDoctor(dbc dbctx.Context, d *domain.Doctor) error
	SaveDoctor(dbc dbctx.Context, d *domain.Doctor) error
	GetDoctor(dbc dbctx.Context, id int) (*domain.Doctor, error)
	ListDoctors(dbc dbctx.Context) ([]domain.Doctor, error)

	CreateDoctorAssistant(dbc dbctx.Context, d *domain.DoctorAssistant) error
	SaveDoctorAssistant(dbc dbctx.Context, d *domain.DoctorAssistant) error
	GetDoctorAssistant(dbc dbctx.Context, id int) (*domain.DoctorAssistant, error)
	ListDoctorAssistants(dbc dbctx.Context) ([]domain.DoctorAssistant, error)

	CreateDoctorSpecialtyType(dbc dbctx.Context, d *domain.DoctorSpecialtyType) error
	SaveDoctorSpecialtyType(dbc dbctx.Context, d *domain.DoctorSpecialtyType) error
	GetDoctorSpecialtyType(dbc dbctx.Context, id int) (*domain.DoctorSpecialtyType, error)
	ListDoctorSpecialtyTypes(dbc dbctx.Context) ([]domain.DoctorSpecialtyType, error)

	CreateRoom(dbc dbctx.Context, r *domain.Room) error
	SaveRoom(dbc dbctx.Context, r *domain.Room) error
	GetRoom(dbc dbctx.Context, id int) (*domain.Room, error)
	ListRooms(dbc dbctx.Context) ([]domain.Room, error)

	CreateAppointmentType(dbc dbctx.Context, t *domain.AppointmentType) error
	SaveAppointmentType(dbc dbctx.Context, t *domain.AppointmentType) error
	GetAppointmentType(dbc dbctx.Context, id int) (*domain.AppointmentType, error)
	ListAppointmentTypes(dbc dbctx.Context) ([]domain.AppointmentType, error)

	CreateClient(dbc dbctx.Context, c *domain.Client) error
	SaveClient(dbc dbctx.Context, c *domain.Client) error
	// GetClient loads the client with its patients.
	GetClient(dbc dbctx.Context, id int) (*domain.Client, error)
	ListClients(dbc dbctx.Context) ([]domain.Client, error)

	CreatePatient(dbc dbctx.Context, p *domain.Patient) error
	SavePatient(dbc dbctx.Context, p *domain.Patient) error
	GetPatient(dbc dbctx.Context, id int) (*domain.Patient, error)
	ListPatientsByClient(dbc dbctx.Context, clientID int) ([]domain.Patient, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "ClinicMgmtRepo")}
}

func (r *repo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func get[T any](r *repo, dbc dbctx.Context, id int) (*T, error) {
	var row T
	err := r.conn(dbc).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func list[T any](r *repo, dbc dbctx.Context) ([]T, error) {
	var rows []T
	err := r.conn(dbc).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repo) CreateDoctor(dbc dbctx.Context, d *domain.Doctor) error {
	return r.conn(dbc).Create(d).Error
}

func (r *repo) SaveDoctor(dbc dbctx.Context, d *domain.Doctor) error {
	return r.conn(dbc).Save(d).Error
}

func (r *repo) GetDoctor(dbc dbctx.Context, id int) (*domain.Doctor, error) {
	return get[domain.Doctor](r, dbc, id)
}

func (r *repo) ListDoctors(dbc dbctx.Context) ([]domain.Doctor, error) {
	return list[domain.Doctor](r, dbc)
}

func (r *repo) CreateDoctorAssistant(dbc dbctx.Context, d *domain.DoctorAssistant) error {
	return r.conn(dbc).Create(d).Error
}

func (r *repo) SaveDoctorAssistant(dbc dbctx.Context, d *domain.DoctorAssistant) error {
	return r.conn(dbc).Save(d).Error
}

func (r *repo) GetDoctorAssistant(dbc dbctx.Context, id int) (*domain.DoctorAssistant, error) {
	return get[domain.DoctorAssistant](r, dbc, id)
}

func (r *repo) ListDoctorAssistants(dbc dbctx.Context) ([]domain.DoctorAssistant, error) {
	return list[domain.DoctorAssistant](r, dbc)
}

func (r *repo) CreateDoctorSpecialtyType(dbc dbctx.Context, d *domain.DoctorSpecialtyType) error {
	return r.conn(dbc).Create(d).Error
}

func (r *repo) SaveDoctorSpecialtyType(dbc dbctx.Context, d *domain.DoctorSpecialtyType) error {
	return r.conn(dbc).Save(d).Error
}

func (r *repo) GetDoctorSpecialtyType(dbc dbctx.Context, id int) (*domain.DoctorSpecialtyType, error) {
	return get[domain.DoctorSpecialtyType](r, dbc, id)
}

func (r *repo) ListDoctorSpecialtyTypes(dbc dbctx.Context) ([]domain.DoctorSpecialtyType, error) {
	return list[domain.DoctorSpecialtyType](r, dbc)
}

func (r *repo) CreateRoom(dbc dbctx.Context, room *domain.Room) error {
	return r.conn(dbc).Create(room).Error
}

func (r *repo) SaveRoom(dbc dbctx.Context, room *domain.Room) error {
	return r.conn(dbc).Save(room).Error
}

func (r *repo) GetRoom(dbc dbctx.Context, id int) (*domain.Room, error) {
	return get[domain.Room](r, dbc, id)
}

func (r *repo) ListRooms(dbc dbctx.Context) ([]domain.Room, error) {
	return list[domain.Room](r, dbc)
}

func (r *repo) CreateAppointmentType(dbc dbctx.Context, t *domain.AppointmentType) error {
	return r.conn(dbc).Create(t).Error
}

func (r *repo) SaveAppointmentType(dbc dbctx.Context, t *domain.AppointmentType) error {
	return r.conn(dbc).Save(t).Error
}

func (r *repo) GetAppointmentType(dbc dbctx.Context, id int) (*domain.AppointmentType, error) {
	return get[domain.AppointmentType](r, dbc, id)
}

func (r *repo) ListAppointmentTypes(dbc dbctx.Context) ([]domain.AppointmentType, error) {
	return list[domain.AppointmentType](r, dbc)
}

func (r *repo) CreateClient(dbc dbctx.Context, c *domain.Client) error {
	return r.conn(dbc).Create(c).Error
}

func (r *repo) SaveClient(dbc dbctx.Context, c *domain.Client) error {
	// Omit Patients so a partial client update can never touch patient rows.
	return r.conn(dbc).Omit("Patients").Save(c).Error
}

func (r *repo) GetClient(dbc dbctx.Context, id int) (*domain.Client, error) {
	var row domain.Client
	err := r.conn(dbc).Preload("Patients").First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) ListClients(dbc dbctx.Context) ([]domain.Client, error) {
	var rows []domain.Client
	err := r.conn(dbc).Preload("Patients").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repo) CreatePatient(dbc dbctx.Context, p *domain.Patient) error {
	return r.conn(dbc).Create(p).Error
}

func (r *repo) SavePatient(dbc dbctx.Context, p *domain.Patient) error {
	return r.conn(dbc).Save(p).Error
}

func (r *repo) GetPatient(dbc dbctx.Context, id int) (*domain.Patient, error) {
	return get[domain.Patient](r, dbc, id)
}

func (r *repo) ListPatientsByClient(dbc dbctx.Context, clientID int) ([]domain.Patient, error) {
	var rows []domain.Patient
	err := r.conn(dbc).Where("client_id = ?", clientID).Order("id ASC").Find(&rows).Error
	return rows, err
}
