// Package clinicmgmt is the application service of the clinic-management
// context. Every write stores the entity and an outbox row for the matching
// integration event in one transaction, so the front desk's projections can
// never observe an entity change that later rolled back.
package clinicmgmt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	cmrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/clinicmgmt"
	outboxrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/outbox"
	"github.com/vetdesk/frontdesk-backend/internal/domain/aggregates"
	domain "github.com/vetdesk/frontdesk-backend/internal/domain/clinicmgmt"
	"github.com/vetdesk/frontdesk-backend/internal/messaging"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

type Service interface {
	CreateDoctor(ctx context.Context, name string) (*domain.Doctor, error)
	RenameDoctor(ctx context.Context, id int, name string) (*domain.Doctor, error)
	ListDoctors(ctx context.Context) ([]domain.Doctor, error)

	CreateDoctorAssistant(ctx context.Context, name string) (*domain.DoctorAssistant, error)
	ListDoctorAssistants(ctx context.Context) ([]domain.DoctorAssistant, error)

	CreateDoctorSpecialtyType(ctx context.Context, name, description string) (*domain.DoctorSpecialtyType, error)
	ListDoctorSpecialtyTypes(ctx context.Context) ([]domain.DoctorSpecialtyType, error)

	CreateRoom(ctx context.Context, name string) (*domain.Room, error)
	RenameRoom(ctx context.Context, id int, name string) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)

	CreateAppointmentType(ctx context.Context, name, code string, durationMinutes int) (*domain.AppointmentType, error)
	UpdateAppointmentType(ctx context.Context, id int, name, code string, durationMinutes int) (*domain.AppointmentType, error)
	ListAppointmentTypes(ctx context.Context) ([]domain.AppointmentType, error)

	CreateClient(ctx context.Context, in ClientInput) (*domain.Client, error)
	UpdateClient(ctx context.Context, id int, in ClientInput) (*domain.Client, error)
	GetClient(ctx context.Context, id int) (*domain.Client, error)
	ListClients(ctx context.Context) ([]domain.Client, error)

	AddPatient(ctx context.Context, clientID int, in PatientInput) (*domain.Patient, error)
	UpdatePatient(ctx context.Context, id int, in PatientInput) (*domain.Patient, error)
	ListPatientsByClient(ctx context.Context, clientID int) ([]domain.Patient, error)
}

type ClientInput struct {
	FullName          string
	PreferredName     string
	Salutation        string
	EmailAddress      string
	PreferredDoctorID int
}

type PatientInput struct {
	Name              string
	Species           string
	Breed             string
	Sex               string
	PreferredDoctorID int
}

type service struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   cmrepo.Repo
	outbox outboxrepo.Repo
}

func New(db *gorm.DB, log *logger.Logger, repo cmrepo.Repo, outbox outboxrepo.Repo) Service {
	return &service{
		db:     db,
		log:    log.With("service", "ClinicMgmtService"),
		repo:   repo,
		outbox: outbox,
	}
}

// inTx runs fn in a single transaction shared by the entity write and the
// outbox append.
func (s *service) inTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// announce appends one integration event for the entity change. Fields is a
// full field map so consumers can apply it as a replace.
func (s *service) announce(dbc dbctx.Context, eventType, kind string, id int, fields map[string]string) error {
	ev := messaging.IntegrationEvent{
		EventType:  eventType,
		EntityID:   id,
		EntityKind: kind,
		Fields:     fields,
		OccurredAt: time.Now().UTC(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.outbox.Append(dbc, []*outboxrepo.Message{{
		Channel:   messaging.ChannelClinicManagement,
		EventType: eventType,
		Payload:   body,
	}})
}

func (s *service) CreateDoctor(ctx context.Context, name string) (*domain.Doctor, error) {
	const op = "ClinicMgmt.CreateDoctor"
	if name == "" {
		return nil, aggregates.Validation(op, "doctor name is required")
	}
	d := &domain.Doctor{Name: name}
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		if err := s.repo.CreateDoctor(dbc, d); err != nil {
			return err
		}
		return s.announce(dbc, messaging.EventEntityCreated, messaging.KindDoctor, d.ID, map[string]string{"name": d.Name})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) RenameDoctor(ctx context.Context, id int, name string) (*domain.Doctor, error) {
	const op = "ClinicMgmt.RenameDoctor"
	if name == "" {
		return nil, aggregates.Validation(op, "doctor name is required")
	}
	var d *domain.Doctor
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		found, err := s.repo.GetDoctor(dbc, id)
		if err != nil {
			return err
		}
		if found == nil {
			return aggregates.NotFound(op, fmt.Sprintf("doctor %d does not exist", id))
		}
		found.Name = name
		if err := s.repo.SaveDoctor(dbc, found); err != nil {
			return err
		}
		d = found
		return s.announce(dbc, messaging.EventEntityUpdated, messaging.KindDoctor, d.ID, map[string]string{"name": d.Name})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	return s.repo.ListDoctors(dbctx.Context{Ctx: ctx})
}

func (s *service) CreateDoctorAssistant(ctx context.Context, name string) (*domain.DoctorAssistant, error) {
	const op = "ClinicMgmt.CreateDoctorAssistant"
	if name == "" {
		return nil, aggregates.Validation(op, "assistant name is required")
	}
	d := &domain.DoctorAssistant{Name: name}
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		if err := s.repo.CreateDoctorAssistant(dbc, d); err != nil {
			return err
		}
		return s.announce(dbc, messaging.EventEntityCreated, messaging.KindDoctorAssistant, d.ID, map[string]string{"name": d.Name})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) ListDoctorAssistants(ctx context.Context) ([]domain.DoctorAssistant, error) {
	return s.repo.ListDoctorAssistants(dbctx.Context{Ctx: ctx})
}

func (s *service) CreateDoctorSpecialtyType(ctx context.Context, name, description string) (*domain.DoctorSpecialtyType, error) {
	const op = "ClinicMgmt.CreateDoctorSpecialtyType"
	if name == "" {
		return nil, aggregates.Validation(op, "specialty name is required")
	}
	d := &domain.DoctorSpecialtyType{Name: name, Description: description}
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		if err := s.repo.CreateDoctorSpecialtyType(dbc, d); err != nil {
			return err
		}
		return s.announce(dbc, messaging.EventEntityCreated, messaging.KindDoctorSpecialtyType, d.ID, map[string]string{
			"name":        d.Name,
			"description": d.Description,
		})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) ListDoctorSpecialtyTypes(ctx context.Context) ([]domain.DoctorSpecialtyType, error) {
	return s.repo.ListDoctorSpecialtyTypes(dbctx.Context{Ctx: ctx})
}

func (s *service) CreateRoom(ctx context.Context, name string) (*domain.Room, error) {
	const op = "ClinicMgmt.CreateRoom"
	if name == "" {
		return nil, aggregates.Validation(op, "room name is required")
	}
	room := &domain.Room{Name: name}
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		if err := s.repo.CreateRoom(dbc, room); err != nil {
			return err
		}
		return s.announce(dbc, messaging.EventEntityCreated, messaging.KindRoom, room.ID, map[string]string{"name": room.Name})
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *service) RenameRoom(ctx context.Context, id int, name string) (*domain.Room, error) {
	const op = "ClinicMgmt.RenameRoom"
	if name == "" {
		return nil, aggregates.Validation(op, "room name is required")
	}
	var room *domain.Room
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		found, err := s.repo.GetRoom(dbc, id)
		if err != nil {
			return err
		}
		if found == nil {
			return aggregates.NotFound(op, fmt.Sprintf("room %d does not exist", id))
		}
		found.Name = name
		if err := s.repo.SaveRoom(dbc, found); err != nil {
			return err
		}
		room = found
		return s.announce(dbc, messaging.EventEntityUpdated, messaging.KindRoom, room.ID, map[string]string{"name": room.Name})
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *service) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.repo.ListRooms(dbctx.Context{Ctx: ctx})
}

func appointmentTypeFields(t *domain.AppointmentType) map[string]string {
	return map[string]string{
		"name":     t.Name,
		"code":     t.Code,
		"duration": strconv.Itoa(t.Duration),
	}
}

func (s *service) CreateAppointmentType(ctx context.Context, name, code string, durationMinutes int) (*domain.AppointmentType, error) {
	const op = "ClinicMgmt.CreateAppointmentType"
	if name == "" {
		return nil, aggregates.Validation(op, "appointment type name is required")
	}
	if durationMinutes <= 0 {
		return nil, aggregates.Validation(op, "appointment type duration must be positive")
	}
	t := &domain.AppointmentType{Name: name, Code: code, Duration: durationMinutes}
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		if err := s.repo.CreateAppointmentType(dbc, t); err != nil {
			return err
		}
		return s.announce(dbc, messaging.EventEntityCreated, messaging.KindAppointmentType, t.ID, appointmentTypeFields(t))
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) UpdateAppointmentType(ctx context.Context, id int, name, code string, durationMinutes int) (*domain.AppointmentType, error) {
	const op = "ClinicMgmt.UpdateAppointmentType"
	if name == "" {
		return nil, aggregates.Validation(op, "appointment type name is required")
	}
	if durationMinutes <= 0 {
		return nil, aggregates.Validation(op, "appointment type duration must be positive")
	}
	var t *domain.AppointmentType
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		found, err := s.repo.GetAppointmentType(dbc, id)
		if err != nil {
			return err
		}
		if found == nil {
			return aggregates.NotFound(op, fmt.Sprintf("appointment type %d does not exist", id))
		}
		found.Name = name
		found.Code = code
		found.Duration = durationMinutes
		if err := s.repo.SaveAppointmentType(dbc, found); err != nil {
			return err
		}
		t = found
		return s.announce(dbc, messaging.EventEntityUpdated, messaging.KindAppointmentType, t.ID, appointmentTypeFields(t))
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) ListAppointmentTypes(ctx context.Context) ([]domain.AppointmentType, error) {
	return s.repo.ListAppointmentTypes(dbctx.Context{Ctx: ctx})
}

func clientFields(c *domain.Client) map[string]string {
	return map[string]string{
		"fullName":          c.FullName,
		"preferredName":     c.PreferredName,
		"salutation":        c.Salutation,
		"emailAddress":      c.EmailAddress,
		"preferredDoctorId": strconv.Itoa(c.PreferredDoctorID),
	}
}

func (s *service) CreateClient(ctx context.Context, in ClientInput) (*domain.Client, error) {
	const op = "ClinicMgmt.CreateClient"
	if in.FullName == "" {
		return nil, aggregates.Validation(op, "client full name is required")
	}
	c := &domain.Client{
		FullName:          in.FullName,
		PreferredName:     in.PreferredName,
		Salutation:        in.Salutation,
		EmailAddress:      in.EmailAddress,
		PreferredDoctorID: in.PreferredDoctorID,
	}
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		if err := s.repo.CreateClient(dbc, c); err != nil {
			return err
		}
		return s.announce(dbc, messaging.EventEntityCreated, messaging.KindClient, c.ID, clientFields(c))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateClient(ctx context.Context, id int, in ClientInput) (*domain.Client, error) {
	const op = "ClinicMgmt.UpdateClient"
	if in.FullName == "" {
		return nil, aggregates.Validation(op, "client full name is required")
	}
	var c *domain.Client
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		found, err := s.repo.GetClient(dbc, id)
		if err != nil {
			return err
		}
		if found == nil {
			return aggregates.NotFound(op, fmt.Sprintf("client %d does not exist", id))
		}
		found.FullName = in.FullName
		found.PreferredName = in.PreferredName
		found.Salutation = in.Salutation
		found.EmailAddress = in.EmailAddress
		found.PreferredDoctorID = in.PreferredDoctorID
		if err := s.repo.SaveClient(dbc, found); err != nil {
			return err
		}
		c = found
		return s.announce(dbc, messaging.EventEntityUpdated, messaging.KindClient, c.ID, clientFields(c))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetClient(ctx context.Context, id int) (*domain.Client, error) {
	return s.repo.GetClient(dbctx.Context{Ctx: ctx}, id)
}

func (s *service) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.repo.ListClients(dbctx.Context{Ctx: ctx})
}

func patientFields(p *domain.Patient) map[string]string {
	return map[string]string{
		"clientId":          strconv.Itoa(p.ClientID),
		"name":              p.Name,
		"species":           p.AnimalType.Species,
		"breed":             p.AnimalType.Breed,
		"sex":               p.Sex,
		"preferredDoctorId": strconv.Itoa(p.PreferredDoctorID),
	}
}

// AddPatient creates the patient under its owning client. A patient never
// exists without a client.
func (s *service) AddPatient(ctx context.Context, clientID int, in PatientInput) (*domain.Patient, error) {
	const op = "ClinicMgmt.AddPatient"
	if in.Name == "" {
		return nil, aggregates.Validation(op, "patient name is required")
	}
	var p *domain.Patient
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		owner, err := s.repo.GetClient(dbc, clientID)
		if err != nil {
			return err
		}
		if owner == nil {
			return aggregates.NotFound(op, fmt.Sprintf("client %d does not exist", clientID))
		}
		p = &domain.Patient{
			ClientID:          clientID,
			Name:              in.Name,
			AnimalType:        domain.AnimalType{Species: in.Species, Breed: in.Breed},
			Sex:               in.Sex,
			PreferredDoctorID: in.PreferredDoctorID,
		}
		if err := s.repo.CreatePatient(dbc, p); err != nil {
			return err
		}
		return s.announce(dbc, messaging.EventEntityCreated, messaging.KindPatient, p.ID, patientFields(p))
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) UpdatePatient(ctx context.Context, id int, in PatientInput) (*domain.Patient, error) {
	const op = "ClinicMgmt.UpdatePatient"
	if in.Name == "" {
		return nil, aggregates.Validation(op, "patient name is required")
	}
	var p *domain.Patient
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		found, err := s.repo.GetPatient(dbc, id)
		if err != nil {
			return err
		}
		if found == nil {
			return aggregates.NotFound(op, fmt.Sprintf("patient %d does not exist", id))
		}
		found.Name = in.Name
		found.AnimalType = domain.AnimalType{Species: in.Species, Breed: in.Breed}
		found.Sex = in.Sex
		found.PreferredDoctorID = in.PreferredDoctorID
		if err := s.repo.SavePatient(dbc, found); err != nil {
			return err
		}
		p = found
		return s.announce(dbc, messaging.EventEntityUpdated, messaging.KindPatient, p.ID, patientFields(p))
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListPatientsByClient(ctx context.Context, clientID int) ([]domain.Patient, error) {
	return s.repo.ListPatientsByClient(dbctx.Context{Ctx: ctx}, clientID)
}
