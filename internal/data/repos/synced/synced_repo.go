// Package synced persists the front desk's reference-data projections.
// The Writer half is handed exclusively to the sync consumer; everything
// else is wired against Reader, which is what makes a stray local write a
// compile-time impossibility rather than a runtime surprise.
package synced

import (
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/vetdesk/frontdesk-backend/internal/domain/synced"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

// Reader serves reference-data lookups to the scheduling side.
type Reader interface {
	GetAppointmentType(dbc dbctx.Context, id int) (*domain.AppointmentType, error)
	ListDoctors(dbc dbctx.Context) ([]domain.Doctor, error)
	ListRooms(dbc dbctx.Context) ([]domain.Room, error)
	ListAppointmentTypes(dbc dbctx.Context) ([]domain.AppointmentType, error)
	ListClients(dbc dbctx.Context) ([]domain.Client, error)
	ListPatientsByClient(dbc dbctx.Context, clientID int) ([]domain.Patient, error)
}

// Writer applies inbound integration events. Each upsert is a full replace
// guarded by the row's last event time: older events are dropped, identical
// redeliveries are no-ops, so applying is idempotent regardless of arrival
// order. The bool reports whether the row changed.
type Writer interface {
	UpsertDoctor(dbc dbctx.Context, d domain.Doctor) (bool, error)
	UpsertDoctorAssistant(dbc dbctx.Context, d domain.DoctorAssistant) (bool, error)
	UpsertDoctorSpecialtyType(dbc dbctx.Context, d domain.DoctorSpecialtyType) (bool, error)
	UpsertClient(dbc dbctx.Context, c domain.Client) (bool, error)
	UpsertPatient(dbc dbctx.Context, p domain.Patient) (bool, error)
	UpsertRoom(dbc dbctx.Context, r domain.Room) (bool, error)
	UpsertAppointmentType(dbc dbctx.Context, t domain.AppointmentType) (bool, error)
}

type Repo interface {
	Reader
	Writer
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "SyncedRepo")}
}

func (r *repo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

// upsert inserts when the row is absent, replaces every field when the
// incoming event is newer than the stored one, and drops the event
// otherwise.
func upsert[T any](r *repo, dbc dbctx.Context, id int, eventAt time.Time, row *T) (bool, error) {
	tx := r.conn(dbc)
	var stamps []time.Time
	if err := tx.Model(row).Where("id = ?", id).Limit(1).Pluck("last_event_at", &stamps).Error; err != nil {
		return false, err
	}
	if len(stamps) == 0 {
		return true, tx.Create(row).Error
	}
	if !eventAt.After(stamps[0]) {
		return false, nil
	}
	return true, tx.Save(row).Error
}

func (r *repo) UpsertDoctor(dbc dbctx.Context, d domain.Doctor) (bool, error) {
	return upsert(r, dbc, d.ID, d.LastEventAt, &d)
}

func (r *repo) UpsertDoctorAssistant(dbc dbctx.Context, d domain.DoctorAssistant) (bool, error) {
	return upsert(r, dbc, d.ID, d.LastEventAt, &d)
}

func (r *repo) UpsertDoctorSpecialtyType(dbc dbctx.Context, d domain.DoctorSpecialtyType) (bool, error) {
	return upsert(r, dbc, d.ID, d.LastEventAt, &d)
}

func (r *repo) UpsertClient(dbc dbctx.Context, c domain.Client) (bool, error) {
	return upsert(r, dbc, c.ID, c.LastEventAt, &c)
}

func (r *repo) UpsertPatient(dbc dbctx.Context, p domain.Patient) (bool, error) {
	return upsert(r, dbc, p.ID, p.LastEventAt, &p)
}

func (r *repo) UpsertRoom(dbc dbctx.Context, rm domain.Room) (bool, error) {
	return upsert(r, dbc, rm.ID, rm.LastEventAt, &rm)
}

func (r *repo) UpsertAppointmentType(dbc dbctx.Context, t domain.AppointmentType) (bool, error) {
	return upsert(r, dbc, t.ID, t.LastEventAt, &t)
}

func (r *repo) GetAppointmentType(dbc dbctx.Context, id int) (*domain.AppointmentType, error) {
	var t domain.AppointmentType
	if err := r.conn(dbc).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repo) ListDoctors(dbc dbctx.Context) ([]domain.Doctor, error) {
	var out []domain.Doctor
	err := r.conn(dbc).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *repo) ListRooms(dbc dbctx.Context) ([]domain.Room, error) {
	var out []domain.Room
	err := r.conn(dbc).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *repo) ListAppointmentTypes(dbc dbctx.Context) ([]domain.AppointmentType, error) {
	var out []domain.AppointmentType
	err := r.conn(dbc).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *repo) ListClients(dbc dbctx.Context) ([]domain.Client, error) {
	var out []domain.Client
	err := r.conn(dbc).Order("full_name ASC").Find(&out).Error
	return out, err
}

func (r *repo) ListPatientsByClient(dbc dbctx.Context, clientID int) ([]domain.Patient, error) {
	var out []domain.Patient
	err := r.conn(dbc).Where("client_id = ?", clientID).Order("name ASC").Find(&out).Error
	return out, err
}
