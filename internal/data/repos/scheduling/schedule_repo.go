package scheduling

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vetdesk/frontdesk-backend/internal/domain/aggregates"
	domain "github.com/vetdesk/frontdesk-backend/internal/domain/scheduling"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

// ScheduleRepo is the persistence port for the schedule aggregate. Queries
// arrive as declarative specs; the repo owns all SQL shape.
type ScheduleRepo interface {
	// Load materializes the schedule addressed by the spec with the
	// appointments overlapping its window. Returns CodeNotFound when the
	// schedule does not exist.
	Load(dbc dbctx.Context, spec domain.ScheduleSpec) (*domain.Schedule, error)
	// Create inserts a brand-new schedule at version 1.
	Create(dbc dbctx.Context, s *domain.Schedule) error
	// Persist writes the aggregate's current state. It bumps the version
	// with a compare-and-set; a lost race returns CodeConflict and the
	// caller must reload and retry.
	Persist(dbc dbctx.Context, s *domain.Schedule) error
}

type scheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return &scheduleRepo{db: db, log: baseLog.With("repo", "ScheduleRepo")}
}

func (r *scheduleRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *scheduleRepo) Load(dbc dbctx.Context, spec domain.ScheduleSpec) (*domain.Schedule, error) {
	const op = "scheduling.ScheduleRepo.Load"
	tx := r.conn(dbc)

	var rec ScheduleRecord
	q := tx.Model(&ScheduleRecord{})
	switch {
	case spec.ScheduleID != uuid.Nil:
		q = q.Where("id = ?", spec.ScheduleID)
	case spec.ClinicID > 0:
		q = q.Where("clinic_id = ?", spec.ClinicID)
	default:
		return nil, aggregates.Validation(op, "spec must address a schedule or clinic")
	}
	if err := q.First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, aggregates.NotFound(op, "schedule not found")
		}
		return nil, err
	}

	var rows []AppointmentRecord
	aq := tx.Where("schedule_id = ?", rec.ID).Order("start_time ASC")
	if !spec.Window.IsZero() {
		// half-open window match, same rule as the overlap predicate
		aq = aq.Where("start_time < ? AND end_time > ?", spec.Window.End(), spec.Window.Start())
	}
	if err := aq.Find(&rows).Error; err != nil {
		return nil, err
	}

	appointments := make([]*domain.Appointment, 0, len(rows))
	for _, row := range rows {
		a, err := appointmentFromRecord(row)
		if err != nil {
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		appointments = append(appointments, a)
	}
	return domain.Rehydrate(rec.ID, rec.ClinicID, spec.Window, rec.Version, appointments)
}

func (r *scheduleRepo) Create(dbc dbctx.Context, s *domain.Schedule) error {
	now := time.Now().UTC()
	rec := ScheduleRecord{
		ID:        s.ID(),
		ClinicID:  s.ClinicID(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.conn(dbc).Create(&rec).Error
}

func (r *scheduleRepo) Persist(dbc dbctx.Context, s *domain.Schedule) error {
	const op = "scheduling.ScheduleRepo.Persist"
	tx := r.conn(dbc)

	// Optimistic concurrency: conflict detection read the whole loaded
	// collection, so a concurrent mutation of the same schedule must lose.
	res := tx.Model(&ScheduleRecord{}).
		Where("id = ? AND version = ?", s.ID(), s.Version()).
		Updates(map[string]any{
			"version":    s.Version() + 1,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return aggregates.Conflict(op, "schedule changed since load")
	}

	if removed := s.RemovedAppointmentIDs(); len(removed) > 0 {
		if err := tx.Where("id IN ?", removed).Delete(&AppointmentRecord{}).Error; err != nil {
			return err
		}
	}

	appointments := s.Appointments()
	if len(appointments) == 0 {
		return nil
	}
	now := time.Now().UTC()
	recs := make([]AppointmentRecord, 0, len(appointments))
	for _, a := range appointments {
		rec := appointmentToRecord(a)
		rec.CreatedAt = now
		rec.UpdatedAt = now
		recs = append(recs, rec)
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"client_id", "patient_id", "room_id", "doctor_id",
			"appointment_type_id", "insurance_id", "insurance_policy_number",
			"title", "start_time", "end_time", "confirmed_at",
			"potentially_conflicting", "updated_at",
		}),
	}).Create(&recs).Error
}
