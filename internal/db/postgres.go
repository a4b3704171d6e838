package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/vetdesk/frontdesk-backend/internal/data/repos/outbox"
	"github.com/vetdesk/frontdesk-backend/internal/domain/clinicmgmt"
	"github.com/vetdesk/frontdesk-backend/internal/data/repos/scheduling"
	"github.com/vetdesk/frontdesk-backend/internal/domain/synced"
	"github.com/vetdesk/frontdesk-backend/internal/platform/envutil"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

// Service owns one context's database handle. The two bounded contexts each
// construct their own Service against their own database; nothing below
// this package ever joins tables across them.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New reads connection settings under the given env prefix (FRONTDESK_ /
// CLINICMGMT_). Setting <prefix>SQLITE_PATH switches to an embedded sqlite
// database for local development.
func New(prefix string, log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DB", "context", prefix)

	if path := envutil.Get(prefix+"SQLITE_PATH", "", log); path != "" {
		gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		serviceLog.Info("connected to sqlite", "path", path)
		return &Service{db: gdb, log: serviceLog}, nil
	}

	host := envutil.Get(prefix+"POSTGRES_HOST", "localhost", log)
	port := envutil.Get(prefix+"POSTGRES_PORT", "5432", log)
	user := envutil.Get(prefix+"POSTGRES_USER", "postgres", log)
	password := envutil.Get(prefix+"POSTGRES_PASSWORD", "", log)
	name := envutil.Get(prefix+"POSTGRES_NAME", "", log)
	if name == "" {
		return nil, fmt.Errorf("%sPOSTGRES_NAME is required", prefix)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres %s: %w", name, err)
	}
	serviceLog.Info("connected to postgres", "database", name)
	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

// MigrateFrontDesk creates the scheduling context's tables: the schedule
// aggregate rows, its outbox, and the synced projections.
func (s *Service) MigrateFrontDesk() error {
	s.log.Info("migrating front desk tables")
	return s.db.AutoMigrate(
		&scheduling.ScheduleRecord{},
		&scheduling.AppointmentRecord{},
		&outbox.Message{},
		&synced.Doctor{},
		&synced.DoctorAssistant{},
		&synced.DoctorSpecialtyType{},
		&synced.Client{},
		&synced.Patient{},
		&synced.Room{},
		&synced.AppointmentType{},
	)
}

// MigrateClinicManagement creates the owning context's tables.
func (s *Service) MigrateClinicManagement() error {
	s.log.Info("migrating clinic management tables")
	return s.db.AutoMigrate(
		&clinicmgmt.Doctor{},
		&clinicmgmt.DoctorAssistant{},
		&clinicmgmt.DoctorSpecialtyType{},
		&clinicmgmt.Room{},
		&clinicmgmt.AppointmentType{},
		&clinicmgmt.Client{},
		&clinicmgmt.Patient{},
		&outbox.Message{},
	)
}
