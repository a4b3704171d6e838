package clinicmgmt

import (
	"context"
	"testing"

	cmrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/clinicmgmt"
	outboxrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/outbox"
	"github.com/vetdesk/frontdesk-backend/internal/data/repos/testutil"
	"github.com/vetdesk/frontdesk-backend/internal/domain/aggregates"
)

// validationService builds a service with no database; the validation paths
// return before any transaction is opened.
func validationService(t *testing.T) Service {
	t.Helper()
	log := testutil.Logger(t)
	return New(nil, log, cmrepo.NewRepo(nil, log), outboxrepo.NewRepo(nil, log))
}

func dbService(t *testing.T) Service {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return New(db, log, cmrepo.NewRepo(db, log), outboxrepo.NewRepo(db, log))
}

func TestWritesRejectInvalidInputWithValidationCode(t *testing.T) {
	svc := validationService(t)
	ctx := context.Background()

	if _, err := svc.CreateDoctor(ctx, ""); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("CreateDoctor with empty name: want validation error, got %v", err)
	}
	if _, err := svc.CreateRoom(ctx, ""); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("CreateRoom with empty name: want validation error, got %v", err)
	}
	if _, err := svc.CreateAppointmentType(ctx, "exam", "EX", 0); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("CreateAppointmentType with zero duration: want validation error, got %v", err)
	}
	if _, err := svc.CreateClient(ctx, ClientInput{}); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("CreateClient with empty name: want validation error, got %v", err)
	}
}

func TestUpdatesOfMissingEntitiesReturnNotFoundCode(t *testing.T) {
	svc := dbService(t)
	ctx := context.Background()

	if _, err := svc.RenameDoctor(ctx, 99999999, "Dr. Nobody"); !aggregates.IsCode(err, aggregates.CodeNotFound) {
		t.Fatalf("RenameDoctor of missing doctor: want not-found error, got %v", err)
	}
	if _, err := svc.UpdateAppointmentType(ctx, 99999999, "exam", "EX", 30); !aggregates.IsCode(err, aggregates.CodeNotFound) {
		t.Fatalf("UpdateAppointmentType of missing type: want not-found error, got %v", err)
	}
	if _, err := svc.UpdatePatient(ctx, 99999999, PatientInput{Name: "Rex", Species: "dog"}); !aggregates.IsCode(err, aggregates.CodeNotFound) {
		t.Fatalf("UpdatePatient of missing patient: want not-found error, got %v", err)
	}
}
