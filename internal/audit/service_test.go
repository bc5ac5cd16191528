package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

type fakeAuditRepo struct {
	created []*models.AuditEvent
	cleared bool
	listed  []models.AuditEvent
}

func (f *fakeAuditRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeAuditRepo) Create(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error) {
	f.created = append(f.created, event)
	return event, nil
}

func (f *fakeAuditRepo) List(ctx context.Context, filters Filters) ([]models.AuditEvent, error) {
	return f.listed, nil
}

func (f *fakeAuditRepo) DeleteAll(ctx context.Context) error {
	f.cleared = true
	return nil
}

func TestRecordAssignsIDAndMetadata(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	orderID := uuid.New()
	event, err := svc.Record(context.Background(), nil, RecordEventInput{
		Type:      enums.AuditEventPaymentClaimed,
		ActorRole: enums.ActorRoleStaff,
		OrderID:   &orderID,
		Metadata:  map[string]any{"method": "transfer", "amount_cents": 1500000},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if event.ID == uuid.Nil {
		t.Fatal("expected assigned event id")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted event, got %d", len(repo.created))
	}

	var meta map[string]any
	if err := json.Unmarshal(event.Metadata, &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta["method"] != "transfer" {
		t.Fatalf("unexpected metadata %v", meta)
	}
}

func TestRecordRejectsUnknownType(t *testing.T) {
	svc, err := NewService(&fakeAuditRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Record(context.Background(), nil, RecordEventInput{
		Type:      "mystery",
		ActorRole: enums.ActorRoleStaff,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClearRequiresCEO(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.Clear(context.Background(), enums.ActorRoleManager)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if repo.cleared {
		t.Fatal("repo should not be cleared for non-ceo actor")
	}

	if err := svc.Clear(context.Background(), enums.ActorRoleCEO); err != nil {
		t.Fatalf("ceo clear: %v", err)
	}
	if !repo.cleared {
		t.Fatal("expected repo cleared")
	}
}
