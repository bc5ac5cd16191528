package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

// Recorder is the write-side surface other services depend on. Callers that
// mutate an intent pass their open transaction so the event commits with the
// transition.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordEventInput) (*models.AuditEvent, error)
}

// Service exposes the audit log operations.
type Service interface {
	Recorder
	List(ctx context.Context, filters Filters) ([]models.AuditEvent, error)
	Clear(ctx context.Context, actorRole enums.ActorRole) error
}

// RecordEventInput captures everything needed to append one event.
type RecordEventInput struct {
	Type            enums.AuditEventType
	ActorRole       enums.ActorRole
	OrderID         *uuid.UUID
	TableID         *uuid.UUID
	PaymentIntentID *uuid.UUID
	Metadata        map[string]any
}

type service struct {
	repo Repository
}

// NewService builds the audit service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordEventInput) (*models.AuditEvent, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown audit event type")
	}
	if !input.ActorRole.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown actor role")
	}

	event := &models.AuditEvent{
		ID:              uuid.New(),
		Type:            input.Type,
		ActorRole:       input.ActorRole,
		OrderID:         input.OrderID,
		TableID:         input.TableID,
		PaymentIntentID: input.PaymentIntentID,
	}
	if len(input.Metadata) > 0 {
		payload, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode event metadata")
		}
		event.Metadata = payload
	}

	created, err := s.repo.WithTx(tx).Create(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist audit event")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]models.AuditEvent, error) {
	events, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit events")
	}
	return events, nil
}

func (s *service) Clear(ctx context.Context, actorRole enums.ActorRole) error {
	if actorRole != enums.ActorRoleCEO {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the ceo can clear the audit log")
	}
	if err := s.repo.DeleteAll(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear audit events")
	}
	return nil
}
