package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
)

// Repository defines persistence operations for the audit event log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error)
	List(ctx context.Context, filters Filters) ([]models.AuditEvent, error)
	DeleteAll(ctx context.Context) error
}

// Filters narrows audit event reads. Zero values are ignored.
type Filters struct {
	Role            *enums.ActorRole
	TableID         *uuid.UUID
	OrderID         *uuid.UUID
	PaymentIntentID *uuid.UUID
	EventType       *enums.AuditEventType
	Limit           int
}
