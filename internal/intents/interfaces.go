package intents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
)

// Repository defines persistence operations for payment intents.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error)
	FindNewestByOrder(ctx context.Context, orderID uuid.UUID) (*models.PaymentIntent, error)
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*models.PaymentIntent, error)
	List(ctx context.Context, filters Filters) ([]models.PaymentIntent, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.PaymentIntentStatus, updates map[string]any) (int64, error)
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.PaymentIntent, error)
	CountVerifiedByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

// Filters narrows intent listings. Zero values are ignored.
type Filters struct {
	OrderID *uuid.UUID
	TableID *uuid.UUID
	Status  *enums.PaymentIntentStatus
	Limit   int
}
