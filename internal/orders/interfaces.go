package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
)

// Repository defines persistence operations for orders and raw payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters Filters) ([]models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.OrderPaymentStatus) error

	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SumVerifiedPayments(ctx context.Context, orderID uuid.UUID) (int, error)
}

// Filters narrows order listings. Zero values are ignored.
type Filters struct {
	Status  *enums.OrderStatus
	TableID *uuid.UUID
	Active  bool
	Limit   int
}
