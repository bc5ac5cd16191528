package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/defactolounge/lounge-backend/pkg/enums"
)

// Order is one table-bound transaction in the ledger.
type Order struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TableID        uuid.UUID                `gorm:"column:table_id;type:uuid;not null"`
	Status         enums.OrderStatus        `gorm:"column:status;type:order_status;not null;default:'created'"`
	PaymentStatus  enums.OrderPaymentStatus `gorm:"column:payment_status;type:order_payment_status;not null;default:'unpaid'"`
	TotalCents     int                      `gorm:"column:total_cents;not null"`
	TotalPaidCents int                      `gorm:"column:total_paid_cents;not null;default:0"`
	CreatedByRole  enums.ActorRole          `gorm:"column:created_by_role;type:actor_role;not null;default:'staff'"`
	Notes          *string                  `gorm:"column:notes"`
	VoidReason     *string                  `gorm:"column:void_reason"`
	ServedAt       *time.Time               `gorm:"column:served_at"`
	ClosedAt       *time.Time               `gorm:"column:closed_at"`
	VoidedAt       *time.Time               `gorm:"column:voided_at"`
	Items          []OrderLineItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
