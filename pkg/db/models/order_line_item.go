package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/defactolounge/lounge-backend/pkg/enums"
)

// OrderLineItem captures the snapshot of each menu item within an order.
type OrderLineItem struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID        `gorm:"column:order_id;type:uuid;not null"`
	Name           string           `gorm:"column:name;not null"`
	Department     enums.Department `gorm:"column:department;type:department;not null"`
	UnitPriceCents int              `gorm:"column:unit_price_cents;not null"`
	Qty            int              `gorm:"column:qty;not null"`
	TotalCents     int              `gorm:"column:total_cents;not null"`
	Notes          *string          `gorm:"column:notes"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
