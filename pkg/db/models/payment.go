package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/defactolounge/lounge-backend/pkg/enums"
)

// Payment is a raw per-capture record on an order. The payment intent
// remains authoritative for gating; these rows feed reconciliation and
// the partially-paid rollup.
type Payment struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID                 `gorm:"column:order_id;type:uuid;not null;index"`
	Method      enums.PaymentMethod       `gorm:"column:method;type:payment_method;not null"`
	AmountCents int                       `gorm:"column:amount_cents;not null"`
	Status      enums.LegacyPaymentStatus `gorm:"column:status;type:legacy_payment_status;not null;default:'pending'"`
	Reference   *string                   `gorm:"column:reference"`
	SenderName  *string                   `gorm:"column:sender_name"`
	VerifiedAt  *time.Time                `gorm:"column:verified_at"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
