package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/defactolounge/lounge-backend/pkg/enums"
)

// PaymentIntent tracks payment progress for an order through the gate.
type PaymentIntent struct {
	ID               uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID                 `gorm:"column:order_id;type:uuid;not null;index"`
	TableID          uuid.UUID                 `gorm:"column:table_id;type:uuid;not null"`
	AmountCents      int                       `gorm:"column:amount_cents;not null"`
	Method           *enums.PaymentMethod      `gorm:"column:method;type:payment_method"`
	Status           enums.PaymentIntentStatus `gorm:"column:status;type:payment_intent_status;not null;default:'pending'"`
	VerificationCode string                    `gorm:"column:verification_code;not null"`
	SenderName       *string                   `gorm:"column:sender_name"`
	Reference        *string                   `gorm:"column:reference"`
	ClaimedAt        *time.Time                `gorm:"column:claimed_at"`
	VerifiedAt       *time.Time                `gorm:"column:verified_at"`
	VerifiedByRole   *enums.ActorRole          `gorm:"column:verified_by_role;type:actor_role"`
	VoidedAt         *time.Time                `gorm:"column:voided_at"`
	ExpiredAt        *time.Time                `gorm:"column:expired_at"`
	CreatedAt        time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
