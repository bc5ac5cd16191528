package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/defactolounge/lounge-backend/pkg/enums"
)

// AuditEvent records an immutable workflow event. Events that belong to an
// intent transition are inserted in the same transaction as the transition.
type AuditEvent struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type            enums.AuditEventType `gorm:"column:type;type:audit_event_type;not null"`
	ActorRole       enums.ActorRole      `gorm:"column:actor_role;type:actor_role;not null"`
	OrderID         *uuid.UUID           `gorm:"column:order_id;type:uuid;index"`
	TableID         *uuid.UUID           `gorm:"column:table_id;type:uuid"`
	PaymentIntentID *uuid.UUID           `gorm:"column:payment_intent_id;type:uuid;index"`
	Metadata        json.RawMessage      `gorm:"column:metadata;type:jsonb"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
}
