package controllers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
)

type lineItemResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Department     enums.Department `json:"department"`
	UnitPriceCents int              `json:"unit_price_cents"`
	Qty            int              `json:"qty"`
	TotalCents     int              `json:"total_cents"`
	Notes          *string          `json:"notes,omitempty"`
}

type orderResponse struct {
	ID             uuid.UUID                `json:"id"`
	TableID        uuid.UUID                `json:"table_id"`
	Status         enums.OrderStatus        `json:"status"`
	PaymentStatus  enums.OrderPaymentStatus `json:"payment_status"`
	TotalCents     int                      `json:"total_cents"`
	TotalPaidCents int                      `json:"total_paid_cents"`
	Notes          *string                  `json:"notes,omitempty"`
	VoidReason     *string                  `json:"void_reason,omitempty"`
	Items          []lineItemResponse       `json:"items"`
	ServedAt       *time.Time               `json:"served_at,omitempty"`
	ClosedAt       *time.Time               `json:"closed_at,omitempty"`
	VoidedAt       *time.Time               `json:"voided_at,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

type intentResponse struct {
	ID               uuid.UUID                 `json:"id"`
	OrderID          uuid.UUID                 `json:"order_id"`
	TableID          uuid.UUID                 `json:"table_id"`
	AmountCents      int                       `json:"amount_cents"`
	Method           *enums.PaymentMethod      `json:"method,omitempty"`
	Status           enums.PaymentIntentStatus `json:"status"`
	VerificationCode string                    `json:"verification_code"`
	SenderName       *string                   `json:"sender_name,omitempty"`
	Reference        *string                   `json:"reference,omitempty"`
	ClaimedAt        *time.Time                `json:"claimed_at,omitempty"`
	VerifiedAt       *time.Time                `json:"verified_at,omitempty"`
	VerifiedByRole   *enums.ActorRole          `json:"verified_by_role,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
}

type paymentResponse struct {
	ID          uuid.UUID                 `json:"id"`
	OrderID     uuid.UUID                 `json:"order_id"`
	Method      enums.PaymentMethod       `json:"method"`
	AmountCents int                       `json:"amount_cents"`
	Status      enums.LegacyPaymentStatus `json:"status"`
	Reference   *string                   `json:"reference,omitempty"`
	SenderName  *string                   `json:"sender_name,omitempty"`
	VerifiedAt  *time.Time                `json:"verified_at,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
}

type auditEventResponse struct {
	ID              uuid.UUID            `json:"id"`
	Type            enums.AuditEventType `json:"type"`
	ActorRole       enums.ActorRole      `json:"actor_role"`
	OrderID         *uuid.UUID           `json:"order_id,omitempty"`
	TableID         *uuid.UUID           `json:"table_id,omitempty"`
	PaymentIntentID *uuid.UUID           `json:"payment_intent_id,omitempty"`
	Metadata        json.RawMessage      `json:"metadata,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

type tableResponse struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Zone     enums.TableZone   `json:"zone"`
	Capacity int               `json:"capacity"`
	Status   enums.TableStatus `json:"status"`
}

type staffUserResponse struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
	Role        enums.ActorRole `json:"role"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
}

func toOrderResponse(order *models.Order) orderResponse {
	items := make([]lineItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, lineItemResponse{
			ID:             item.ID,
			Name:           item.Name,
			Department:     item.Department,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     item.TotalCents,
			Notes:          item.Notes,
		})
	}
	return orderResponse{
		ID:             order.ID,
		TableID:        order.TableID,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		TotalCents:     order.TotalCents,
		TotalPaidCents: order.TotalPaidCents,
		Notes:          order.Notes,
		VoidReason:     order.VoidReason,
		Items:          items,
		ServedAt:       order.ServedAt,
		ClosedAt:       order.ClosedAt,
		VoidedAt:       order.VoidedAt,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

func toIntentResponse(intent *models.PaymentIntent) intentResponse {
	return intentResponse{
		ID:               intent.ID,
		OrderID:          intent.OrderID,
		TableID:          intent.TableID,
		AmountCents:      intent.AmountCents,
		Method:           intent.Method,
		Status:           intent.Status,
		VerificationCode: intent.VerificationCode,
		SenderName:       intent.SenderName,
		Reference:        intent.Reference,
		ClaimedAt:        intent.ClaimedAt,
		VerifiedAt:       intent.VerifiedAt,
		VerifiedByRole:   intent.VerifiedByRole,
		CreatedAt:        intent.CreatedAt,
	}
}

func toPaymentResponse(payment *models.Payment) paymentResponse {
	return paymentResponse{
		ID:          payment.ID,
		OrderID:     payment.OrderID,
		Method:      payment.Method,
		AmountCents: payment.AmountCents,
		Status:      payment.Status,
		Reference:   payment.Reference,
		SenderName:  payment.SenderName,
		VerifiedAt:  payment.VerifiedAt,
		CreatedAt:   payment.CreatedAt,
	}
}

func toAuditEventResponse(event models.AuditEvent) auditEventResponse {
	return auditEventResponse{
		ID:              event.ID,
		Type:            event.Type,
		ActorRole:       event.ActorRole,
		OrderID:         event.OrderID,
		TableID:         event.TableID,
		PaymentIntentID: event.PaymentIntentID,
		Metadata:        event.Metadata,
		CreatedAt:       event.CreatedAt,
	}
}

func toTableResponse(table models.Table) tableResponse {
	return tableResponse{
		ID:       table.ID,
		Name:     table.Name,
		Zone:     table.Zone,
		Capacity: table.Capacity,
		Status:   table.Status,
	}
}

func toStaffUserResponse(user *models.StaffUser) staffUserResponse {
	return staffUserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		LastLoginAt: user.LastLoginAt,
	}
}
