package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/internal/audit"
	"github.com/defactolounge/lounge-backend/internal/intents"
	"github.com/defactolounge/lounge-backend/internal/tables"
	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the order ledger. Status writes here are unconditional; the
// payment gate decides which transitions are allowed.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filters Filters) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus) error
	SetPaymentStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderPaymentStatus) error
	VoidOrder(ctx context.Context, input VoidOrderInput) (*models.Order, error)

	AddPayment(ctx context.Context, input AddPaymentInput) (*models.Payment, error)
	RecordPayment(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Payment, error)
	ListPayments(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
}

// LineItemInput is one menu item on a new order.
type LineItemInput struct {
	Name           string
	Department     enums.Department
	UnitPriceCents int
	Qty            int
	Notes          *string
}

// CreateOrderInput captures a guest checkout.
type CreateOrderInput struct {
	TableID   uuid.UUID
	Items     []LineItemInput
	Notes     *string
	ActorRole enums.ActorRole
}

// VoidOrderInput cancels an order and its live payment intent.
type VoidOrderInput struct {
	OrderID   uuid.UUID
	Reason    string
	ActorRole enums.ActorRole
}

// AddPaymentInput appends a raw payment capture to an order.
type AddPaymentInput struct {
	OrderID     uuid.UUID
	Method      enums.PaymentMethod
	AmountCents int
	Reference   *string
	SenderName  *string
	ActorRole   enums.ActorRole
}

// VerifyPaymentInput resolves a raw payment capture.
type VerifyPaymentInput struct {
	PaymentID uuid.UUID
	Approve   bool
	ActorRole enums.ActorRole
}

type service struct {
	repo    Repository
	tx      txRunner
	auditor audit.Recorder
	tables  tables.Service
	intents intents.Service
	now     func() time.Time
}

// NewService builds the order ledger service.
func NewService(repo Repository, tx txRunner, auditor audit.Recorder, tablesSvc tables.Service, intentsSvc intents.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if tablesSvc == nil {
		return nil, fmt.Errorf("tables service required")
	}
	if intentsSvc == nil {
		return nil, fmt.Errorf("intents service required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		auditor: auditor,
		tables:  tablesSvc,
		intents: intentsSvc,
		now:     time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.TableID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	role := input.ActorRole
	if role == "" {
		role = enums.ActorRoleStaff
	}

	total := 0
	lineItems := make([]models.OrderLineItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item name required")
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive")
		}
		if item.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item price cannot be negative")
		}
		if !item.Department.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown department")
		}
		lineTotal := item.UnitPriceCents * item.Qty
		total += lineTotal
		lineItems = append(lineItems, models.OrderLineItem{
			ID:             uuid.New(),
			Name:           item.Name,
			Department:     item.Department,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     lineTotal,
			Notes:          item.Notes,
		})
	}

	order := &models.Order{
		ID:            uuid.New(),
		TableID:       input.TableID,
		Status:        enums.OrderStatusCreated,
		PaymentStatus: enums.OrderPaymentStatusUnpaid,
		TotalCents:    total,
		CreatedByRole: role,
		Notes:         input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		for i := range lineItems {
			lineItems[i].OrderID = order.ID
		}
		if err := repo.CreateLineItems(ctx, lineItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create line items")
		}
		if err := s.tables.SetStatus(ctx, tx, input.TableID, enums.TableStatusOccupied); err != nil {
			return err
		}
		_, err := s.auditor.Record(ctx, tx, audit.RecordEventInput{
			Type:      enums.AuditEventOrderCreated,
			ActorRole: role,
			OrderID:   &order.ID,
			TableID:   &order.TableID,
			Metadata: map[string]any{
				"total_cents": order.TotalCents,
				"item_count":  len(lineItems),
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	order.Items = lineItems
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, filters Filters) ([]models.Order, error) {
	orders, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// UpdateOrderStatus writes the target status without gating. Callers that
// need the payment gate go through internal/gate instead.
func (s *service) UpdateOrderStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	updates := map[string]any{"status": status}
	now := s.now().UTC()
	switch status {
	case enums.OrderStatusServed:
		updates["served_at"] = now
	case enums.OrderStatusClosed:
		updates["closed_at"] = now
	case enums.OrderStatusVoided:
		updates["voided_at"] = now
	}
	if err := s.repo.WithTx(tx).Update(ctx, orderID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return nil
}

func (s *service) SetPaymentStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderPaymentStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status")
	}
	if err := s.repo.WithTx(tx).UpdatePaymentStatus(ctx, orderID, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order payment status")
	}
	return nil
}

func (s *service) VoidOrder(ctx context.Context, input VoidOrderInput) (*models.Order, error) {
	order, err := s.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is already %s", order.Status))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.UpdateOrderStatus(ctx, tx, order.ID, enums.OrderStatusVoided); err != nil {
			return err
		}
		if err := s.tables.SetStatus(ctx, tx, order.TableID, enums.TableStatusIdle); err != nil {
			return err
		}

		reason := input.Reason
		if reason != "" {
			if err := s.repo.WithTx(tx).Update(ctx, order.ID, map[string]any{"void_reason": reason}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store void reason")
			}
		}

		// Voiding the live intent records the order_voided event with the
		// intent reference; without one we log it here.
		_, voidErr := s.intents.Void(ctx, tx, intents.VoidInput{
			OrderID:   order.ID,
			Reason:    reason,
			ActorRole: input.ActorRole,
		})
		if voidErr != nil {
			typed := pkgerrors.As(voidErr)
			if typed == nil || (typed.Code() != pkgerrors.CodeNotFound && typed.Code() != pkgerrors.CodeStateConflict) {
				return voidErr
			}
			metadata := map[string]any{}
			if reason != "" {
				metadata["reason"] = reason
			}
			if _, err := s.auditor.Record(ctx, tx, audit.RecordEventInput{
				Type:      enums.AuditEventOrderVoided,
				ActorRole: input.ActorRole,
				OrderID:   &order.ID,
				TableID:   &order.TableID,
				Metadata:  metadata,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, order.ID)
}

func (s *service) AddPayment(ctx context.Context, input AddPaymentInput) (*models.Payment, error) {
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	order, err := s.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order no longer accepts payments")
	}

	payment := &models.Payment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		Method:      input.Method,
		AmountCents: input.AmountCents,
		Status:      enums.LegacyPaymentStatusPending,
		Reference:   input.Reference,
		SenderName:  input.SenderName,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// RecordPayment appends a raw capture inside the caller's transaction.
func (s *service) RecordPayment(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	if payment == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment required")
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if _, err := s.repo.WithTx(tx).CreatePayment(ctx, payment); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return nil
}

func (s *service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Payment, error) {
	if !input.ActorRole.CanVerifyPayments() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment verification requires a manager")
	}

	payment, err := s.repo.FindPayment(ctx, input.PaymentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment.Status != enums.LegacyPaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment is already %s", payment.Status))
	}

	status := enums.LegacyPaymentStatusRejected
	if input.Approve {
		status = enums.LegacyPaymentStatusVerified
	}
	now := s.now().UTC()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		updates := map[string]any{"status": status}
		if input.Approve {
			updates["verified_at"] = now
		}
		if err := repo.UpdatePayment(ctx, payment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
		}

		totalPaid, err := repo.SumVerifiedPayments(ctx, payment.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum verified payments")
		}
		orderUpdates := map[string]any{"total_paid_cents": totalPaid}
		order, err := repo.FindByID(ctx, payment.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if totalPaid > 0 && totalPaid < order.TotalCents {
			orderUpdates["payment_status"] = enums.OrderPaymentStatusPartiallyPaid
		}
		if err := repo.Update(ctx, payment.OrderID, orderUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order totals")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment.Status = status
	if input.Approve {
		payment.VerifiedAt = &now
	}
	return payment, nil
}

func (s *service) ListPayments(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	payments, err := s.repo.ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return payments, nil
}
