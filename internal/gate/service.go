package gate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/internal/audit"
	"github.com/defactolounge/lounge-backend/internal/intents"
	"github.com/defactolounge/lounge-backend/internal/messaging"
	"github.com/defactolounge/lounge-backend/internal/orders"
	"github.com/defactolounge/lounge-backend/internal/tables"
	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
	"github.com/defactolounge/lounge-backend/pkg/logger"
	"github.com/defactolounge/lounge-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the payment gate controller: it sits between the storefront and
// the order ledger and refuses to let an order reach served/closed until the
// money is claimed and independently verified.
type Service interface {
	OpenPaymentFlow(ctx context.Context, orderID uuid.UUID, actor enums.ActorRole) (*models.PaymentIntent, bool, error)
	SelectMethod(ctx context.Context, orderID uuid.UUID, method enums.PaymentMethod, actor enums.ActorRole) error
	ClaimPayment(ctx context.Context, input ClaimPaymentInput) (*models.PaymentIntent, error)
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.PaymentIntent, error)
	AdvanceOrder(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actor enums.ActorRole) (*models.Order, error)
	Handoff(ctx context.Context, orderID uuid.UUID, channel enums.MessageChannel, actor enums.ActorRole) (*HandoffPayload, error)
	RecordChannelSelected(ctx context.Context, orderID uuid.UUID, channel enums.MessageChannel, actor enums.ActorRole) error
	RecordMessageOpened(ctx context.Context, orderID uuid.UUID, channel enums.MessageChannel, actor enums.ActorRole) error
}

// ClaimPaymentInput is the guest's "I have paid" assertion.
type ClaimPaymentInput struct {
	OrderID    uuid.UUID
	Method     enums.PaymentMethod
	Reference  *string
	SenderName *string
	ActorRole  enums.ActorRole
}

// VerifyPaymentInput is the manager's independent confirmation.
type VerifyPaymentInput struct {
	OrderID   uuid.UUID
	ActorRole enums.ActorRole
}

// HandoffPayload is the composed message and deep link for an outbound channel.
type HandoffPayload struct {
	Channel enums.MessageChannel `json:"channel"`
	Text    string               `json:"text"`
	Link    string               `json:"link,omitempty"`
}

// advanceOrderSteps is the forward pipeline; voids go through the ledger.
var advanceOrderSteps = map[enums.OrderStatus]enums.OrderStatus{
	enums.OrderStatusCreated:   enums.OrderStatusAccepted,
	enums.OrderStatusAccepted:  enums.OrderStatusPreparing,
	enums.OrderStatusPreparing: enums.OrderStatusReady,
	enums.OrderStatusReady:     enums.OrderStatusServed,
	enums.OrderStatusServed:    enums.OrderStatusClosed,
}

// gatedTargets require a verified payment before the transition commits.
var gatedTargets = map[enums.OrderStatus]struct{}{
	enums.OrderStatusServed: {},
	enums.OrderStatusClosed: {},
}

type service struct {
	tx        txRunner
	orders    orders.Service
	intents   intents.Service
	tables    tables.Service
	auditor   audit.Recorder
	messenger messaging.Builder
	metrics   *metrics.GateMetrics
	logg      *logger.Logger
}

// Params collects the gate dependencies.
type Params struct {
	Tx        txRunner
	Orders    orders.Service
	Intents   intents.Service
	Tables    tables.Service
	Auditor   audit.Recorder
	Messenger messaging.Builder
	Metrics   *metrics.GateMetrics
	Logger    *logger.Logger
}

// NewService builds the payment gate.
func NewService(params Params) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.Intents == nil {
		return nil, fmt.Errorf("intents service required")
	}
	if params.Tables == nil {
		return nil, fmt.Errorf("tables service required")
	}
	if params.Auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if params.Messenger == nil {
		return nil, fmt.Errorf("message builder required")
	}
	return &service{
		tx:        params.Tx,
		orders:    params.Orders,
		intents:   params.Intents,
		tables:    params.Tables,
		auditor:   params.Auditor,
		messenger: params.Messenger,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

// OpenPaymentFlow resumes the live intent for the order, creating one when
// none exists. The created flag tells the storefront whether the guest is
// mid-flow already.
func (s *service) OpenPaymentFlow(ctx context.Context, orderID uuid.UUID, actor enums.ActorRole) (*models.PaymentIntent, bool, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if order.Status.IsTerminal() {
		return nil, false, pkgerrors.New(pkgerrors.CodeStateConflict, "order no longer accepts payments")
	}

	intent, created, err := s.intents.CreateIntent(ctx, intents.CreateIntentInput{
		OrderID:     order.ID,
		TableID:     order.TableID,
		AmountCents: order.TotalCents,
		ActorRole:   actor,
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		if err := s.orders.SetPaymentStatus(ctx, nil, order.ID, enums.OrderPaymentStatusPending); err != nil {
			return nil, false, err
		}
	}
	return intent, created, nil
}

// SelectMethod is audit-only: the method binds to the intent at claim time.
func (s *service) SelectMethod(ctx context.Context, orderID uuid.UUID, method enums.PaymentMethod, actor enums.ActorRole) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	intent, err := s.intents.GetIntentByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.auditor.Record(ctx, tx, audit.RecordEventInput{
			Type:            enums.AuditEventPaymentMethodSelected,
			ActorRole:       actor,
			OrderID:         &intent.OrderID,
			TableID:         &intent.TableID,
			PaymentIntentID: &intent.ID,
			Metadata:        map[string]any{"method": method.String()},
		})
		return err
	})
}

func (s *service) ClaimPayment(ctx context.Context, input ClaimPaymentInput) (*models.PaymentIntent, error) {
	validated, err := validateClaim(input.Method, input.SenderName, input.Reference)
	if err != nil {
		s.metrics.IncClaimRejection(validated.Reason)
		return nil, err
	}

	var claimed *models.PaymentIntent
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		intent, err := s.intents.Claim(ctx, tx, intents.ClaimInput{
			OrderID:    input.OrderID,
			Method:     input.Method,
			Reference:  validated.Reference,
			SenderName: validated.SenderName,
			ActorRole:  input.ActorRole,
		})
		if err != nil {
			return err
		}

		payment := &models.Payment{
			OrderID:     intent.OrderID,
			Method:      input.Method,
			AmountCents: intent.AmountCents,
			Status:      enums.LegacyPaymentStatusPending,
			Reference:   validated.Reference,
			SenderName:  validated.SenderName,
		}
		if err := s.orders.RecordPayment(ctx, tx, payment); err != nil {
			return err
		}
		if err := s.orders.SetPaymentStatus(ctx, tx, intent.OrderID, enums.OrderPaymentStatusClaimed); err != nil {
			return err
		}
		claimed = intent
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncClaim(input.Method.String())
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": input.OrderID.String(),
			"method":   input.Method.String(),
		})
		s.logg.Info(logCtx, "payment claimed")
	}
	return claimed, nil
}

func (s *service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.PaymentIntent, error) {
	if !input.ActorRole.CanVerifyPayments() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment verification requires a manager")
	}

	var verified *models.PaymentIntent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		intent, err := s.intents.Verify(ctx, tx, intents.VerifyInput{
			OrderID:   input.OrderID,
			ActorRole: input.ActorRole,
		})
		if err != nil {
			return err
		}
		if err := s.orders.SetPaymentStatus(ctx, tx, intent.OrderID, enums.OrderPaymentStatusVerified); err != nil {
			return err
		}
		verified = intent
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncVerification(input.ActorRole.String())
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":   input.OrderID.String(),
			"actor_role": input.ActorRole.String(),
		})
		s.logg.Info(logCtx, "payment verified")
	}
	return verified, nil
}

// AdvanceOrder moves the order one step along the pipeline. The served and
// closed transitions refuse to commit until the payment intent is verified;
// the order is left untouched on refusal.
func (s *service) AdvanceOrder(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actor enums.ActorRole) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	next, ok := advanceOrderSteps[order.Status]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s and cannot advance", order.Status))
	}
	if target != next {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s; next step is %s", order.Status, next))
	}

	if _, gated := gatedTargets[target]; gated {
		paid, err := s.intents.IsPaymentVerified(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if !paid {
			s.metrics.IncBlocked()
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment verification required")
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.UpdateOrderStatus(ctx, tx, order.ID, target); err != nil {
			return err
		}
		switch target {
		case enums.OrderStatusServed:
			if _, err := s.auditor.Record(ctx, tx, audit.RecordEventInput{
				Type:      enums.AuditEventOrderFulfilled,
				ActorRole: actor,
				OrderID:   &order.ID,
				TableID:   &order.TableID,
			}); err != nil {
				return err
			}
		case enums.OrderStatusClosed:
			if err := s.tables.SetStatus(ctx, tx, order.TableID, enums.TableStatusIdle); err != nil {
				return err
			}
			if _, err := s.auditor.Record(ctx, tx, audit.RecordEventInput{
				Type:      enums.AuditEventCheckoutCompleted,
				ActorRole: actor,
				OrderID:   &order.ID,
				TableID:   &order.TableID,
				Metadata:  map[string]any{"total_cents": order.TotalCents},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncAdvance(target.String())
	return s.orders.GetOrder(ctx, order.ID)
}

// Handoff composes the outbound message for the channel and records the
// handoff in the audit log.
func (s *service) Handoff(ctx context.Context, orderID uuid.UUID, channel enums.MessageChannel, actor enums.ActorRole) (*HandoffPayload, error) {
	if !channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown message channel")
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var intent *models.PaymentIntent
	if found, err := s.intents.GetIntentByOrderID(ctx, order.ID); err == nil {
		intent = found
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	tableName := ""
	if table, err := s.tables.Get(ctx, order.TableID); err == nil {
		tableName = table.Name
	}

	text := s.messenger.BuildOrderMessage(order, intent, tableName)
	link, err := s.messenger.Link(channel, text)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		input := audit.RecordEventInput{
			Type:      enums.AuditEventHandoffCompleted,
			ActorRole: actor,
			OrderID:   &order.ID,
			TableID:   &order.TableID,
			Metadata:  map[string]any{"channel": channel.String()},
		}
		if intent != nil {
			input.PaymentIntentID = &intent.ID
		}
		_, err := s.auditor.Record(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &HandoffPayload{Channel: channel, Text: text, Link: link}, nil
}

func (s *service) RecordChannelSelected(ctx context.Context, orderID uuid.UUID, channel enums.MessageChannel, actor enums.ActorRole) error {
	return s.recordChannelEvent(ctx, orderID, channel, actor, enums.AuditEventChannelSelected)
}

func (s *service) RecordMessageOpened(ctx context.Context, orderID uuid.UUID, channel enums.MessageChannel, actor enums.ActorRole) error {
	return s.recordChannelEvent(ctx, orderID, channel, actor, enums.AuditEventMessageOpened)
}

func (s *service) recordChannelEvent(ctx context.Context, orderID uuid.UUID, channel enums.MessageChannel, actor enums.ActorRole, eventType enums.AuditEventType) error {
	if !channel.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown message channel")
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.auditor.Record(ctx, tx, audit.RecordEventInput{
			Type:      eventType,
			ActorRole: actor,
			OrderID:   &order.ID,
			TableID:   &order.TableID,
			Metadata:  map[string]any{"channel": channel.String()},
		})
		return err
	})
}
