package intents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/internal/audit"
	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the payment intent state machine. The tx-scoped methods apply
// one transition and append its paired audit event; both commit or neither
// does.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*models.PaymentIntent, bool, error)
	Claim(ctx context.Context, tx *gorm.DB, input ClaimInput) (*models.PaymentIntent, error)
	Verify(ctx context.Context, tx *gorm.DB, input VerifyInput) (*models.PaymentIntent, error)
	Void(ctx context.Context, tx *gorm.DB, input VoidInput) (*models.PaymentIntent, error)
	ExpirePending(ctx context.Context, olderThan time.Time, batchSize int) (int, error)
	GetIntent(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error)
	GetIntentByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentIntent, error)
	List(ctx context.Context, filters Filters) ([]models.PaymentIntent, error)
	IsPaymentVerified(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// CreateIntentInput opens (or resumes) the payment flow for an order.
type CreateIntentInput struct {
	OrderID     uuid.UUID
	TableID     uuid.UUID
	AmountCents int
	ActorRole   enums.ActorRole
}

// ClaimInput marks an intent as claimed by the guest.
type ClaimInput struct {
	OrderID    uuid.UUID
	Method     enums.PaymentMethod
	Reference  *string
	SenderName *string
	ActorRole  enums.ActorRole
	Metadata   map[string]any
}

// VerifyInput confirms a claimed intent.
type VerifyInput struct {
	OrderID   uuid.UUID
	ActorRole enums.ActorRole
}

// VoidInput cancels a live intent.
type VoidInput struct {
	OrderID   uuid.UUID
	Reason    string
	ActorRole enums.ActorRole
}

type service struct {
	repo    Repository
	tx      txRunner
	auditor audit.Recorder
	now     func() time.Time
	newCode func() (string, error)
}

// NewService builds the payment intent service.
func NewService(repo Repository, tx txRunner, auditor audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("intents repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		auditor: auditor,
		now:     time.Now,
		newCode: NewVerificationCode,
	}, nil
}

// CreateIntent is an atomic get-or-create: repeated calls for the same order
// return the live intent instead of minting a second one.
func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*models.PaymentIntent, bool, error) {
	if input.OrderID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.AmountCents <= 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var intent *models.PaymentIntent
	var created bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindActiveByOrder(ctx, input.OrderID)
		if err == nil {
			intent = existing
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
		}

		code, err := s.newCode()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
		}
		fresh := &models.PaymentIntent{
			ID:               uuid.New(),
			OrderID:          input.OrderID,
			TableID:          input.TableID,
			AmountCents:      input.AmountCents,
			Status:           enums.PaymentIntentStatusPending,
			VerificationCode: code,
		}
		if _, err := repo.Create(ctx, fresh); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
		}
		if _, err := s.auditor.Record(ctx, tx, audit.RecordEventInput{
			Type:            enums.AuditEventPaymentIntentCreated,
			ActorRole:       input.ActorRole,
			OrderID:         &fresh.OrderID,
			TableID:         &fresh.TableID,
			PaymentIntentID: &fresh.ID,
			Metadata:        map[string]any{"amount_cents": fresh.AmountCents},
		}); err != nil {
			return err
		}
		intent = fresh
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return intent, created, nil
}

func (s *service) Claim(ctx context.Context, tx *gorm.DB, input ClaimInput) (*models.PaymentIntent, error) {
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	repo := s.repo.WithTx(tx)
	intent, err := s.loadForOrder(ctx, repo, input.OrderID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updates := map[string]any{
		"method":     input.Method,
		"claimed_at": now,
	}
	if input.Reference != nil {
		updates["reference"] = *input.Reference
	}
	if input.SenderName != nil {
		updates["sender_name"] = *input.SenderName
	}

	affected, err := repo.TransitionStatus(ctx, intent.ID,
		enums.PaymentIntentStatusPending, enums.PaymentIntentStatusClaimed, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim payment intent")
	}
	if affected == 0 {
		return nil, s.stateConflict(ctx, repo, intent.ID, enums.PaymentIntentStatusPending)
	}

	metadata := map[string]any{
		"method":       input.Method.String(),
		"amount_cents": intent.AmountCents,
	}
	for k, v := range input.Metadata {
		metadata[k] = v
	}
	if input.Reference != nil {
		metadata["reference"] = *input.Reference
	}
	if input.SenderName != nil {
		metadata["sender_name"] = *input.SenderName
	}
	if _, err := s.auditor.Record(ctx, tx, audit.RecordEventInput{
		Type:            enums.AuditEventPaymentClaimed,
		ActorRole:       input.ActorRole,
		OrderID:         &intent.OrderID,
		TableID:         &intent.TableID,
		PaymentIntentID: &intent.ID,
		Metadata:        metadata,
	}); err != nil {
		return nil, err
	}

	intent.Status = enums.PaymentIntentStatusClaimed
	method := input.Method
	intent.Method = &method
	intent.ClaimedAt = &now
	intent.Reference = input.Reference
	intent.SenderName = input.SenderName
	return intent, nil
}

func (s *service) Verify(ctx context.Context, tx *gorm.DB, input VerifyInput) (*models.PaymentIntent, error) {
	repo := s.repo.WithTx(tx)
	intent, err := s.loadForOrder(ctx, repo, input.OrderID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	affected, err := repo.TransitionStatus(ctx, intent.ID,
		enums.PaymentIntentStatusClaimed, enums.PaymentIntentStatusVerified, map[string]any{
			"verified_at":      now,
			"verified_by_role": input.ActorRole,
		})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify payment intent")
	}
	if affected == 0 {
		return nil, s.stateConflict(ctx, repo, intent.ID, enums.PaymentIntentStatusClaimed)
	}

	if _, err := s.auditor.Record(ctx, tx, audit.RecordEventInput{
		Type:            enums.AuditEventPaymentVerified,
		ActorRole:       input.ActorRole,
		OrderID:         &intent.OrderID,
		TableID:         &intent.TableID,
		PaymentIntentID: &intent.ID,
		Metadata: map[string]any{
			"amount_cents":      intent.AmountCents,
			"verification_code": intent.VerificationCode,
		},
	}); err != nil {
		return nil, err
	}

	role := input.ActorRole
	intent.Status = enums.PaymentIntentStatusVerified
	intent.VerifiedAt = &now
	intent.VerifiedByRole = &role
	return intent, nil
}

func (s *service) Void(ctx context.Context, tx *gorm.DB, input VoidInput) (*models.PaymentIntent, error) {
	repo := s.repo.WithTx(tx)
	intent, err := s.loadForOrder(ctx, repo, input.OrderID)
	if err != nil {
		return nil, err
	}
	if intent.Status.IsTerminal() || intent.Status == enums.PaymentIntentStatusVerified {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment intent is %s and cannot be voided", intent.Status))
	}

	now := s.now().UTC()
	affected, err := repo.TransitionStatus(ctx, intent.ID,
		intent.Status, enums.PaymentIntentStatusVoided, map[string]any{"voided_at": now})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "void payment intent")
	}
	if affected == 0 {
		return nil, s.stateConflict(ctx, repo, intent.ID, intent.Status)
	}

	metadata := map[string]any{}
	if input.Reason != "" {
		metadata["reason"] = input.Reason
	}
	if _, err := s.auditor.Record(ctx, tx, audit.RecordEventInput{
		Type:            enums.AuditEventOrderVoided,
		ActorRole:       input.ActorRole,
		OrderID:         &intent.OrderID,
		TableID:         &intent.TableID,
		PaymentIntentID: &intent.ID,
		Metadata:        metadata,
	}); err != nil {
		return nil, err
	}

	intent.Status = enums.PaymentIntentStatusVoided
	intent.VoidedAt = &now
	return intent, nil
}

// ExpirePending moves stale pending intents to expired, one transaction per
// intent so a single failure does not abort the sweep.
func (s *service) ExpirePending(ctx context.Context, olderThan time.Time, batchSize int) (int, error) {
	stale, err := s.repo.FindPendingBefore(ctx, olderThan, batchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query stale payment intents")
	}

	expired := 0
	for _, intent := range stale {
		intent := intent
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			now := s.now().UTC()
			affected, err := repo.TransitionStatus(ctx, intent.ID,
				enums.PaymentIntentStatusPending, enums.PaymentIntentStatusExpired,
				map[string]any{"expired_at": now})
			if err != nil {
				return err
			}
			if affected == 0 {
				// Claimed or voided since the read; leave it alone.
				return nil
			}
			_, err = s.auditor.Record(ctx, tx, audit.RecordEventInput{
				Type:            enums.AuditEventPaymentExpired,
				ActorRole:       enums.ActorRoleStaff,
				OrderID:         &intent.OrderID,
				TableID:         &intent.TableID,
				PaymentIntentID: &intent.ID,
				Metadata:        map[string]any{"amount_cents": intent.AmountCents},
			})
			if err != nil {
				return err
			}
			expired++
			return nil
		})
		if err != nil {
			return expired, err
		}
	}
	return expired, nil
}

func (s *service) GetIntent(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error) {
	intent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}
	return intent, nil
}

func (s *service) GetIntentByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentIntent, error) {
	intent, err := s.repo.FindNewestByOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}
	return intent, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]models.PaymentIntent, error) {
	intents, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment intents")
	}
	return intents, nil
}

func (s *service) IsPaymentVerified(ctx context.Context, orderID uuid.UUID) (bool, error) {
	count, err := s.repo.CountVerifiedByOrder(ctx, orderID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check verified payment")
	}
	return count > 0, nil
}

func (s *service) loadForOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.PaymentIntent, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	intent, err := repo.FindNewestByOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}
	return intent, nil
}

func (s *service) stateConflict(ctx context.Context, repo Repository, id uuid.UUID, expected enums.PaymentIntentStatus) error {
	current, err := repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment intent is no longer %s", expected))
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("payment intent is %s, expected %s", current.Status, expected))
}
