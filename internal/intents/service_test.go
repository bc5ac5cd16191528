package intents

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/internal/audit"
	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeRecorder struct {
	events []audit.RecordEventInput
}

func (f *fakeRecorder) Record(ctx context.Context, tx *gorm.DB, input audit.RecordEventInput) (*models.AuditEvent, error) {
	f.events = append(f.events, input)
	return &models.AuditEvent{ID: uuid.New(), Type: input.Type, ActorRole: input.ActorRole}, nil
}

func (f *fakeRecorder) byType(eventType enums.AuditEventType) []audit.RecordEventInput {
	var out []audit.RecordEventInput
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(t *testing.T) (Service, *gorm.DB, *fakeRecorder) {
	t.Helper()

	db := setupIntentsTestDB(t)
	recorder := &fakeRecorder{}
	svc, err := NewService(NewRepository(db), &testTxRunner{db: db}, recorder)
	require.NoError(t, err)
	return svc, db, recorder
}

func TestCreateIntentGetOrCreate(t *testing.T) {
	svc, _, recorder := newTestService(t)
	ctx := context.Background()

	input := CreateIntentInput{
		OrderID:     uuid.New(),
		TableID:     uuid.New(),
		AmountCents: 1500000,
		ActorRole:   enums.ActorRoleStaff,
	}

	first, created, err := svc.CreateIntent(ctx, input)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, enums.PaymentIntentStatusPending, first.Status)
	assert.Len(t, first.VerificationCode, 6)
	assert.Equal(t, strings.ToUpper(first.VerificationCode), first.VerificationCode)

	second, created, err := svc.CreateIntent(ctx, input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	// Only the first call mints an event.
	assert.Len(t, recorder.byType(enums.AuditEventPaymentIntentCreated), 1)
}

func TestClaimTransitionsAndRecordsEvent(t *testing.T) {
	svc, db, recorder := newTestService(t)
	ctx := context.Background()

	input := CreateIntentInput{OrderID: uuid.New(), TableID: uuid.New(), AmountCents: 500000, ActorRole: enums.ActorRoleStaff}
	intent, _, err := svc.CreateIntent(ctx, input)
	require.NoError(t, err)

	ref := "ABCDEF"
	sender := "Jane Doe"
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Claim(ctx, tx, ClaimInput{
			OrderID:    input.OrderID,
			Method:     enums.PaymentMethodTransfer,
			Reference:  &ref,
			SenderName: &sender,
			ActorRole:  enums.ActorRoleStaff,
		})
		return err
	})
	require.NoError(t, err)

	stored := &models.PaymentIntent{}
	require.NoError(t, db.Where("id = ?", intent.ID).First(stored).Error)
	assert.Equal(t, enums.PaymentIntentStatusClaimed, stored.Status)
	require.NotNil(t, stored.Method)
	assert.Equal(t, enums.PaymentMethodTransfer, *stored.Method)
	assert.NotNil(t, stored.ClaimedAt)

	claims := recorder.byType(enums.AuditEventPaymentClaimed)
	require.Len(t, claims, 1)
	require.NotNil(t, claims[0].PaymentIntentID)
	assert.Equal(t, intent.ID, *claims[0].PaymentIntentID)
}

func TestVerifyRequiresClaim(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	input := CreateIntentInput{OrderID: uuid.New(), TableID: uuid.New(), AmountCents: 100000, ActorRole: enums.ActorRoleStaff}
	_, _, err := svc.CreateIntent(ctx, input)
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Verify(ctx, tx, VerifyInput{OrderID: input.OrderID, ActorRole: enums.ActorRoleManager})
		return err
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestVerifyIsNotRepeatable(t *testing.T) {
	svc, db, recorder := newTestService(t)
	ctx := context.Background()

	input := CreateIntentInput{OrderID: uuid.New(), TableID: uuid.New(), AmountCents: 100000, ActorRole: enums.ActorRoleStaff}
	intent, _, err := svc.CreateIntent(ctx, input)
	require.NoError(t, err)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Claim(ctx, tx, ClaimInput{OrderID: input.OrderID, Method: enums.PaymentMethodCash, ActorRole: enums.ActorRoleStaff})
		return err
	}))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Verify(ctx, tx, VerifyInput{OrderID: input.OrderID, ActorRole: enums.ActorRoleManager})
		return err
	}))

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Verify(ctx, tx, VerifyInput{OrderID: input.OrderID, ActorRole: enums.ActorRoleCEO})
		return err
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	stored := &models.PaymentIntent{}
	require.NoError(t, db.Where("id = ?", intent.ID).First(stored).Error)
	require.NotNil(t, stored.VerifiedByRole)
	assert.Equal(t, enums.ActorRoleManager, *stored.VerifiedByRole)

	// Exactly one verified event despite the retry.
	assert.Len(t, recorder.byType(enums.AuditEventPaymentVerified), 1)
}

func TestVoidRejectsVerifiedIntent(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	input := CreateIntentInput{OrderID: uuid.New(), TableID: uuid.New(), AmountCents: 100000, ActorRole: enums.ActorRoleStaff}
	_, _, err := svc.CreateIntent(ctx, input)
	require.NoError(t, err)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Claim(ctx, tx, ClaimInput{OrderID: input.OrderID, Method: enums.PaymentMethodPOS, ActorRole: enums.ActorRoleStaff})
		return err
	}))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Verify(ctx, tx, VerifyInput{OrderID: input.OrderID, ActorRole: enums.ActorRoleManager})
		return err
	}))

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Void(ctx, tx, VoidInput{OrderID: input.OrderID, Reason: "mistake", ActorRole: enums.ActorRoleManager})
		return err
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestExpirePendingOnlyTouchesStaleIntents(t *testing.T) {
	svc, db, recorder := newTestService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	stale := seedIntent(t, db, uuid.New(), enums.PaymentIntentStatusPending, now.Add(-13*time.Hour))
	fresh := seedIntent(t, db, uuid.New(), enums.PaymentIntentStatusPending, now.Add(-time.Minute))
	claimed := seedIntent(t, db, uuid.New(), enums.PaymentIntentStatusClaimed, now.Add(-14*time.Hour))

	count, err := svc.ExpirePending(ctx, now.Add(-12*time.Hour), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored := &models.PaymentIntent{}
	require.NoError(t, db.Where("id = ?", stale.ID).First(stored).Error)
	assert.Equal(t, enums.PaymentIntentStatusExpired, stored.Status)
	assert.NotNil(t, stored.ExpiredAt)

	stored = &models.PaymentIntent{}
	require.NoError(t, db.Where("id = ?", fresh.ID).First(stored).Error)
	assert.Equal(t, enums.PaymentIntentStatusPending, stored.Status)

	stored = &models.PaymentIntent{}
	require.NoError(t, db.Where("id = ?", claimed.ID).First(stored).Error)
	assert.Equal(t, enums.PaymentIntentStatusClaimed, stored.Status)

	assert.Len(t, recorder.byType(enums.AuditEventPaymentExpired), 1)
}

func TestIsPaymentVerified(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	orderID := uuid.New()
	verified, err := svc.IsPaymentVerified(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, verified)

	seedIntent(t, db, orderID, enums.PaymentIntentStatusVerified, time.Now().UTC())
	verified, err = svc.IsPaymentVerified(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, verified)
}
