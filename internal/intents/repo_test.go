package intents

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
)

func setupIntentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS payment_intents (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  table_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  method TEXT,
  status TEXT NOT NULL,
  verification_code TEXT NOT NULL,
  sender_name TEXT,
  reference TEXT,
  claimed_at DATETIME,
  verified_at DATETIME,
  verified_by_role TEXT,
  voided_at DATETIME,
  expired_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedIntent(t *testing.T, db *gorm.DB, orderID uuid.UUID, status enums.PaymentIntentStatus, createdAt time.Time) *models.PaymentIntent {
	t.Helper()

	intent := &models.PaymentIntent{
		ID:               uuid.New(),
		OrderID:          orderID,
		TableID:          uuid.New(),
		AmountCents:      1500000,
		Status:           status,
		VerificationCode: "AB12CD",
		CreatedAt:        createdAt,
	}
	require.NoError(t, db.Create(intent).Error)
	return intent
}

func TestTransitionStatusCAS(t *testing.T) {
	db := setupIntentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	intent := seedIntent(t, db, uuid.New(), enums.PaymentIntentStatusPending, time.Now().UTC())

	affected, err := repo.TransitionStatus(ctx, intent.ID,
		enums.PaymentIntentStatusPending, enums.PaymentIntentStatusClaimed,
		map[string]any{"claimed_at": time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Second claim finds no pending row.
	affected, err = repo.TransitionStatus(ctx, intent.ID,
		enums.PaymentIntentStatusPending, enums.PaymentIntentStatusClaimed, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	stored, err := repo.FindByID(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentIntentStatusClaimed, stored.Status)
	assert.NotNil(t, stored.ClaimedAt)
}

func TestFindNewestByOrder(t *testing.T) {
	db := setupIntentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	seedIntent(t, db, orderID, enums.PaymentIntentStatusVoided, base.Add(-time.Hour))
	newest := seedIntent(t, db, orderID, enums.PaymentIntentStatusPending, base)

	found, err := repo.FindNewestByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, found.ID)
}

func TestFindActiveByOrderSkipsTerminal(t *testing.T) {
	db := setupIntentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	seedIntent(t, db, orderID, enums.PaymentIntentStatusExpired, base)

	_, err := repo.FindActiveByOrder(ctx, orderID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	live := seedIntent(t, db, orderID, enums.PaymentIntentStatusClaimed, base.Add(time.Second))
	found, err := repo.FindActiveByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, live.ID, found.ID)
}

func TestFindPendingBefore(t *testing.T) {
	db := setupIntentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	stale := seedIntent(t, db, uuid.New(), enums.PaymentIntentStatusPending, now.Add(-13*time.Hour))
	seedIntent(t, db, uuid.New(), enums.PaymentIntentStatusPending, now.Add(-time.Minute))
	seedIntent(t, db, uuid.New(), enums.PaymentIntentStatusClaimed, now.Add(-13*time.Hour))

	found, err := repo.FindPendingBefore(ctx, now.Add(-12*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
}

func TestCountVerifiedByOrder(t *testing.T) {
	db := setupIntentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	seedIntent(t, db, orderID, enums.PaymentIntentStatusClaimed, time.Now().UTC())

	count, err := repo.CountVerifiedByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Zero(t, count)

	seedIntent(t, db, orderID, enums.PaymentIntentStatusVerified, time.Now().UTC())
	count, err = repo.CountVerifiedByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
