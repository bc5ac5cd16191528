package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddls := []string{`
CREATE TABLE IF NOT EXISTS tables (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  zone TEXT NOT NULL,
  capacity INTEGER NOT NULL,
  status TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  table_id TEXT NOT NULL,
  status TEXT NOT NULL,
  payment_status TEXT NOT NULL,
  total_cents INTEGER NOT NULL,
  total_paid_cents INTEGER NOT NULL DEFAULT 0,
  created_by_role TEXT NOT NULL,
  notes TEXT,
  void_reason TEXT,
  served_at DATETIME,
  closed_at DATETIME,
  voided_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  name TEXT NOT NULL,
  department TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  method TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  status TEXT NOT NULL,
  reference TEXT,
  sender_name TEXT,
  verified_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
);`, `
CREATE TABLE IF NOT EXISTS audit_events (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  actor_role TEXT NOT NULL,
  order_id TEXT,
  table_id TEXT,
  payment_intent_id TEXT,
  metadata TEXT,
  created_at DATETIME
);`}
	for _, ddl := range ddls {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, totalCents int) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		TableID:       uuid.New(),
		Status:        enums.OrderStatusCreated,
		PaymentStatus: enums.OrderPaymentStatusUnpaid,
		TotalCents:    totalCents,
		CreatedByRole: enums.ActorRoleStaff,
	}
	require.NoError(t, db.Omit("Items").Create(order).Error)
	return order
}

func TestOrdersRepoListActive(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	open := seedOrder(t, db, 100000)
	closed := seedOrder(t, db, 50000)
	require.NoError(t, repo.Update(ctx, closed.ID, map[string]any{"status": enums.OrderStatusClosed}))

	active, err := repo.List(ctx, Filters{Active: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, open.ID, active[0].ID)
}

func TestOrdersRepoSumVerifiedPayments(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, 200000)
	mk := func(amount int, status enums.LegacyPaymentStatus) {
		payment := &models.Payment{
			ID:          uuid.New(),
			OrderID:     order.ID,
			Method:      enums.PaymentMethodCash,
			AmountCents: amount,
			Status:      status,
		}
		_, err := repo.CreatePayment(ctx, payment)
		require.NoError(t, err)
	}
	mk(50000, enums.LegacyPaymentStatusVerified)
	mk(25000, enums.LegacyPaymentStatusVerified)
	mk(99999, enums.LegacyPaymentStatusPending)
	mk(11111, enums.LegacyPaymentStatusRejected)

	total, err := repo.SumVerifiedPayments(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 75000, total)

	empty, err := repo.SumVerifiedPayments(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestOrdersRepoFindByIDPreloadsItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, 30000)
	require.NoError(t, repo.CreateLineItems(ctx, []models.OrderLineItem{{
		ID:             uuid.New(),
		OrderID:        order.ID,
		Name:           "Chapman",
		Department:     enums.DepartmentBar,
		UnitPriceCents: 15000,
		Qty:            2,
		TotalCents:     30000,
	}}))

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Chapman", stored.Items[0].Name)
}
