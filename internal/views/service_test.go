package views

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/internal/audit"
	"github.com/defactolounge/lounge-backend/internal/intents"
	"github.com/defactolounge/lounge-backend/internal/orders"
	"github.com/defactolounge/lounge-backend/internal/tables"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeSnapshotStore struct {
	data map[string]string
	down bool
	sets int
	gets int
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{data: map[string]string{}}
}

func (f *fakeSnapshotStore) Get(ctx context.Context, key string) (string, error) {
	f.gets++
	if f.down {
		return "", errors.New("connection refused")
	}
	raw, ok := f.data[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return raw, nil
}

func (f *fakeSnapshotStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.sets++
	if f.down {
		return errors.New("connection refused")
	}
	f.data[key] = string(value.([]byte))
	return nil
}

func (f *fakeSnapshotStore) ViewSnapshotKey(view string, variant string) string {
	parts := []string{"dfl", "view", view}
	if variant != "" {
		parts = append(parts, variant)
	}
	return strings.Join(parts, ":")
}

func setupViewsTestDB(t *testing.T) *gorm.DB {
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

type viewsFixture struct {
	db      *gorm.DB
	svc     Service
	orders  orders.Service
	intents intents.Service
	store   *fakeSnapshotStore
	tableID uuid.UUID
	runner  *testTxRunner
}

func newViewsFixture(t *testing.T, store *fakeSnapshotStore, ttl time.Duration) *viewsFixture {
	t.Helper()

	db := setupViewsTestDB(t)
	runner := &testTxRunner{db: db}

	auditSvc, err := audit.NewService(audit.NewRepository(db))
	require.NoError(t, err)
	tablesSvc, err := tables.NewService(tables.NewRepository(db))
	require.NoError(t, err)
	intentsSvc, err := intents.NewService(intents.NewRepository(db), runner, auditSvc)
	require.NoError(t, err)
	ordersSvc, err := orders.NewService(orders.NewRepository(db), runner, auditSvc, tablesSvc, intentsSvc)
	require.NoError(t, err)

	var snapshots SnapshotStore
	if store != nil {
		snapshots = store
	}
	svc, err := NewService(Params{
		Orders:       ordersSvc,
		Intents:      intentsSvc,
		Tables:       tablesSvc,
		Audit:        auditSvc,
		Cache:        snapshots,
		CacheTTL:     ttl,
		AuditFeedLen: 25,
	})
	require.NoError(t, err)

	require.NoError(t, tablesSvc.EnsureDefaultLayout(context.Background()))
	tableList, err := tablesSvc.List(context.Background(), nil)
	require.NoError(t, err)
	var tableID uuid.UUID
	for _, table := range tableList {
		if table.Name == "VIP 1" {
			tableID = table.ID
		}
	}
	require.NotEqual(t, uuid.Nil, tableID)

	return &viewsFixture{
		db:      db,
		svc:     svc,
		orders:  ordersSvc,
		intents: intentsSvc,
		store:   store,
		tableID: tableID,
		runner:  runner,
	}
}

func (f *viewsFixture) createOrder(t *testing.T, cents int) uuid.UUID {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		TableID:   f.tableID,
		Items:     []orders.LineItemInput{{Name: "Suya Platter", Department: enums.DepartmentKitchen, UnitPriceCents: cents, Qty: 1}},
		ActorRole: enums.ActorRoleStaff,
	})
	require.NoError(t, err)
	return order.ID
}

func (f *viewsFixture) claimIntent(t *testing.T, orderID uuid.UUID, cents int) {
	t.Helper()
	ctx := context.Background()
	_, _, err := f.intents.CreateIntent(ctx, intents.CreateIntentInput{
		OrderID:     orderID,
		TableID:     f.tableID,
		AmountCents: cents,
		ActorRole:   enums.ActorRoleStaff,
	})
	require.NoError(t, err)

	reference := "FT24083112345"
	sender := "Jane Doe"
	require.NoError(t, f.runner.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := f.intents.Claim(ctx, tx, intents.ClaimInput{
			OrderID:    orderID,
			Method:     enums.PaymentMethodTransfer,
			Reference:  &reference,
			SenderName: &sender,
			ActorRole:  enums.ActorRoleStaff,
		})
		return err
	}))
}

func (f *viewsFixture) verifyIntent(t *testing.T, orderID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.runner.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := f.intents.Verify(ctx, tx, intents.VerifyInput{
			OrderID:   orderID,
			ActorRole: enums.ActorRoleManager,
		})
		return err
	}))
}

func TestParsePipelineTab(t *testing.T) {
	tab, err := ParsePipelineTab("")
	require.NoError(t, err)
	assert.Equal(t, PipelineTabActive, tab)

	tab, err = ParsePipelineTab("closed")
	require.NoError(t, err)
	assert.Equal(t, PipelineTabClosed, tab)

	_, err = ParsePipelineTab("archived")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestPipelineJoinsTableAndIntentState(t *testing.T) {
	f := newViewsFixture(t, nil, 0)
	ctx := context.Background()

	unpaidID := f.createOrder(t, 500000)
	claimedID := f.createOrder(t, 700000)
	f.claimIntent(t, claimedID, 700000)

	view, err := f.svc.Pipeline(ctx, PipelineTabActive)
	require.NoError(t, err)
	require.Len(t, view.Cards, 2)

	byOrder := map[uuid.UUID]OrderCard{}
	for _, card := range view.Cards {
		byOrder[card.OrderID] = card
	}
	assert.Equal(t, "unpaid", byOrder[unpaidID].PaymentState)
	assert.Equal(t, "claimed", byOrder[claimedID].PaymentState)
	assert.Equal(t, "VIP 1", byOrder[claimedID].TableName)
	assert.Equal(t, enums.TableZoneVIP, byOrder[claimedID].TableZone)
	require.Len(t, byOrder[claimedID].Items, 1)
	assert.Equal(t, "Suya Platter", byOrder[claimedID].Items[0].Name)

	closedView, err := f.svc.Pipeline(ctx, PipelineTabClosed)
	require.NoError(t, err)
	assert.Empty(t, closedView.Cards)
}

func TestDashboardAggregatesRevenueAndQueue(t *testing.T) {
	f := newViewsFixture(t, nil, 0)
	ctx := context.Background()

	verifiedID := f.createOrder(t, 1500000)
	f.claimIntent(t, verifiedID, 1500000)
	f.verifyIntent(t, verifiedID)

	claimedID := f.createOrder(t, 700000)
	f.claimIntent(t, claimedID, 700000)

	view, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1500000, view.VerifiedRevenueCents)
	assert.Equal(t, "15000.00", view.VerifiedRevenueNaira)
	assert.Equal(t, 1, view.IntentBreakdown["verified"])
	assert.Equal(t, 1, view.IntentBreakdown["claimed"])

	require.Len(t, view.PendingVerifications, 1)
	queued := view.PendingVerifications[0]
	assert.Equal(t, claimedID, queued.OrderID)
	assert.Equal(t, "VIP 1", queued.TableName)
	require.NotNil(t, queued.Reference)
	assert.Equal(t, "FT24083112345", *queued.Reference)

	assert.NotEmpty(t, view.RecentEvents)
	assert.LessOrEqual(t, len(view.RecentEvents), 25)
}

func TestPipelineServesCachedSnapshot(t *testing.T) {
	store := newFakeSnapshotStore()
	f := newViewsFixture(t, store, 3*time.Second)
	ctx := context.Background()

	f.createOrder(t, 500000)

	first, err := f.svc.Pipeline(ctx, PipelineTabActive)
	require.NoError(t, err)
	require.Len(t, first.Cards, 1)
	assert.Equal(t, 1, store.sets)

	// New data within the TTL window is not visible yet.
	f.createOrder(t, 700000)
	second, err := f.svc.Pipeline(ctx, PipelineTabActive)
	require.NoError(t, err)
	assert.Len(t, second.Cards, 1)
	assert.Equal(t, 1, store.sets)
}

func TestViewsFallBackWhenCacheIsDown(t *testing.T) {
	store := newFakeSnapshotStore()
	store.down = true
	f := newViewsFixture(t, store, 3*time.Second)
	ctx := context.Background()

	f.createOrder(t, 500000)

	view, err := f.svc.Pipeline(ctx, PipelineTabActive)
	require.NoError(t, err)
	assert.Len(t, view.Cards, 1)

	f.createOrder(t, 700000)
	view, err = f.svc.Pipeline(ctx, PipelineTabActive)
	require.NoError(t, err)
	assert.Len(t, view.Cards, 2)

	dashboard, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.NotNil(t, dashboard)
}
