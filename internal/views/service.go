package views

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/defactolounge/lounge-backend/internal/audit"
	"github.com/defactolounge/lounge-backend/internal/intents"
	"github.com/defactolounge/lounge-backend/internal/orders"
	"github.com/defactolounge/lounge-backend/internal/tables"
	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
	"github.com/defactolounge/lounge-backend/pkg/logger"
)

// PipelineTab selects which slice of the order pipeline a view returns.
type PipelineTab string

const (
	PipelineTabActive PipelineTab = "active"
	PipelineTabClosed PipelineTab = "closed"
)

// ParsePipelineTab converts raw input into a PipelineTab. Empty input
// defaults to the active tab.
func ParsePipelineTab(value string) (PipelineTab, error) {
	switch PipelineTab(value) {
	case "":
		return PipelineTabActive, nil
	case PipelineTabActive:
		return PipelineTabActive, nil
	case PipelineTabClosed:
		return PipelineTabClosed, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown pipeline tab %q", value))
	}
}

// CardItem is one line item summarized on an order card.
type CardItem struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// OrderCard is one order in the staff pipeline, joined with its table and
// live payment state.
type OrderCard struct {
	OrderID      uuid.UUID         `json:"order_id"`
	TableName    string            `json:"table_name"`
	TableZone    enums.TableZone   `json:"table_zone"`
	Status       enums.OrderStatus `json:"status"`
	PaymentState string            `json:"payment_state"`
	TotalCents   int               `json:"total_cents"`
	Items        []CardItem        `json:"items"`
	CreatedAt    time.Time         `json:"created_at"`
}

// PipelineView is the polled staff pipeline snapshot.
type PipelineView struct {
	Tab         PipelineTab `json:"tab"`
	Cards       []OrderCard `json:"cards"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// VerificationCard is one claimed intent awaiting a manager decision.
type VerificationCard struct {
	IntentID    uuid.UUID            `json:"intent_id"`
	OrderID     uuid.UUID            `json:"order_id"`
	TableName   string               `json:"table_name"`
	AmountCents int                  `json:"amount_cents"`
	Method      *enums.PaymentMethod `json:"method,omitempty"`
	Reference   *string              `json:"reference,omitempty"`
	SenderName  *string              `json:"sender_name,omitempty"`
	ClaimedAt   *time.Time           `json:"claimed_at,omitempty"`
}

// DashboardView is the manager/CEO projection.
type DashboardView struct {
	VerifiedRevenueCents int                 `json:"verified_revenue_cents"`
	VerifiedRevenueNaira string              `json:"verified_revenue_naira"`
	IntentBreakdown      map[string]int      `json:"intent_breakdown"`
	PendingVerifications []VerificationCard  `json:"pending_verifications"`
	RecentEvents         []models.AuditEvent `json:"recent_events"`
	GeneratedAt          time.Time           `json:"generated_at"`
}

// Service builds the polled read-side projections. Both views go through a
// short-lived snapshot cache sized to the client poll interval; a cache
// outage degrades to direct reads.
type Service interface {
	Pipeline(ctx context.Context, tab PipelineTab) (*PipelineView, error)
	Dashboard(ctx context.Context) (*DashboardView, error)
}

// Params collects the view dependencies. Cache is optional.
type Params struct {
	Orders       orders.Service
	Intents      intents.Service
	Tables       tables.Service
	Audit        audit.Service
	Cache        SnapshotStore
	CacheTTL     time.Duration
	AuditFeedLen int
	Logger       *logger.Logger
}

type service struct {
	orders  orders.Service
	intents intents.Service
	tables  tables.Service
	audit   audit.Service
	cache   *snapshotCache
	feedLen int
	now     func() time.Time
}

// NewService builds the views service.
func NewService(params Params) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.Intents == nil {
		return nil, fmt.Errorf("intents service required")
	}
	if params.Tables == nil {
		return nil, fmt.Errorf("tables service required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit service required")
	}
	feedLen := params.AuditFeedLen
	if feedLen <= 0 {
		feedLen = 25
	}
	return &service{
		orders:  params.Orders,
		intents: params.Intents,
		tables:  params.Tables,
		audit:   params.Audit,
		cache:   newSnapshotCache(params.Cache, params.CacheTTL, params.Logger),
		feedLen: feedLen,
		now:     time.Now,
	}, nil
}

func (s *service) Pipeline(ctx context.Context, tab PipelineTab) (*PipelineView, error) {
	if tab != PipelineTabActive && tab != PipelineTabClosed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown pipeline tab %q", tab))
	}

	cached := &PipelineView{}
	if s.cache.load(ctx, "pipeline", string(tab), cached) {
		return cached, nil
	}

	view, err := s.buildPipeline(ctx, tab)
	if err != nil {
		return nil, err
	}
	s.cache.store(ctx, "pipeline", string(tab), view)
	return view, nil
}

func (s *service) Dashboard(ctx context.Context) (*DashboardView, error) {
	cached := &DashboardView{}
	if s.cache.load(ctx, "dashboard", "", cached) {
		return cached, nil
	}

	view, err := s.buildDashboard(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.store(ctx, "dashboard", "", view)
	return view, nil
}

func (s *service) buildPipeline(ctx context.Context, tab PipelineTab) (*PipelineView, error) {
	var orderList []models.Order
	var err error
	switch tab {
	case PipelineTabActive:
		orderList, err = s.orders.ListOrders(ctx, orders.Filters{Active: true})
		if err != nil {
			return nil, err
		}
	case PipelineTabClosed:
		for _, status := range []enums.OrderStatus{enums.OrderStatusClosed, enums.OrderStatusVoided} {
			status := status
			chunk, err := s.orders.ListOrders(ctx, orders.Filters{Status: &status})
			if err != nil {
				return nil, err
			}
			orderList = append(orderList, chunk...)
		}
	}

	tableNames, tableZones, err := s.tableIndex(ctx)
	if err != nil {
		return nil, err
	}

	cards := make([]OrderCard, 0, len(orderList))
	for _, order := range orderList {
		state, err := s.paymentState(ctx, order)
		if err != nil {
			return nil, err
		}
		items := make([]CardItem, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, CardItem{Name: item.Name, Qty: item.Qty})
		}
		cards = append(cards, OrderCard{
			OrderID:      order.ID,
			TableName:    tableNames[order.TableID],
			TableZone:    tableZones[order.TableID],
			Status:       order.Status,
			PaymentState: state,
			TotalCents:   order.TotalCents,
			Items:        items,
			CreatedAt:    order.CreatedAt,
		})
	}

	return &PipelineView{
		Tab:         tab,
		Cards:       cards,
		GeneratedAt: s.now().UTC(),
	}, nil
}

func (s *service) buildDashboard(ctx context.Context) (*DashboardView, error) {
	allIntents, err := s.intents.List(ctx, intents.Filters{})
	if err != nil {
		return nil, err
	}

	revenueCents := 0
	breakdown := map[string]int{}
	for _, intent := range allIntents {
		breakdown[intent.Status.String()]++
		if intent.Status == enums.PaymentIntentStatusVerified {
			revenueCents += intent.AmountCents
		}
	}

	tableNames, _, err := s.tableIndex(ctx)
	if err != nil {
		return nil, err
	}

	claimed := enums.PaymentIntentStatusClaimed
	pending, err := s.intents.List(ctx, intents.Filters{Status: &claimed})
	if err != nil {
		return nil, err
	}
	queue := make([]VerificationCard, 0, len(pending))
	for _, intent := range pending {
		queue = append(queue, VerificationCard{
			IntentID:    intent.ID,
			OrderID:     intent.OrderID,
			TableName:   tableNames[intent.TableID],
			AmountCents: intent.AmountCents,
			Method:      intent.Method,
			Reference:   intent.Reference,
			SenderName:  intent.SenderName,
			ClaimedAt:   intent.ClaimedAt,
		})
	}

	events, err := s.audit.List(ctx, audit.Filters{Limit: s.feedLen})
	if err != nil {
		return nil, err
	}

	revenue := decimal.NewFromInt(int64(revenueCents)).Div(decimal.NewFromInt(100))
	return &DashboardView{
		VerifiedRevenueCents: revenueCents,
		VerifiedRevenueNaira: revenue.StringFixed(2),
		IntentBreakdown:      breakdown,
		PendingVerifications: queue,
		RecentEvents:         events,
		GeneratedAt:          s.now().UTC(),
	}, nil
}

func (s *service) tableIndex(ctx context.Context) (map[uuid.UUID]string, map[uuid.UUID]enums.TableZone, error) {
	tableList, err := s.tables.List(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[uuid.UUID]string, len(tableList))
	zones := make(map[uuid.UUID]enums.TableZone, len(tableList))
	for _, table := range tableList {
		names[table.ID] = table.Name
		zones[table.ID] = table.Zone
	}
	return names, zones, nil
}

// paymentState collapses the order and its newest intent into the single
// label the pipeline cards show.
func (s *service) paymentState(ctx context.Context, order models.Order) (string, error) {
	intent, err := s.intents.GetIntentByOrderID(ctx, order.ID)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return string(enums.OrderPaymentStatusUnpaid), nil
		}
		return "", err
	}
	switch intent.Status {
	case enums.PaymentIntentStatusExpired, enums.PaymentIntentStatusVoided:
		return string(enums.OrderPaymentStatusUnpaid), nil
	default:
		return intent.Status.String(), nil
	}
}
