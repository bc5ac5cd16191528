package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/defactolounge/lounge-backend/api/controllers"
	"github.com/defactolounge/lounge-backend/api/middleware"
	"github.com/defactolounge/lounge-backend/internal/audit"
	"github.com/defactolounge/lounge-backend/internal/gate"
	"github.com/defactolounge/lounge-backend/internal/orders"
	"github.com/defactolounge/lounge-backend/internal/staff"
	"github.com/defactolounge/lounge-backend/internal/tables"
	"github.com/defactolounge/lounge-backend/internal/views"
	"github.com/defactolounge/lounge-backend/pkg/auth/session"
	"github.com/defactolounge/lounge-backend/pkg/config"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	"github.com/defactolounge/lounge-backend/pkg/logger"
	pkgredis "github.com/defactolounge/lounge-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Params bundles everything the router mounts.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *pkgredis.Client
	Sessions sessionManager
	Metrics  prometheus.Gatherer

	Staff  staff.Service
	Orders orders.Service
	Gate   gate.Service
	Tables tables.Service
	Views  views.Service
	Audit  audit.Service
}

// NewRouter wires the HTTP surface: a guest storefront tree that runs with
// the floor-staff role, and an authenticated staff tree behind JWT sessions.
func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(p.Staff, logg))
		r.Post("/logout", controllers.AuthLogout(p.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Sessions, cfg.JWT, logg))
	})

	// Storefront: unauthenticated guests act with the floor-staff role so
	// the gate records who a transition belongs to.
	r.Group(func(r chi.Router) {
		r.Use(middleware.GuestRole(string(enums.ActorRoleStaff)))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/api/v1/tables", controllers.ListTables(p.Tables, logg))
		r.Post("/api/v1/orders", controllers.CreateOrder(p.Orders, logg))
		r.Get("/api/v1/orders/{orderId}", controllers.GetOrder(p.Orders, logg))
		r.Post("/api/v1/orders/{orderId}/payment-flow", controllers.OpenPaymentFlow(p.Gate, logg))
		r.Post("/api/v1/orders/{orderId}/payment/method", controllers.SelectPaymentMethod(p.Gate, logg))
		r.Post("/api/v1/orders/{orderId}/payment/claim", controllers.ClaimPayment(p.Gate, logg))
		r.Post("/api/v1/orders/{orderId}/handoff/{channel}", controllers.Handoff(p.Gate, logg))
		r.Post("/api/v1/orders/{orderId}/channel-events", controllers.RecordChannelEvent(p.Gate, logg))
	})

	// Staff console: JWT session required.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/api/v1/orders", controllers.ListOrders(p.Orders, logg))
		r.Post("/api/v1/orders/{orderId}/advance", controllers.AdvanceOrder(p.Gate, logg))
		r.Post("/api/v1/orders/{orderId}/void", controllers.VoidOrder(p.Orders, logg))
		r.Post("/api/v1/orders/{orderId}/payments", controllers.AddPayment(p.Orders, logg))
		r.Get("/api/v1/orders/{orderId}/payments", controllers.ListPayments(p.Orders, logg))

		r.Get("/api/v1/views/pipeline", controllers.PipelineView(p.Views, logg))
		r.Get("/api/v1/views/dashboard", controllers.DashboardView(p.Views, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, string(enums.ActorRoleManager), string(enums.ActorRoleCEO)))
			r.Post("/api/v1/orders/{orderId}/payment/verify", controllers.VerifyPayment(p.Gate, logg))
			r.Post("/api/v1/payments/{paymentId}/verify", controllers.VerifyLegacyPayment(p.Orders, logg))
			r.Get("/api/v1/audit/events", controllers.AuditEvents(p.Audit, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleCEO), logg))
			r.Delete("/api/v1/audit/events", controllers.AuditClear(p.Audit, logg))
		})
	})

	return r
}
