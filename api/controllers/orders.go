package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/defactolounge/lounge-backend/api/responses"
	"github.com/defactolounge/lounge-backend/api/validators"
	internalorders "github.com/defactolounge/lounge-backend/internal/orders"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
	"github.com/defactolounge/lounge-backend/pkg/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type createOrderItemRequest struct {
	Name           string  `json:"name" validate:"required"`
	Department     string  `json:"department" validate:"required"`
	UnitPriceCents int     `json:"unit_price_cents" validate:"required,gt=0"`
	Qty            int     `json:"qty" validate:"required,gte=1"`
	Notes          *string `json:"notes,omitempty"`
}

type createOrderRequest struct {
	TableID string                   `json:"table_id" validate:"required,uuid4"`
	Items   []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes   *string                  `json:"notes,omitempty"`
}

type voidOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type addPaymentRequest struct {
	Method      string  `json:"method" validate:"required"`
	AmountCents int     `json:"amount_cents" validate:"required,gt=0"`
	Reference   *string `json:"reference,omitempty"`
	SenderName  *string `json:"sender_name,omitempty"`
}

type verifyPaymentRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

// CreateOrder opens a new table-bound order from the storefront basket.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tableID, err := uuid.Parse(body.TableID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid table id"))
			return
		}

		items := make([]internalorders.LineItemInput, 0, len(body.Items))
		for _, item := range body.Items {
			department, err := enums.ParseDepartment(item.Department)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid department"))
				return
			}
			items = append(items, internalorders.LineItemInput{
				Name:           item.Name,
				Department:     department,
				UnitPriceCents: item.UnitPriceCents,
				Qty:            item.Qty,
				Notes:          item.Notes,
			})
		}

		order, err := svc.CreateOrder(r.Context(), internalorders.CreateOrderInput{
			TableID:   tableID,
			Items:     items,
			Notes:     body.Notes,
			ActorRole: actorRole(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toOrderResponse(order))
	}
}

// GetOrder returns one order with its line items.
func GetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// ListOrders returns orders filtered by status, table, or the active set.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		filters := internalorders.Filters{}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("table_id")); raw != "" {
			tableID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid table id"))
				return
			}
			filters.TableID = &tableID
		}

		active, err := validators.ParseQueryBool(r, "active", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.Active = active

		limit, err := validators.ParseQueryInt(r, "limit", defaultListLimit, 1, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.Limit = limit

		orders, err := svc.ListOrders(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list := make([]orderResponse, 0, len(orders))
		for i := range orders {
			list = append(list, toOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, list)
	}
}

// VoidOrder cancels an order along with its live payment intent.
func VoidOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body voidOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.VoidOrder(r.Context(), internalorders.VoidOrderInput{
			OrderID:   orderID,
			Reason:    body.Reason,
			ActorRole: actorRole(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// AddPayment appends a raw payment capture to an order. The intent flow is
// the primary path; this route keeps per-capture bookkeeping alive.
func AddPayment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		payment, err := svc.AddPayment(r.Context(), internalorders.AddPaymentInput{
			OrderID:     orderID,
			Method:      method,
			AmountCents: body.AmountCents,
			Reference:   body.Reference,
			SenderName:  body.SenderName,
			ActorRole:   actorRole(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toPaymentResponse(payment))
	}
}

// ListPayments returns the raw payment captures recorded against an order.
func ListPayments(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payments, err := svc.ListPayments(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list := make([]paymentResponse, 0, len(payments))
		for i := range payments {
			list = append(list, toPaymentResponse(&payments[i]))
		}
		responses.WriteSuccess(w, list)
	}
}

// VerifyLegacyPayment approves or rejects a raw payment capture by id.
func VerifyLegacyPayment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		paymentID, err := parseUUIDParam(r, "paymentId", "payment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.VerifyPayment(r.Context(), internalorders.VerifyPaymentInput{
			PaymentID: paymentID,
			Approve:   *body.Approve,
			ActorRole: actorRole(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPaymentResponse(payment))
	}
}
