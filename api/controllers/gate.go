package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/defactolounge/lounge-backend/api/responses"
	"github.com/defactolounge/lounge-backend/api/validators"
	"github.com/defactolounge/lounge-backend/internal/gate"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
	"github.com/defactolounge/lounge-backend/pkg/logger"
)

type selectMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

type claimPaymentRequest struct {
	Method     string  `json:"method" validate:"required"`
	Reference  *string `json:"reference,omitempty"`
	SenderName *string `json:"sender_name,omitempty"`
}

type channelEventRequest struct {
	Channel string `json:"channel" validate:"required"`
	Event   string `json:"event" validate:"required,oneof=channel_selected message_opened"`
}

type paymentFlowResponse struct {
	Intent  intentResponse `json:"intent"`
	Created bool           `json:"created"`
}

// OpenPaymentFlow returns the live intent for the order, creating one when
// none exists. Safe to call on every checkout screen load.
func OpenPaymentFlow(svc gate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gate service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, created, err := svc.OpenPaymentFlow(r.Context(), orderID, actorRole(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, paymentFlowResponse{
			Intent:  toIntentResponse(intent),
			Created: created,
		})
	}
}

// SelectPaymentMethod records which payment method the guest picked.
func SelectPaymentMethod(svc gate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gate service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body selectMethodRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		if err := svc.SelectMethod(r.Context(), orderID, method, actorRole(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

// ClaimPayment records the guest's assertion that the money was sent.
func ClaimPayment(svc gate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gate service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body claimPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		intent, err := svc.ClaimPayment(r.Context(), gate.ClaimPaymentInput{
			OrderID:    orderID,
			Method:     method,
			Reference:  body.Reference,
			SenderName: body.SenderName,
			ActorRole:  actorRole(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toIntentResponse(intent))
	}
}

// VerifyPayment is the manager's independent confirmation that the money
// arrived. The role check lives in the service so the rule holds even if a
// route is miswired.
func VerifyPayment(svc gate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gate service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.VerifyPayment(r.Context(), gate.VerifyPaymentInput{
			OrderID:   orderID,
			ActorRole: actorRole(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toIntentResponse(intent))
	}
}

type advanceOrderRequest struct {
	Target string `json:"target" validate:"required"`
}

// AdvanceOrder moves an order one step forward in the pipeline. Served and
// closed are refused until the payment is verified.
func AdvanceOrder(svc gate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gate service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body advanceOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(body.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		order, err := svc.AdvanceOrder(r.Context(), orderID, target, actorRole(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// Handoff composes the order message and deep link for an outbound channel.
func Handoff(svc gate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gate service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		channel, err := enums.ParseMessageChannel(strings.TrimSpace(chi.URLParam(r, "channel")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel"))
			return
		}

		payload, err := svc.Handoff(r.Context(), orderID, channel, actorRole(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payload)
	}
}

// RecordChannelEvent audits the channel picker touchpoints so drop-off
// between "picked a channel" and "opened the message" is visible.
func RecordChannelEvent(svc gate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gate service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body channelEventRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		channel, err := enums.ParseMessageChannel(body.Channel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel"))
			return
		}

		switch body.Event {
		case "channel_selected":
			err = svc.RecordChannelSelected(r.Context(), orderID, channel, actorRole(r))
		case "message_opened":
			err = svc.RecordMessageOpened(r.Context(), orderID, channel, actorRole(r))
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}
