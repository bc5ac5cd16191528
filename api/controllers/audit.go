package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/defactolounge/lounge-backend/api/responses"
	"github.com/defactolounge/lounge-backend/api/validators"
	"github.com/defactolounge/lounge-backend/internal/audit"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
	"github.com/defactolounge/lounge-backend/pkg/logger"
)

const maxAuditFeedLimit = 500

// AuditEvents returns the audit trail, newest first.
func AuditEvents(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		filters := audit.Filters{}

		if raw := strings.TrimSpace(r.URL.Query().Get("order_id")); raw != "" {
			orderID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
				return
			}
			filters.OrderID = &orderID
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			eventType, err := enums.ParseAuditEventType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event type"))
				return
			}
			filters.EventType = &eventType
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultListLimit, 1, maxAuditFeedLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.Limit = limit

		events, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list := make([]auditEventResponse, 0, len(events))
		for _, event := range events {
			list = append(list, toAuditEventResponse(event))
		}
		responses.WriteSuccess(w, list)
	}
}

// AuditClear wipes the audit trail. The service enforces that only the CEO
// may do this.
func AuditClear(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		if err := svc.Clear(r.Context(), actorRole(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
