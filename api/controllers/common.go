package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/defactolounge/lounge-backend/api/middleware"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

func parseUUIDParam(r *http.Request, name, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	return parseUUIDParam(r, "orderId", "order id")
}

// actorRole reads the role the auth (or guest) middleware seeded into the
// request context. Storefront routes run as floor staff.
func actorRole(r *http.Request) enums.ActorRole {
	role, err := enums.ParseActorRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return enums.ActorRoleStaff
	}
	return role
}
