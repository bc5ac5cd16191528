package controllers

import (
	"net/http"
	"strings"

	"github.com/defactolounge/lounge-backend/api/responses"
	"github.com/defactolounge/lounge-backend/internal/tables"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
	"github.com/defactolounge/lounge-backend/pkg/logger"
)

// ListTables returns the venue layout for the storefront table picker.
func ListTables(svc tables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tables service unavailable"))
			return
		}

		var zone *enums.TableZone
		if raw := strings.TrimSpace(r.URL.Query().Get("zone")); raw != "" {
			parsed, err := enums.ParseTableZone(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid zone"))
				return
			}
			zone = &parsed
		}

		found, err := svc.List(r.Context(), zone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list := make([]tableResponse, 0, len(found))
		for _, table := range found {
			list = append(list, toTableResponse(table))
		}
		responses.WriteSuccess(w, list)
	}
}
