package controllers

import (
	"net/http"

	"github.com/defactolounge/lounge-backend/api/responses"
	"github.com/defactolounge/lounge-backend/api/validators"
	"github.com/defactolounge/lounge-backend/internal/staff"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
	"github.com/defactolounge/lounge-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	User         staffUserResponse `json:"user"`
}

// AuthLogin exchanges staff credentials for an access token and a refresh
// session.
func AuthLogin(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), staff.LoginInput{
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			User:         toStaffUserResponse(result.User),
		})
	}
}
