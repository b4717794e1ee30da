package controllers

import (
	"net/http"

	"github.com/aidanjnn/lost-found-app/api/middleware"
	"github.com/aidanjnn/lost-found-app/api/responses"
	"github.com/aidanjnn/lost-found-app/api/validators"
	"github.com/aidanjnn/lost-found-app/internal/users"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
)

// Me returns the profile behind the bearer token.
func Me(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		user, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()).UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users.FromModel(user))
	}
}

// UpdateMe edits the caller's own name or email. Claims already filed keep
// the contact details they were submitted with.
func UpdateMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var input users.UpdateProfileInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateProfile(r.Context(), middleware.ActorFromContext(r.Context()).UserID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users.FromModel(user))
	}
}
