package controllers

import (
	"net/http"
	"strings"

	"github.com/aidanjnn/lost-found-app/api/middleware"
	"github.com/aidanjnn/lost-found-app/api/responses"
	"github.com/aidanjnn/lost-found-app/api/validators"
	"github.com/aidanjnn/lost-found-app/internal/activity"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
	"github.com/aidanjnn/lost-found-app/pkg/pagination"
)

// ListActivity serves the staff audit feed.
func ListActivity(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := activity.ListParams{
			Action: strings.TrimSpace(r.URL.Query().Get("action")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		page, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
