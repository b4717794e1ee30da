package controllers

import (
	"net/http"
	"strings"

	"github.com/aidanjnn/lost-found-app/api/middleware"
	"github.com/aidanjnn/lost-found-app/api/responses"
	"github.com/aidanjnn/lost-found-app/api/validators"
	"github.com/aidanjnn/lost-found-app/internal/claims"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
	"github.com/aidanjnn/lost-found-app/pkg/pagination"
)

// SubmitClaim files a claim for the authenticated user.
func SubmitClaim(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "claims service unavailable"))
			return
		}

		var input claims.SubmitInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claim, err := svc.Submit(r.Context(), middleware.ActorFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, claims.FromModel(*claim))
	}
}

// TransitionClaim applies a staff decision to a claim.
func TransitionClaim(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "claims service unavailable"))
			return
		}

		claimID, err := validators.ParamUUID(r, "claimId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input claims.TransitionInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ClaimID = claimID

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithClaimID(ctx, claimID.String())
		}
		result, err := svc.Transition(ctx, middleware.ActorFromContext(ctx), input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetClaim returns one claim with its item. Students may only read their own.
func GetClaim(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "claims service unavailable"))
			return
		}

		claimID, err := validators.ParamUUID(r, "claimId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claim, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), claimID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, claim)
	}
}

// ListClaims returns claims newest first. Students only ever see their own.
func ListClaims(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "claims service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		claimantID, err := validators.ParseQueryUUID(r, "claimant_user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := claims.ListParams{
			Status:         strings.TrimSpace(r.URL.Query().Get("status")),
			ItemID:         itemID,
			ClaimantUserID: claimantID,
			Limit:          limit,
			Cursor:         strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		page, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ListArchivedItems lists items already picked up, with the claim that
// closed each one. Staff only.
func ListArchivedItems(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "claims service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListArchived(r.Context(), middleware.ActorFromContext(r.Context()), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
