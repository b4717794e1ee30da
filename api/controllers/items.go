package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/aidanjnn/lost-found-app/api/middleware"
	"github.com/aidanjnn/lost-found-app/api/responses"
	"github.com/aidanjnn/lost-found-app/api/validators"
	"github.com/aidanjnn/lost-found-app/internal/items"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
	"github.com/aidanjnn/lost-found-app/pkg/pagination"
)

type createItemRequest struct {
	Name          string     `json:"name" validate:"required,notblank,max=200"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category      string     `json:"category" validate:"required,notblank,max=100"`
	LocationFound string     `json:"location_found" validate:"required,notblank,max=200"`
	PickupAt      string     `json:"pickup_at" validate:"required,max=8"`
	FoundByDesk   string     `json:"found_by_desk" validate:"required,notblank,max=100"`
	ImageURL      *string    `json:"image_url,omitempty" validate:"omitempty,url"`
	DateFound     *time.Time `json:"date_found,omitempty"`
}

func (r createItemRequest) toInput() items.CreateItemInput {
	input := items.CreateItemInput{
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		LocationFound: r.LocationFound,
		PickupAt:      r.PickupAt,
		FoundByDesk:   r.FoundByDesk,
		ImageURL:      r.ImageURL,
	}
	if r.DateFound != nil {
		input.DateFound = *r.DateFound
	}
	return input
}

type updateItemRequest struct {
	Name          *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category      *string    `json:"category,omitempty" validate:"omitempty,max=100"`
	LocationFound *string    `json:"location_found,omitempty" validate:"omitempty,max=200"`
	PickupAt      *string    `json:"pickup_at,omitempty" validate:"omitempty,max=8"`
	FoundByDesk   *string    `json:"found_by_desk,omitempty" validate:"omitempty,max=100"`
	ImageURL      *string    `json:"image_url,omitempty" validate:"omitempty,url"`
	DateFound     *time.Time `json:"date_found,omitempty"`
}

func (r updateItemRequest) toInput() items.UpdateItemInput {
	return items.UpdateItemInput{
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		LocationFound: r.LocationFound,
		PickupAt:      r.PickupAt,
		FoundByDesk:   r.FoundByDesk,
		ImageURL:      r.ImageURL,
		DateFound:     r.DateFound,
	}
}

// CreateItem catalogues a found item. Staff only.
func CreateItem(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		var req createItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, items.FromModel(item))
	}
}

func GetItem(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		itemID, err := validators.ParamUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items.FromModel(item))
	}
}

// ListItems browses the catalog with optional filters and free-text search.
func ListItems(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		includeDeleted, err := validators.ParseQueryBool(r, "include_deleted")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q := r.URL.Query()
		params := items.ListParams{
			Category:       strings.TrimSpace(q.Get("category")),
			Location:       strings.TrimSpace(q.Get("location")),
			Status:         strings.TrimSpace(q.Get("status")),
			Search:         validators.SanitizeString(q.Get("search"), 200),
			Sort:           strings.TrimSpace(q.Get("sort")),
			IncludeDeleted: includeDeleted,
			Limit:          limit,
			Cursor:         strings.TrimSpace(q.Get("cursor")),
		}

		page, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[items.ItemDTO]{
			Items:      items.FromModels(page.Items),
			NextCursor: page.NextCursor,
		})
	}
}

// UpdateItem edits the catalog fields of an item. Staff only.
func UpdateItem(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		itemID, err := validators.ParamUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), itemID, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items.FromModel(item))
	}
}

// DeleteItem soft-deletes an item. Staff only.
func DeleteItem(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		itemID, err := validators.ParamUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": itemID, "deleted": true})
	}
}
