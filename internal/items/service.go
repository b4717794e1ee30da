package items

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aidanjnn/lost-found-app/internal/activity"
	"github.com/aidanjnn/lost-found-app/pkg/auth"
	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
	"github.com/aidanjnn/lost-found-app/pkg/pagination"
)

// Service is the item catalog.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateItemInput) (*models.Item, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, actor auth.Actor, params ListParams) (*pagination.Page[models.Item], error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateItemInput) (*models.Item, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
}

type service struct {
	repo     Repository
	activity activity.Recorder
	now      func() time.Time
}

func NewService(repo Repository, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, activity: recorder, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateItemInput) (*models.Item, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff access required")
	}

	required := []struct{ field, value string }{
		{"name", input.Name},
		{"category", input.Category},
		{"location_found", input.LocationFound},
		{"found_by_desk", input.FoundByDesk},
	}
	missing := []string{}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}

	pickup, err := enums.ParsePickupLocation(input.PickupAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "pickup_at must be one of SLC, PAC, CIF")
	}

	dateFound := input.DateFound
	if dateFound.IsZero() {
		dateFound = s.now().UTC()
	}

	actorID := actor.UserID
	item := &models.Item{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(input.Name),
		Description:     trimmedOrNil(input.Description),
		Category:        strings.TrimSpace(input.Category),
		LocationFound:   strings.TrimSpace(input.LocationFound),
		PickupAt:        pickup,
		FoundByDesk:     strings.TrimSpace(input.FoundByDesk),
		ImageURL:        trimmedOrNil(input.ImageURL),
		DateFound:       dateFound.UTC(),
		Status:          enums.ItemStatusUnclaimed,
		CreatedByUserID: &actorID,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create item")
	}

	s.activity.Record(ctx, activity.Entry{
		Actor:      actor,
		Action:     enums.ActivityItemAdded,
		EntityType: activity.EntityItem,
		EntityID:   item.ID,
		Details:    fmt.Sprintf("Added item: %s", item.Name),
	})
	return item, nil
}

// Get hides soft-deleted items from everyone but staff.
func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Item, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load item")
	}
	if item.Status == enums.ItemStatusDeleted && !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return item, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, params ListParams) (*pagination.Page[models.Item], error) {
	query := listQuery{
		Category:       strings.TrimSpace(params.Category),
		Location:       strings.TrimSpace(params.Location),
		Search:         strings.TrimSpace(params.Search),
		IncludeDeleted: params.IncludeDeleted && actor.IsStaff(),
		Limit:          params.Limit,
	}

	if params.Status != "" {
		status, err := enums.ParseItemStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		if status == enums.ItemStatusDeleted && !actor.IsStaff() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff access required for deleted items")
		}
		query.Status = status
	}

	switch strings.ToLower(strings.TrimSpace(params.Sort)) {
	case "", SortRecent:
	case SortOldest:
		query.Oldest = true
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sort must be recent or oldest")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list items")
	}
	page := pagination.Trim(rows, params.Limit, func(item models.Item) pagination.Cursor {
		return pagination.Cursor{CreatedAt: item.CreatedAt, ID: item.ID}
	})
	return &page, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateItemInput) (*models.Item, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff access required")
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	values := map[string]any{}
	blank := []string{}
	for _, f := range []struct {
		column string
		value  *string
	}{
		{"name", input.Name},
		{"category", input.Category},
		{"location_found", input.LocationFound},
		{"found_by_desk", input.FoundByDesk},
	} {
		if f.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*f.value)
		if trimmed == "" {
			blank = append(blank, f.column)
			continue
		}
		values[f.column] = trimmed
	}
	if len(blank) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fields cannot be blank").
			WithDetails(map[string]any{"fields": blank})
	}

	// Blank optional text clears the column.
	if input.Description != nil {
		values["description"] = trimmedOrNil(input.Description)
	}
	if input.ImageURL != nil {
		values["image_url"] = trimmedOrNil(input.ImageURL)
	}
	if input.PickupAt != nil {
		pickup, err := enums.ParsePickupLocation(*input.PickupAt)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "pickup_at must be one of SLC, PAC, CIF")
		}
		values["pickup_at"] = pickup
	}
	if input.DateFound != nil {
		if input.DateFound.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_found cannot be empty")
		}
		values["date_found"] = input.DateFound.UTC()
	}
	if len(values) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	values["updated_at"] = s.now().UTC()

	found, err := s.repo.Update(ctx, id, values)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update item")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "reload item")
	}

	s.activity.Record(ctx, activity.Entry{
		Actor:      actor,
		Action:     enums.ActivityItemUpdated,
		EntityType: activity.EntityItem,
		EntityID:   item.ID,
		Details:    fmt.Sprintf("Updated item: %s", item.Name),
	})
	return item, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff access required")
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	s.activity.Record(ctx, activity.Entry{
		Actor:      actor,
		Action:     enums.ActivityItemDeleted,
		EntityType: activity.EntityItem,
		EntityID:   id,
	})
	return nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
