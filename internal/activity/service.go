package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aidanjnn/lost-found-app/pkg/auth"
	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
	"github.com/aidanjnn/lost-found-app/pkg/pagination"
)

const (
	EntityItem  = "item"
	EntityClaim = "claim"
)

// Entry describes one audited action.
type Entry struct {
	Actor      auth.Actor
	Action     enums.ActivityAction
	EntityType string
	EntityID   uuid.UUID
	Details    string
}

// Recorder is the write side used by other modules. Recording never fails
// the caller's operation.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// ListParams filters the staff audit feed.
type ListParams struct {
	Action string
	Limit  int
	Cursor string
}

// Service exposes the audit log to staff and records entries for other modules.
type Service interface {
	Recorder
	List(ctx context.Context, actor auth.Actor, params ListParams) (*pagination.Page[models.ActivityLog], error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, entry Entry) {
	row := &models.ActivityLog{
		ID:         uuid.New(),
		ActorRole:  entry.Actor.Role,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    entry.Details,
	}
	if entry.Actor.UserID != uuid.Nil {
		actorID := entry.Actor.UserID
		row.ActorUserID = &actorID
	}
	if err := s.repo.Create(ctx, row); err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"action": entry.Action, "entity_id": entry.EntityID.String()})
		s.logg.Error(ctx, "activity.record_failed", err)
	}
}

func (s *service) List(ctx context.Context, actor auth.Actor, params ListParams) (*pagination.Page[models.ActivityLog], error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff access required")
	}

	query := listParams{Limit: params.Limit}
	if params.Action != "" {
		action, err := enums.ParseActivityAction(params.Action)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action filter")
		}
		query.Action = action
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list activity")
	}
	page := pagination.Trim(rows, params.Limit, func(row models.ActivityLog) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	return &page, nil
}
