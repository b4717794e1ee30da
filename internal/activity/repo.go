package activity

import (
	"context"

	"gorm.io/gorm"

	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
	"github.com/aidanjnn/lost-found-app/pkg/pagination"
)

// Repository persists audit entries.
type Repository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, params listParams) ([]models.ActivityLog, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type listParams struct {
	Action enums.ActivityAction
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, params listParams) ([]models.ActivityLog, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}

	var rows []models.ActivityLog
	err := pagination.ApplyDesc(query, "activity_log", params.Cursor, params.Limit).Find(&rows).Error
	return rows, err
}
