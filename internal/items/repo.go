package items

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
	"github.com/aidanjnn/lost-found-app/pkg/pagination"
)

// Repository exposes item persistence. The claims engine uses LockByID and
// MarkClaimed inside its transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, id uuid.UUID, values map[string]any) (bool, error)
	MarkClaimed(ctx context.Context, id uuid.UUID, at time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, params listQuery) ([]models.Item, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type listQuery struct {
	Category       string
	Location       string
	Status         enums.ItemStatus
	Search         string
	Oldest         bool
	IncludeDeleted bool
	Limit          int
	Cursor         *pagination.Cursor
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// LockByID loads the item with SELECT ... FOR UPDATE so concurrent writers
// touching the item's claims queue behind the caller's transaction.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update writes the given columns and reports whether the item exists.
func (r *repository) Update(ctx context.Context, id uuid.UUID, values map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkClaimed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     enums.ItemStatusClaimed,
			"claimed_at": at,
			"updated_at": at,
		}).Error
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND status <> ?", id, enums.ItemStatusDeleted).
		Updates(map[string]any{
			"status":     enums.ItemStatusDeleted,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) List(ctx context.Context, params listQuery) ([]models.Item, error) {
	query := r.db.WithContext(ctx).Model(&models.Item{})

	switch {
	case params.Status != "":
		query = query.Where("items.status = ?", params.Status)
	case !params.IncludeDeleted:
		query = query.Where("items.status <> ?", enums.ItemStatusDeleted)
	}
	if params.Category != "" {
		query = query.Where("LOWER(items.category) = ?", strings.ToLower(params.Category))
	}
	if params.Location != "" {
		query = query.Where("LOWER(items.location_found) LIKE ?", "%"+strings.ToLower(params.Location)+"%")
	}
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"(LOWER(items.name) LIKE ? OR LOWER(COALESCE(items.description, '')) LIKE ? OR LOWER(items.category) LIKE ? OR LOWER(items.location_found) LIKE ?)",
			term, term, term, term,
		)
	}

	var rows []models.Item
	if params.Oldest {
		query = applyAsc(query, params.Cursor, params.Limit)
	} else {
		query = pagination.ApplyDesc(query, "items", params.Cursor, params.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func applyAsc(query *gorm.DB, cursor *pagination.Cursor, limit int) *gorm.DB {
	if cursor != nil {
		query = query.Where(
			"((items.created_at > ?) OR (items.created_at = ? AND items.id > ?))",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	return query.
		Order("items.created_at ASC").
		Order("items.id ASC").
		Limit(pagination.LimitWithBuffer(limit))
}
