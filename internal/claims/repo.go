package claims

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
	"github.com/aidanjnn/lost-found-app/pkg/pagination"
)

// Repository persists claims. Every write that depends on the claim set of an
// item runs inside a transaction that already holds that item's row lock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, claim *models.Claim) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	FindByIDWithItem(ctx context.Context, id uuid.UUID) (*ClaimWithItem, error)
	FindResolvedForItem(ctx context.Context, itemID, excludeID uuid.UUID) (*models.Claim, error)
	FindOpenForClaimant(ctx context.Context, itemID, claimantID uuid.UUID) (*models.Claim, error)
	ListOpenCompetitors(ctx context.Context, itemID, excludeID uuid.UUID) ([]models.Claim, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update statusUpdate) error
	RejectCompetitors(ctx context.Context, ids []uuid.UUID, staffID uuid.UUID, note string, at time.Time) (int64, error)
	List(ctx context.Context, params listQuery) ([]ClaimWithItem, error)
	ListArchived(ctx context.Context, limit int) ([]ArchivedItem, error)
}

type statusUpdate struct {
	Status      enums.ClaimStatus
	StaffNotes  *string
	ProcessedBy uuid.UUID
	At          time.Time
}

type listQuery struct {
	Status         enums.ClaimStatus
	ItemID         *uuid.UUID
	ClaimantUserID *uuid.UUID
	Limit          int
	Cursor         *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// claimRow is the scan target for claims joined to their item.
type claimRow struct {
	models.Claim      `gorm:"embedded"`
	ItemName          string               `gorm:"column:item_name"`
	ItemDescription   *string              `gorm:"column:item_description"`
	ItemCategory      string               `gorm:"column:item_category"`
	ItemLocationFound string               `gorm:"column:item_location_found"`
	ItemPickupAt      enums.PickupLocation `gorm:"column:item_pickup_at"`
	ItemStatus        enums.ItemStatus     `gorm:"column:item_status"`
	ItemImageURL      *string              `gorm:"column:item_image_url"`
}

const joinedColumns = `claims.*,
	items.name AS item_name,
	items.description AS item_description,
	items.category AS item_category,
	items.location_found AS item_location_found,
	items.pickup_at AS item_pickup_at,
	items.status AS item_status,
	items.image_url AS item_image_url`

func (r claimRow) toJoined() ClaimWithItem {
	return ClaimWithItem{
		Claim: r.Claim,
		Item: ItemSummary{
			ID:            r.Claim.ItemID,
			Name:          r.ItemName,
			Description:   r.ItemDescription,
			Category:      r.ItemCategory,
			LocationFound: r.ItemLocationFound,
			PickupAt:      r.ItemPickupAt,
			Status:        r.ItemStatus,
			ImageURL:      r.ItemImageURL,
		},
	}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, claim *models.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.WithContext(ctx).First(&claim, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *repository) FindByIDWithItem(ctx context.Context, id uuid.UUID) (*ClaimWithItem, error) {
	var rows []claimRow
	err := r.joined(ctx).
		Where("claims.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	joined := rows[0].toJoined()
	return &joined, nil
}

// FindResolvedForItem returns the approved or picked-up claim on the item,
// skipping excludeID. It returns nil when the item is unresolved.
func (r *repository) FindResolvedForItem(ctx context.Context, itemID, excludeID uuid.UUID) (*models.Claim, error) {
	query := r.db.WithContext(ctx).
		Where("item_id = ? AND status IN ?", itemID, enums.ResolvedClaimStatuses)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	return firstOrNil(query.Order("updated_at DESC"))
}

// FindOpenForClaimant returns the claimant's pending or approved claim on the
// item, or nil.
func (r *repository) FindOpenForClaimant(ctx context.Context, itemID, claimantID uuid.UUID) (*models.Claim, error) {
	query := r.db.WithContext(ctx).
		Where("item_id = ? AND claimant_user_id = ? AND status IN ?", itemID, claimantID, enums.OpenClaimStatuses).
		Order("created_at DESC")
	return firstOrNil(query)
}

func (r *repository) ListOpenCompetitors(ctx context.Context, itemID, excludeID uuid.UUID) ([]models.Claim, error) {
	var rows []models.Claim
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND id <> ? AND status IN ?", itemID, excludeID, enums.OpenClaimStatuses).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, update statusUpdate) error {
	values := map[string]any{
		"status":                update.Status,
		"processed_by_staff_id": update.ProcessedBy,
		"updated_at":            update.At,
	}
	if update.StaffNotes != nil {
		values["staff_notes"] = *update.StaffNotes
	}
	result := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RejectCompetitors rejects ids in one statement, appending note to any
// existing staff notes on its own line.
func (r *repository) RejectCompetitors(ctx context.Context, ids []uuid.UUID, staffID uuid.UUID, note string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id IN ? AND status IN ?", ids, enums.OpenClaimStatuses).
		Updates(map[string]any{
			"status": enums.ClaimStatusRejected,
			"staff_notes": gorm.Expr(
				"CASE WHEN staff_notes IS NULL OR TRIM(staff_notes) = '' THEN ? ELSE staff_notes || ? END",
				note, "\n"+note,
			),
			"processed_by_staff_id": staffID,
			"updated_at":            at,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) List(ctx context.Context, params listQuery) ([]ClaimWithItem, error) {
	query := r.joined(ctx)
	if params.Status != "" {
		query = query.Where("claims.status = ?", params.Status)
	}
	if params.ItemID != nil {
		query = query.Where("claims.item_id = ?", *params.ItemID)
	}
	if params.ClaimantUserID != nil {
		query = query.Where("claims.claimant_user_id = ?", *params.ClaimantUserID)
	}
	query = pagination.ApplyDesc(query, "claims", params.Cursor, params.Limit)

	var rows []claimRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ClaimWithItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toJoined())
	}
	return out, nil
}

// archivedRow is a picked-up claim with its item and the staff member who
// closed it.
type archivedRow struct {
	models.Claim         `gorm:"embedded"`
	ItemName             string               `gorm:"column:item_name"`
	ItemDescription      *string              `gorm:"column:item_description"`
	ItemCategory         string               `gorm:"column:item_category"`
	ItemLocationFound    string               `gorm:"column:item_location_found"`
	ItemPickupAt         enums.PickupLocation `gorm:"column:item_pickup_at"`
	ItemFoundByDesk      string               `gorm:"column:item_found_by_desk"`
	ItemDateFound        time.Time            `gorm:"column:item_date_found"`
	ItemImageURL         *string              `gorm:"column:item_image_url"`
	ItemCreatedAt        time.Time            `gorm:"column:item_created_at"`
	ProcessedByStaffName *string              `gorm:"column:processed_by_staff_name"`
}

const archivedColumns = `claims.*,
	items.name AS item_name,
	items.description AS item_description,
	items.category AS item_category,
	items.location_found AS item_location_found,
	items.pickup_at AS item_pickup_at,
	items.found_by_desk AS item_found_by_desk,
	items.date_found AS item_date_found,
	items.image_url AS item_image_url,
	items.created_at AS item_created_at,
	staff.name AS processed_by_staff_name`

// ListArchived returns items handed back to their owners, most recent
// pickup first. Soft-deleted items are left out.
func (r *repository) ListArchived(ctx context.Context, limit int) ([]ArchivedItem, error) {
	var rows []archivedRow
	err := r.db.WithContext(ctx).
		Table("claims").
		Select(archivedColumns).
		Joins("JOIN items ON items.id = claims.item_id").
		Joins("LEFT JOIN users staff ON staff.id = claims.processed_by_staff_id").
		Where("claims.status = ? AND items.status <> ?", enums.ClaimStatusPickedUp, enums.ItemStatusDeleted).
		Order("claims.updated_at DESC").
		Order("claims.id DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ArchivedItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, ArchivedItem{
			ItemID:        row.Claim.ItemID,
			Name:          row.ItemName,
			Description:   row.ItemDescription,
			Category:      row.ItemCategory,
			LocationFound: row.ItemLocationFound,
			PickupAt:      row.ItemPickupAt,
			FoundByDesk:   row.ItemFoundByDesk,
			DateFound:     row.ItemDateFound,
			ImageURL:      row.ItemImageURL,
			CreatedAt:     row.ItemCreatedAt,
			Claim: ArchivedClaim{
				ClaimDTO:             FromModel(row.Claim),
				ProcessedByStaffName: row.ProcessedByStaffName,
			},
		})
	}
	return out, nil
}

func (r *repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("claims").
		Select(joinedColumns).
		Joins("JOIN items ON items.id = claims.item_id")
}

func firstOrNil(query *gorm.DB) (*models.Claim, error) {
	var claim models.Claim
	err := query.Take(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}
