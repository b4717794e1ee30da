package items

import (
	"time"

	"github.com/google/uuid"

	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
)

// CreateItemInput is the staff payload for cataloguing a found item.
type CreateItemInput struct {
	Name          string
	Description   *string
	Category      string
	LocationFound string
	PickupAt      string
	FoundByDesk   string
	ImageURL      *string
	DateFound     time.Time
}

// UpdateItemInput edits catalog details of an item. Nil fields are left as
// they are. Status is not editable here: items are claimed through pickup
// and removed through Delete.
type UpdateItemInput struct {
	Name          *string
	Description   *string
	Category      *string
	LocationFound *string
	PickupAt      *string
	FoundByDesk   *string
	ImageURL      *string
	DateFound     *time.Time
}

// ListParams filters the catalog. Search matches name, description,
// category and location.
type ListParams struct {
	Category       string
	Location       string
	Status         string
	Search         string
	Sort           string
	IncludeDeleted bool
	Limit          int
	Cursor         string
}

const (
	SortRecent = "recent"
	SortOldest = "oldest"
)

// ItemDTO is the transport shape of a catalog item.
type ItemDTO struct {
	ID            uuid.UUID            `json:"id"`
	Name          string               `json:"name"`
	Description   *string              `json:"description,omitempty"`
	Category      string               `json:"category"`
	LocationFound string               `json:"location_found"`
	PickupAt      enums.PickupLocation `json:"pickup_at"`
	FoundByDesk   string               `json:"found_by_desk"`
	ImageURL      *string              `json:"image_url,omitempty"`
	DateFound     time.Time            `json:"date_found"`
	Status        enums.ItemStatus     `json:"status"`
	ClaimedAt     *time.Time           `json:"claimed_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func FromModel(m *models.Item) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Category:      m.Category,
		LocationFound: m.LocationFound,
		PickupAt:      m.PickupAt,
		FoundByDesk:   m.FoundByDesk,
		ImageURL:      m.ImageURL,
		DateFound:     m.DateFound,
		Status:        m.Status,
		ClaimedAt:     m.ClaimedAt,
		CreatedAt:     m.CreatedAt,
	}
}

func FromModels(rows []models.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
