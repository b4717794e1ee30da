package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aidanjnn/lost-found-app/pkg/enums"
)

// Item is a found object held at a campus service desk.
type Item struct {
	ID              uuid.UUID            `gorm:"type:uuid;primaryKey"`
	Name            string               `gorm:"column:name;type:text;not null"`
	Description     *string              `gorm:"column:description;type:text"`
	Category        string               `gorm:"column:category;type:text;not null"`
	LocationFound   string               `gorm:"column:location_found;type:text;not null"`
	PickupAt        enums.PickupLocation `gorm:"column:pickup_at;type:text;not null"`
	FoundByDesk     string               `gorm:"column:found_by_desk;type:text;not null"`
	ImageURL        *string              `gorm:"column:image_url;type:text"`
	DateFound       time.Time            `gorm:"column:date_found;not null"`
	Status          enums.ItemStatus     `gorm:"column:status;type:text;not null;default:unclaimed"`
	CreatedByUserID *uuid.UUID           `gorm:"column:created_by_user_id;type:uuid"`
	ClaimedAt       *time.Time           `gorm:"column:claimed_at"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// DisplayName is how the item is referred to in claimant-facing messages.
func (i Item) DisplayName() string {
	if i.Description != nil && *i.Description != "" {
		return *i.Description
	}
	if i.Category != "" {
		return i.Category + " item"
	}
	return "the item"
}
