package claims

import (
	"time"

	"github.com/google/uuid"

	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
)

// SubmitInput is a claimant's request to claim an item.
type SubmitInput struct {
	ItemID           uuid.UUID `json:"item_id" validate:"required"`
	VerificationText string    `json:"verification_text" validate:"required,notblank,max=2000"`
	Phone            *string   `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// TransitionInput moves a claim to a new status. A nil StaffNotes keeps the
// notes already on the claim.
type TransitionInput struct {
	ClaimID    uuid.UUID
	Status     string  `json:"status" validate:"required"`
	StaffNotes *string `json:"staff_notes,omitempty" validate:"omitempty,max=2000"`
}

// TransitionResult summarizes what a transition changed.
type TransitionResult struct {
	ClaimID      uuid.UUID         `json:"claim_id"`
	NewStatus    enums.ClaimStatus `json:"new_status"`
	ItemUpdated  bool              `json:"item_updated"`
	AutoRejected []uuid.UUID       `json:"auto_rejected"`
}

// ListParams filters the claim list. ClaimantUserID is ignored for students,
// who only ever see their own claims.
type ListParams struct {
	Status         string
	ItemID         *uuid.UUID
	ClaimantUserID *uuid.UUID
	Limit          int
	Cursor         string
}

// ItemSummary is the slice of an item embedded in claim responses.
type ItemSummary struct {
	ID            uuid.UUID            `json:"id"`
	Name          string               `json:"name"`
	Description   *string              `json:"description,omitempty"`
	Category      string               `json:"category"`
	LocationFound string               `json:"location_found"`
	PickupAt      enums.PickupLocation `json:"pickup_at"`
	Status        enums.ItemStatus     `json:"status"`
	ImageURL      *string              `json:"image_url,omitempty"`
}

// ClaimDTO is the API shape of a claim.
type ClaimDTO struct {
	ID                 uuid.UUID         `json:"id"`
	ItemID             uuid.UUID         `json:"item_id"`
	ClaimantUserID     uuid.UUID         `json:"claimant_user_id"`
	ClaimantName       string            `json:"claimant_name"`
	ClaimantEmail      string            `json:"claimant_email"`
	ClaimantPhone      *string           `json:"claimant_phone,omitempty"`
	VerificationText   string            `json:"verification_text"`
	Status             enums.ClaimStatus `json:"status"`
	StaffNotes         *string           `json:"staff_notes,omitempty"`
	ProcessedByStaffID *uuid.UUID        `json:"processed_by_staff_id,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Item               *ItemSummary      `json:"item,omitempty"`
}

// ClaimWithItem is a claim row joined to its item.
type ClaimWithItem struct {
	Claim models.Claim
	Item  ItemSummary
}

// ClaimPage is one page of claims plus the cursor for the next.
type ClaimPage struct {
	Items      []ClaimDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromModel maps a claim row to its DTO.
func FromModel(c models.Claim) ClaimDTO {
	return ClaimDTO{
		ID:                 c.ID,
		ItemID:             c.ItemID,
		ClaimantUserID:     c.ClaimantUserID,
		ClaimantName:       c.ClaimantName,
		ClaimantEmail:      c.ClaimantEmail,
		ClaimantPhone:      c.ClaimantPhone,
		VerificationText:   c.VerificationText,
		Status:             c.Status,
		StaffNotes:         c.StaffNotes,
		ProcessedByStaffID: c.ProcessedByStaffID,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// FromJoined maps a joined row, embedding the item summary.
func FromJoined(row ClaimWithItem) ClaimDTO {
	dto := FromModel(row.Claim)
	item := row.Item
	dto.Item = &item
	return dto
}

// ArchivedClaim is the picked-up claim attached to an archived item.
type ArchivedClaim struct {
	ClaimDTO
	ProcessedByStaffName *string `json:"processed_by_staff_name,omitempty"`
}

// ArchivedItem is an item returned to its owner, with the claim that closed it.
type ArchivedItem struct {
	ItemID        uuid.UUID            `json:"item_id"`
	Name          string               `json:"name"`
	Description   *string              `json:"description,omitempty"`
	Category      string               `json:"category"`
	LocationFound string               `json:"location_found"`
	PickupAt      enums.PickupLocation `json:"pickup_at"`
	FoundByDesk   string               `json:"found_by_desk"`
	DateFound     time.Time            `json:"date_found"`
	ImageURL      *string              `json:"image_url,omitempty"`
	CreatedAt     time.Time            `json:"item_created_at"`
	Claim         ArchivedClaim        `json:"claim"`
}

// ArchivedList is the staff archive of completed pickups.
type ArchivedList struct {
	Items      []ArchivedItem `json:"archived_items"`
	TotalCount int            `json:"total_count"`
}
