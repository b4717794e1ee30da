package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aidanjnn/lost-found-app/pkg/enums"
)

// Claim is a claimant's assertion of ownership over an item. Rows are never
// deleted; the claimant fields are a snapshot taken at submission.
type Claim struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ItemID             uuid.UUID         `gorm:"column:item_id;type:uuid;not null"`
	ClaimantUserID     uuid.UUID         `gorm:"column:claimant_user_id;type:uuid;not null"`
	ClaimantName       string            `gorm:"column:claimant_name;type:text;not null"`
	ClaimantEmail      string            `gorm:"column:claimant_email;type:text;not null"`
	ClaimantPhone      *string           `gorm:"column:claimant_phone;type:text"`
	VerificationText   string            `gorm:"column:verification_text;type:text;not null"`
	Status             enums.ClaimStatus `gorm:"column:status;type:text;not null;default:pending"`
	StaffNotes         *string           `gorm:"column:staff_notes;type:text"`
	ProcessedByStaffID *uuid.UUID        `gorm:"column:processed_by_staff_id;type:uuid"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
