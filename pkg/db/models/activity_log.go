package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aidanjnn/lost-found-app/pkg/enums"
)

// ActivityLog is an append-only audit record.
type ActivityLog struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	ActorUserID *uuid.UUID           `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id,omitempty"`
	ActorRole   enums.UserRole       `gorm:"column:actor_role;type:text" json:"actor_role,omitempty"`
	Action      enums.ActivityAction `gorm:"column:action;type:text;not null" json:"action"`
	EntityType  string               `gorm:"column:entity_type;type:text;not null" json:"entity_type"`
	EntityID    uuid.UUID            `gorm:"column:entity_id;type:uuid;not null" json:"entity_id"`
	Details     string               `gorm:"column:details;type:text" json:"details,omitempty"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName keeps the singular table name used by the migrations.
func (ActivityLog) TableName() string {
	return "activity_log"
}
