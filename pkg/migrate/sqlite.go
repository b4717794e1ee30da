package migrate

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/aidanjnn/lost-found-app/pkg/db/models"
)

// sqlite understands partial indexes, so the claim guards from the postgres
// migrations carry over verbatim.
var sqliteIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS claims_one_resolved_per_item ON claims (item_id) WHERE status IN ('approved', 'picked_up')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS claims_one_open_per_claimant ON claims (item_id, claimant_user_id) WHERE status IN ('pending', 'approved')`,
	`CREATE INDEX IF NOT EXISTS claims_item_idx ON claims (item_id)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_created_idx ON notifications (user_id, created_at)`,
}

// SQLiteSchema builds the schema for sqlite databases used in development
// and tests. Postgres deployments use the goose files instead.
func SQLiteSchema(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.Claim{},
		&models.Notification{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range sqliteIndexes {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
