package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Sammk21/medusa-v2/internal/models"
)

// Migrate ensures the tables the service writes to exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		// Webhook delivery audit log
		&models.WebhookEvent{},
	}
}
