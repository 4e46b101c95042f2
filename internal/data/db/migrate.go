package db

import (
	types "github.com/yungbote/acadboost-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Catalogue
		&types.Course{},

		// AI flow audit
		&types.FlowRun{},
	)
}
