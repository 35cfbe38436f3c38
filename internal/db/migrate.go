package db

import (
	"github.com/diewo77/go-cms/internal/models"
	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity & access
		&models.User{},
		&models.Profile{},
		// Content
		&models.Category{},
		&models.Article{},
	)
}
