package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/config"
	"github.com/diewo77/go-cms/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoBootstrapAccount is returned by Seed when no superadmin email or
// password is configured.
var ErrNoBootstrapAccount = errors.New("bootstrap superadmin not configured")

// Seed creates the bootstrap superadmin and a default category. It is
// idempotent: an existing account keeps its password.
func Seed(db *gorm.DB, b config.BootstrapConfig) error {
	if err := SeedCategories(db); err != nil {
		return err
	}
	return SeedSuperadmin(db, b)
}

// SeedSuperadmin ensures the configured superadmin exists and is approved.
func SeedSuperadmin(db *gorm.DB, b config.BootstrapConfig) error {
	email := strings.ToLower(strings.TrimSpace(b.SuperadminEmail))
	if email == "" || b.SuperadminPassword == "" {
		return ErrNoBootstrapAccount
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash, herr := bcrypt.GenerateFromPassword([]byte(b.SuperadminPassword), bcrypt.DefaultCost)
			if herr != nil {
				return fmt.Errorf("hash password: %w", herr)
			}
			user = models.User{
				Email:         email,
				FullName:      b.SuperadminName,
				Password:      string(hash),
				RequestedRole: access.RoleSuperadmin,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create superadmin: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("find superadmin: %w", err)
		}

		profile := models.Profile{
			ID:       user.ID,
			Role:     access.RoleSuperadmin,
			Status:   access.StatusApproved,
			FullName: user.FullName,
			Email:    user.Email,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "status", "updated_at"}),
		}).Create(&profile).Error
	})
}

var defaultCategories = []models.Category{
	{Title: "Berita", Slug: "berita", Description: "Kabar terbaru organisasi", Icon: "newspaper"},
}

// SeedCategories creates the baseline categories once.
func SeedCategories(db *gorm.DB) error {
	for _, c := range defaultCategories {
		cat := c
		if err := db.Where("slug = ?", cat.Slug).FirstOrCreate(&cat).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", cat.Slug, err)
		}
	}
	return nil
}
