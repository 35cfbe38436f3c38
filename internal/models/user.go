package models

import (
	"fmt"
	"time"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an authenticated identity. Its profile row is created by the
// AfterCreate hook, the way a database trigger would.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName  string    `gorm:"size:255" json:"full_name,omitempty"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash

	// RequestedRole is the role metadata given at sign-up; it seeds the profile.
	RequestedRole access.Role `gorm:"-" json:"-"`

	Profile *Profile `gorm:"foreignKey:ID;references:ID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// BeforeCreate assigns a random id when none was set.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// AfterCreate inserts the pending profile for a new identity.
func (u *User) AfterCreate(tx *gorm.DB) error {
	if u.Profile != nil {
		return nil
	}
	role := u.RequestedRole
	if !role.Valid() {
		role = access.RoleAdmin
	}
	p := &Profile{
		ID:       u.ID,
		Role:     role,
		Status:   access.StatusPending,
		FullName: u.FullName,
		Email:    u.Email,
	}
	if err := tx.Create(p).Error; err != nil {
		return fmt.Errorf("create profile for %s: %w", u.Email, err)
	}
	return nil
}
