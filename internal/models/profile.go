package models

import (
	"time"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/google/uuid"
)

// Profile holds the role and approval status of an identity. Its id is the
// identity id.
type Profile struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Role      access.Role   `gorm:"size:20;not null;index" json:"role"`
	Status    access.Status `gorm:"size:20;not null;index" json:"status"`
	FullName  string        `gorm:"size:255" json:"full_name"`
	Email     string        `gorm:"size:255" json:"email"`
}

// ToAccess converts the row to the value used by access decisions.
func (p *Profile) ToAccess() *access.Profile {
	return &access.Profile{
		ID:        p.ID,
		Role:      p.Role,
		Status:    p.Status,
		FullName:  p.FullName,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}

// DisplayName is the full name, or the email when no name was given.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
