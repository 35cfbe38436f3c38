// Package policy connects the access decision procedure to the database and
// wires the application's handlers.
package policy

import (
	"context"
	"fmt"
	"net/http"

	"github.com/diewo77/go-cms/auth"
	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DBIdentityResolver turns a signed session cookie into the identity it names.
type DBIdentityResolver struct {
	db       *gorm.DB
	sessions *auth.Sessions
}

func NewDBIdentityResolver(db *gorm.DB, sessions *auth.Sessions) *DBIdentityResolver {
	return &DBIdentityResolver{db: db, sessions: sessions}
}

// ResolveIdentity returns nil, nil for a missing or invalid session and for
// an identity that no longer exists.
func (r *DBIdentityResolver) ResolveIdentity(ctx context.Context, cookies []*http.Cookie) (*access.Identity, error) {
	id, ok := r.sessions.ParseCookies(cookies)
	if !ok {
		return nil, nil
	}
	var u models.User
	res := r.db.WithContext(ctx).Select("id", "email").Where("id = ?", id).Limit(1).Find(&u)
	if res.Error != nil {
		return nil, fmt.Errorf("load identity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &access.Identity{ID: u.ID, Email: u.Email}, nil
}

// DBProfileLookup reads profiles straight from the profiles table.
type DBProfileLookup struct {
	db *gorm.DB
}

func NewDBProfileLookup(db *gorm.DB) *DBProfileLookup {
	return &DBProfileLookup{db: db}
}

// GetProfile returns nil, nil when the identity has no profile row.
func (l *DBProfileLookup) GetProfile(ctx context.Context, id uuid.UUID) (*access.Profile, error) {
	var p models.Profile
	res := l.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&p)
	if res.Error != nil {
		return nil, fmt.Errorf("load profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return p.ToAccess(), nil
}
