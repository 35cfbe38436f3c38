// Package access decides whether a request may enter the admin or superadmin
// areas, based on the caller's identity and profile.
package access

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Role determines which protected area a profile may enter.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// Status gates whether an admin may currently use the admin area.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Identity is the principal resolved from a session credential.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// Profile holds role and approval status for an identity.
type Profile struct {
	ID        uuid.UUID
	Role      Role
	Status    Status
	FullName  string
	Email     string
	CreatedAt time.Time
}

// EffectiveStatus returns the status used for admin-area gating.
// Superadmins always count as approved.
func (p *Profile) EffectiveStatus() Status {
	if p.Role == RoleSuperadmin {
		return StatusApproved
	}
	return p.Status
}

// IdentityResolver exchanges request cookies for an identity.
// An absent or invalid session yields (nil, nil); errors are reserved for
// storage or transport failures.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, cookies []*http.Cookie) (*Identity, error)
}

// ProfileLookup fetches the profile of an identity. A missing row yields (nil, nil).
type ProfileLookup interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
}

// IdentityResolverFunc adapts a function to IdentityResolver.
type IdentityResolverFunc func(ctx context.Context, cookies []*http.Cookie) (*Identity, error)

func (f IdentityResolverFunc) ResolveIdentity(ctx context.Context, cookies []*http.Cookie) (*Identity, error) {
	return f(ctx, cookies)
}

// ProfileLookupFunc adapts a function to ProfileLookup.
type ProfileLookupFunc func(ctx context.Context, id uuid.UUID) (*Profile, error)

func (f ProfileLookupFunc) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return f(ctx, id)
}
