// Package sessionwatch re-checks the profile behind an open admin or
// superadmin view and forces a logout once access has been revoked.
package sessionwatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/metrics"
	"github.com/google/uuid"
)

// DefaultInterval is the delay between two profile checks.
const DefaultInterval = 30 * time.Second

// View is the protected console being watched.
type View int

const (
	AdminView View = iota
	SuperadminView
)

func (v View) String() string {
	if v == SuperadminView {
		return "superadmin"
	}
	return "admin"
}

// RevokeTarget is the login page a revoked view is sent to.
func (v View) RevokeTarget() string {
	if v == SuperadminView {
		return access.SuperadminSuspendedPath
	}
	return access.AdminSuspendedPath
}

// Revoked reports whether a profile may no longer stay in view. A missing
// profile is revoked in both views, which is stricter than request-time
// gating where a just-registered identity may briefly have no profile row.
func Revoked(v View, p *access.Profile) bool {
	if p == nil {
		return true
	}
	if v == SuperadminView {
		return p.Role != access.RoleSuperadmin
	}
	return p.EffectiveStatus() != access.StatusApproved
}

// Hooks receive the poller's results. Both are optional.
type Hooks struct {
	// OnRevoke performs the forced logout towards target.
	OnRevoke func(ctx context.Context, target string) error
	// OnProfile receives the fresh profile after every check that keeps the view open.
	OnProfile func(ctx context.Context, p *access.Profile) error
}

// Poller runs the periodic check for one view at a time per Watch call.
type Poller struct {
	Profiles access.ProfileLookup
	Interval time.Duration
	Logger   *slog.Logger
}

// New returns a Poller reading from profiles every interval.
func New(profiles access.ProfileLookup, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{Profiles: profiles, Interval: interval, Logger: logger}
}

// Watch checks once immediately and then every Interval until the profile is
// revoked, a hook fails, or ctx is cancelled. The next check is scheduled
// only after the previous one completes. It returns nil after a revocation
// and ctx.Err() after cancellation; no hook runs once ctx is done.
func (p *Poller) Watch(ctx context.Context, v View, id uuid.UUID, hooks Hooks) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		stop, err := p.check(ctx, v, id, hooks)
		if stop {
			return err
		}
		timer.Reset(interval)
	}
}

func (p *Poller) check(ctx context.Context, v View, id uuid.UUID, hooks Hooks) (bool, error) {
	prof, err := p.Profiles.GetProfile(ctx, id)
	if ctx.Err() != nil {
		return true, ctx.Err()
	}
	if err != nil {
		p.logger().WarnContext(ctx, "session check failed", "view", v.String(), "identity_id", id.String(), "error", err)
		return false, nil
	}
	if Revoked(v, prof) {
		metrics.SessionRevocations.WithLabelValues(v.String()).Inc()
		attrs := []any{"view", v.String(), "identity_id", id.String()}
		if prof == nil {
			attrs = append(attrs, "reason", "missing_profile")
		} else {
			attrs = append(attrs, "role", string(prof.Role), "status", string(prof.Status))
		}
		p.logger().InfoContext(ctx, "session revoked", attrs...)
		if hooks.OnRevoke != nil {
			return true, hooks.OnRevoke(ctx, v.RevokeTarget())
		}
		return true, nil
	}
	if hooks.OnProfile != nil {
		if err := hooks.OnProfile(ctx, prof); err != nil {
			return true, err
		}
	}
	return false, nil
}

func (p *Poller) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
