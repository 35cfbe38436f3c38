package access

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/diewo77/go-cms/internal/metrics"
)

// Kind distinguishes the two possible decisions.
type Kind int

const (
	KindContinue Kind = iota
	KindRedirect
)

// Action is the outcome of an access decision.
type Action struct {
	Kind   Kind
	Target string
}

// Continue lets the request through unmodified.
func Continue() Action { return Action{Kind: KindContinue} }

// RedirectTo sends the request to target.
func RedirectTo(target string) Action { return Action{Kind: KindRedirect, Target: target} }

// IsRedirect reports whether a is a redirect.
func (a Action) IsRedirect() bool { return a.Kind == KindRedirect }

func (a Action) String() string {
	if a.IsRedirect() {
		return "redirect:" + a.Target
	}
	return "continue"
}

// Evaluate applies the access rules to already-resolved inputs. identity and
// profile may be nil. It performs no I/O.
func Evaluate(p string, query url.Values, identity *Identity, profile *Profile) Action {
	switch Classify(p) {
	case AreaAdminAuth, AreaSuperadminAuth:
		if query.Has("error") {
			return Continue()
		}
		if identity == nil || profile == nil {
			return Continue()
		}
		switch profile.Role {
		case RoleSuperadmin:
			return RedirectTo(SuperadminDashboardPath)
		case RoleAdmin:
			return RedirectTo(AdminDashboardPath)
		}
		return Continue()

	case AreaAdminProtected:
		if identity == nil {
			return RedirectTo(AdminLoginPath)
		}
		if profile == nil || !profile.Role.Valid() {
			return RedirectTo(HomePath)
		}
		if profile.EffectiveStatus() != StatusApproved {
			return RedirectTo(AdminSuspendedPath)
		}
		return Continue()

	case AreaSuperadminProtected:
		if identity == nil {
			return RedirectTo(SuperadminLoginPath)
		}
		if profile == nil || profile.Role != RoleSuperadmin {
			return RedirectTo(AdminDashboardPath)
		}
		return Continue()
	}
	return Continue()
}

// FailurePolicy selects the decision taken when a lookup fails.
type FailurePolicy string

const (
	// FailOpen lets the request through and logs the failure.
	FailOpen FailurePolicy = "open"
	// FailClosed sends protected areas to their login page.
	FailClosed FailurePolicy = "closed"
)

// ParseFailurePolicy validates a configured policy name. Empty means FailOpen.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", FailOpen:
		return FailOpen, nil
	case FailClosed:
		return FailClosed, nil
	}
	return "", fmt.Errorf("unknown access failure policy %q (want open or closed)", s)
}

// Decider resolves identity and profile for a request and evaluates the rules.
type Decider struct {
	Identities IdentityResolver
	Profiles   ProfileLookup
	Policy     FailurePolicy
	Logger     *slog.Logger
}

// NewDecider returns a Decider with the given collaborators.
func NewDecider(identities IdentityResolver, profiles ProfileLookup, policy FailurePolicy, logger *slog.Logger) *Decider {
	return &Decider{Identities: identities, Profiles: profiles, Policy: policy, Logger: logger}
}

// Decide returns the action for a request. It never returns an error: lookup
// failures are logged and resolved by the failure policy. Public paths and
// error-bearing auth pages are decided without any lookup, and the profile
// is only read when an identity is present.
func (d *Decider) Decide(ctx context.Context, p string, query url.Values, cookies []*http.Cookie) (act Action) {
	area := Classify(p)
	defer func() {
		if rec := recover(); rec != nil {
			act = d.fail(ctx, area, "panic", fmt.Errorf("%v", rec))
		}
		metrics.AccessDecisions.WithLabelValues(area.String(), outcome(act)).Inc()
	}()

	switch area {
	case AreaPublic:
		return Continue()
	case AreaAdminAuth, AreaSuperadminAuth:
		if query.Has("error") {
			return Continue()
		}
	}

	identity, err := d.Identities.ResolveIdentity(ctx, cookies)
	if err != nil {
		return d.fail(ctx, area, "identity", err)
	}
	var profile *Profile
	if identity != nil {
		profile, err = d.Profiles.GetProfile(ctx, identity.ID)
		if err != nil {
			return d.fail(ctx, area, "profile", err)
		}
		if profile == nil {
			d.logger().WarnContext(ctx, "identity has no profile",
				"reason", "missing_profile", "identity_id", identity.ID.String(), "area", area.String(), "path", p)
			metrics.AccessMissingProfiles.WithLabelValues(area.String()).Inc()
		}
	}
	return Evaluate(p, query, identity, profile)
}

func (d *Decider) fail(ctx context.Context, area Area, stage string, err error) Action {
	policy := d.Policy
	if policy == "" {
		policy = FailOpen
	}
	d.logger().ErrorContext(ctx, "access lookup failed",
		"stage", stage, "area", area.String(), "policy", string(policy), "error", err)
	metrics.AccessLookupFailures.WithLabelValues(stage, string(policy)).Inc()
	if policy == FailClosed {
		switch area {
		case AreaAdminProtected:
			return RedirectTo(AdminLoginPath)
		case AreaSuperadminProtected:
			return RedirectTo(SuperadminLoginPath)
		}
	}
	return Continue()
}

func (d *Decider) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func outcome(a Action) string {
	if a.IsRedirect() {
		return "redirect"
	}
	return "continue"
}
