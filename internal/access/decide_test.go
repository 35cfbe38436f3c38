package access

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	identity    *Identity
	profile     *Profile
	identityErr error
	profileErr  error

	identityCalls int
	profileCalls  int
}

func (f *fakeStore) ResolveIdentity(_ context.Context, _ []*http.Cookie) (*Identity, error) {
	f.identityCalls++
	return f.identity, f.identityErr
}

func (f *fakeStore) GetProfile(_ context.Context, _ uuid.UUID) (*Profile, error) {
	f.profileCalls++
	return f.profile, f.profileErr
}

func newDecider(f *fakeStore, policy FailurePolicy) (*Decider, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewDecider(f, f, policy, logger), &buf
}

func signedIn(role Role, status Status) *fakeStore {
	id := uuid.New()
	return &fakeStore{
		identity: &Identity{ID: id, Email: "someone@example.org"},
		profile:  &Profile{ID: id, Role: role, Status: status},
	}
}

var adminPaths = []string{
	"/admin",
	"/admin/dashboard",
	"/admin/articles",
	"/admin/articles/edit/halo-dunia",
	"/admin/categories/create",
	"/admin/session/watch",
}

func TestClassify(t *testing.T) {
	cases := map[string]Area{
		"/":                         AreaPublic,
		"/articles/halo":            AreaPublic,
		"/administrator":            AreaPublic,
		"/admin":                    AreaAdminProtected,
		"/admin/dashboard":          AreaAdminProtected,
		"/admin/login":              AreaAdminAuth,
		"/admin/login/reset":        AreaAdminAuth,
		"/admin/register":           AreaAdminAuth,
		"/superadmin":               AreaSuperadminProtected,
		"/superadmin/admins":        AreaSuperadminProtected,
		"/superadmin/login":         AreaSuperadminAuth,
		"/superadmin/session/watch": AreaSuperadminProtected,
		"/kategori/kegiatan-kampus": AreaPublic,
	}
	for p, want := range cases {
		assert.Equal(t, want, Classify(p), p)
	}
}

func TestShouldEvaluate(t *testing.T) {
	assert.False(t, ShouldEvaluate("/static/css/app.css"))
	assert.False(t, ShouldEvaluate("/favicon.ico"))
	assert.False(t, ShouldEvaluate("/admin/logo.PNG"))
	assert.False(t, ShouldEvaluate("/images/banner.webp"))
	assert.True(t, ShouldEvaluate("/admin/dashboard"))
	assert.True(t, ShouldEvaluate("/"))
}

func TestAdminAreaWithoutIdentityRedirectsToLogin(t *testing.T) {
	for _, p := range adminPaths {
		f := &fakeStore{}
		d, _ := newDecider(f, FailOpen)
		assert.Equal(t, RedirectTo(AdminLoginPath), d.Decide(context.Background(), p, nil, nil), p)
		assert.Zero(t, f.profileCalls, "profile must not be read without identity")
	}
}

func TestAdminAreaApprovedAdminContinues(t *testing.T) {
	for _, p := range adminPaths {
		d, _ := newDecider(signedIn(RoleAdmin, StatusApproved), FailOpen)
		assert.Equal(t, Continue(), d.Decide(context.Background(), p, nil, nil), p)
	}
}

func TestAdminAreaSuperadminCountsAsApproved(t *testing.T) {
	d, _ := newDecider(signedIn(RoleSuperadmin, StatusPending), FailOpen)
	assert.Equal(t, Continue(), d.Decide(context.Background(), "/admin/dashboard", nil, nil))
}

func TestAdminAreaUnapprovedRedirectsToSuspended(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusRejected} {
		for _, p := range adminPaths {
			d, _ := newDecider(signedIn(RoleAdmin, status), FailOpen)
			assert.Equal(t, RedirectTo("/admin/login?error=account_suspended"),
				d.Decide(context.Background(), p, nil, nil), "%s %s", status, p)
		}
	}
}

func TestAdminAreaUnknownRoleOrMissingProfileRedirectsHome(t *testing.T) {
	for _, p := range adminPaths {
		d, _ := newDecider(signedIn(Role("editor"), StatusApproved), FailOpen)
		assert.Equal(t, RedirectTo("/"), d.Decide(context.Background(), p, nil, nil), p)

		f := signedIn(RoleAdmin, StatusApproved)
		f.profile = nil
		d, _ = newDecider(f, FailOpen)
		assert.Equal(t, RedirectTo("/"), d.Decide(context.Background(), p, nil, nil), p)
	}
}

func TestMissingProfileIsLoggedDistinctly(t *testing.T) {
	f := signedIn(RoleAdmin, StatusApproved)
	f.profile = nil
	d, logs := newDecider(f, FailOpen)

	d.Decide(context.Background(), "/admin/dashboard", nil, nil)

	assert.Contains(t, logs.String(), "reason=missing_profile")
	assert.NotContains(t, logs.String(), "access lookup failed")
}

func TestSuperadminArea(t *testing.T) {
	ctx := context.Background()
	for _, p := range []string{"/superadmin", "/superadmin/dashboard", "/superadmin/admins"} {
		d, _ := newDecider(signedIn(RoleSuperadmin, StatusApproved), FailOpen)
		assert.Equal(t, Continue(), d.Decide(ctx, p, nil, nil), p)

		d, _ = newDecider(signedIn(RoleAdmin, StatusApproved), FailOpen)
		assert.Equal(t, RedirectTo("/admin/dashboard"), d.Decide(ctx, p, nil, nil), p)

		d, _ = newDecider(&fakeStore{}, FailOpen)
		assert.Equal(t, RedirectTo("/superadmin/login"), d.Decide(ctx, p, nil, nil), p)

		missing := signedIn(RoleSuperadmin, StatusApproved)
		missing.profile = nil
		d, _ = newDecider(missing, FailOpen)
		assert.Equal(t, RedirectTo("/admin/dashboard"), d.Decide(ctx, p, nil, nil), p)
	}
}

func TestAuthPages(t *testing.T) {
	ctx := context.Background()
	errQuery := url.Values{"error": {"account_suspended"}}

	t.Run("error param dominates", func(t *testing.T) {
		f := signedIn(RoleAdmin, StatusApproved)
		d, _ := newDecider(f, FailOpen)
		assert.Equal(t, Continue(), d.Decide(ctx, "/admin/login", errQuery, nil))
		assert.Equal(t, Continue(), d.Decide(ctx, "/superadmin/login", errQuery, nil))
		assert.Zero(t, f.identityCalls, "no reads for error-bearing auth pages")
	})

	t.Run("signed in redirects by role", func(t *testing.T) {
		d, _ := newDecider(signedIn(RoleSuperadmin, StatusApproved), FailOpen)
		assert.Equal(t, RedirectTo("/superadmin/dashboard"), d.Decide(ctx, "/admin/login", nil, nil))
		assert.Equal(t, RedirectTo("/superadmin/dashboard"), d.Decide(ctx, "/superadmin/login", nil, nil))

		d, _ = newDecider(signedIn(RoleAdmin, StatusApproved), FailOpen)
		assert.Equal(t, RedirectTo("/admin/dashboard"), d.Decide(ctx, "/admin/login", nil, nil))
		assert.Equal(t, RedirectTo("/admin/dashboard"), d.Decide(ctx, "/admin/register", nil, nil))
	})

	t.Run("unknown role falls through", func(t *testing.T) {
		d, _ := newDecider(signedIn(Role("editor"), StatusApproved), FailOpen)
		assert.Equal(t, Continue(), d.Decide(ctx, "/admin/login", nil, nil))
	})

	t.Run("anonymous continues", func(t *testing.T) {
		d, _ := newDecider(&fakeStore{}, FailOpen)
		assert.Equal(t, Continue(), d.Decide(ctx, "/admin/login", nil, nil))
		assert.Equal(t, Continue(), d.Decide(ctx, "/admin/register", nil, nil))
		assert.Equal(t, Continue(), d.Decide(ctx, "/superadmin/login", nil, nil))
	})
}

func TestPublicPathsPerformNoReads(t *testing.T) {
	f := signedIn(RoleAdmin, StatusRejected)
	d, _ := newDecider(f, FailOpen)
	for _, p := range []string{"/", "/articles/halo", "/search", "/kategori/berita"} {
		assert.Equal(t, Continue(), d.Decide(context.Background(), p, nil, nil), p)
	}
	assert.Zero(t, f.identityCalls)
	assert.Zero(t, f.profileCalls)
}

func TestDecideIsIdempotent(t *testing.T) {
	d, _ := newDecider(signedIn(RoleAdmin, StatusPending), FailOpen)
	first := d.Decide(context.Background(), "/admin/articles", nil, nil)
	second := d.Decide(context.Background(), "/admin/articles", nil, nil)
	assert.Equal(t, first, second)
}

func TestFailOpen(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	f := &fakeStore{identityErr: boom}
	d, logs := newDecider(f, FailOpen)
	assert.Equal(t, Continue(), d.Decide(ctx, "/admin/dashboard", nil, nil))
	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, logs.String(), "stage=identity")

	f = signedIn(RoleAdmin, StatusApproved)
	f.profileErr = boom
	d, logs = newDecider(f, FailOpen)
	assert.Equal(t, Continue(), d.Decide(ctx, "/superadmin/admins", nil, nil))
	assert.Contains(t, logs.String(), "stage=profile")
}

func TestFailClosed(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("timeout")

	d, _ := newDecider(&fakeStore{identityErr: boom}, FailClosed)
	assert.Equal(t, RedirectTo("/admin/login"), d.Decide(ctx, "/admin/dashboard", nil, nil))
	assert.Equal(t, RedirectTo("/superadmin/login"), d.Decide(ctx, "/superadmin/dashboard", nil, nil))
	assert.Equal(t, Continue(), d.Decide(ctx, "/admin/login", nil, nil))
}

func TestDecideRecoversFromPanickingCollaborator(t *testing.T) {
	resolver := IdentityResolverFunc(func(context.Context, []*http.Cookie) (*Identity, error) {
		panic("nil map")
	})
	var buf bytes.Buffer
	d := NewDecider(resolver, nil, FailOpen, slog.New(slog.NewTextHandler(&buf, nil)))
	require.NotPanics(t, func() {
		assert.Equal(t, Continue(), d.Decide(context.Background(), "/admin/dashboard", nil, nil))
	})
	assert.Contains(t, buf.String(), "stage=panic")
}

func TestParseFailurePolicy(t *testing.T) {
	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, FailOpen, p)

	p, err = ParseFailurePolicy("closed")
	require.NoError(t, err)
	assert.Equal(t, FailClosed, p)

	_, err = ParseFailurePolicy("strict")
	assert.Error(t, err)
}

func TestEvaluateMatchesDecide(t *testing.T) {
	f := signedIn(RoleAdmin, StatusApproved)
	d, _ := newDecider(f, FailOpen)
	for _, p := range append(adminPaths, "/superadmin/dashboard", "/admin/login", "/") {
		assert.Equal(t, Evaluate(p, nil, f.identity, f.profile), d.Decide(context.Background(), p, nil, nil), p)
	}
}
