package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareRedirectsBrowsers(t *testing.T) {
	d, _ := newDecider(&fakeStore{}, FailOpen)
	h := Middleware(d)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestMiddlewareAnswersJSONClientsWith401(t *testing.T) {
	d, _ := newDecider(signedIn(RoleAdmin, StatusRejected), FailOpen)
	h := Middleware(d)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin/articles", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized","details":{"redirect":"/admin/login?error=account_suspended"}}`, rec.Body.String())
}

func TestMiddlewareSendsRevokedEventToStreams(t *testing.T) {
	d, _ := newDecider(signedIn(RoleAdmin, StatusRejected), FailOpen)
	h := Middleware(d)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin/session/watch", nil)
	req.Header.Set("Accept", "text/event-stream")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: revoked\ndata: /admin/login?error=account_suspended\n\n", rec.Body.String())
}

func TestMiddlewareSkipsStaticAssets(t *testing.T) {
	f := &fakeStore{}
	d, _ := newDecider(f, FailOpen)
	h := Middleware(d)(okHandler())

	for _, p := range []string{"/static/js/session-watch.js", "/admin/logo.svg", "/favicon.ico"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
	assert.Zero(t, f.identityCalls)
}

func TestMiddlewareContinues(t *testing.T) {
	d, _ := newDecider(signedIn(RoleAdmin, StatusApproved), FailOpen)
	h := Middleware(d)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type countingLookup struct {
	profile *Profile
	calls   int
}

func (c *countingLookup) GetProfile(_ context.Context, _ uuid.UUID) (*Profile, error) {
	c.calls++
	if c.profile == nil {
		return nil, nil
	}
	p := *c.profile
	return &p, nil
}

func TestCachedLookup(t *testing.T) {
	id := uuid.New()
	inner := &countingLookup{profile: &Profile{ID: id, Role: RoleAdmin, Status: StatusApproved}}
	c := NewCachedLookup(inner, 16, time.Minute)
	ctx := context.Background()

	p, err := c.GetProfile(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	_, _ = c.GetProfile(ctx, id)
	assert.Equal(t, 1, inner.calls)

	p.Status = StatusRejected
	again, _ := c.GetProfile(ctx, id)
	assert.Equal(t, StatusApproved, again.Status, "callers must not mutate cached entries")

	inner.profile.Status = StatusRejected
	c.Invalidate(id)
	p, _ = c.GetProfile(ctx, id)
	assert.Equal(t, StatusRejected, p.Status)
	assert.Equal(t, 2, inner.calls)

	c.InvalidateAll()
	assert.Zero(t, c.Len())
}

func TestCachedLookupDoesNotCacheMissingProfiles(t *testing.T) {
	inner := &countingLookup{}
	c := NewCachedLookup(inner, 16, time.Minute)
	id := uuid.New()

	p, err := c.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, p)

	inner.profile = &Profile{ID: id, Role: RoleAdmin, Status: StatusPending}
	p, err = c.GetProfile(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedLookupExpires(t *testing.T) {
	id := uuid.New()
	inner := &countingLookup{profile: &Profile{ID: id, Role: RoleAdmin, Status: StatusApproved}}
	c := NewCachedLookup(inner, 16, 20*time.Millisecond)

	_, _ = c.GetProfile(context.Background(), id)
	assert.Eventually(t, func() bool {
		_, _ = c.GetProfile(context.Background(), id)
		return inner.calls >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestCachedLookupDisabled(t *testing.T) {
	tests := []struct {
		name string
		size int
		ttl  time.Duration
	}{
		{"zero ttl", 16, 0},
		{"zero size", 0, time.Minute},
		{"negative size", -1, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			inner := &countingLookup{profile: &Profile{ID: id, Role: RoleAdmin, Status: StatusApproved}}
			c := NewCachedLookup(inner, tt.size, tt.ttl)
			ctx := context.Background()
			assert.False(t, c.Enabled())

			p, err := c.GetProfile(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, StatusApproved, p.Status)

			inner.profile.Status = StatusRejected
			p, err = c.GetProfile(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, StatusRejected, p.Status, "status changed elsewhere is seen on the next read")
			assert.Equal(t, 2, inner.calls)
			assert.Zero(t, c.Len())

			c.Invalidate(id)
			c.InvalidateAll()
		})
	}
}
