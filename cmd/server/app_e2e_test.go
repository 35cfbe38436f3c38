package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/config"
	"github.com/diewo77/go-cms/internal/db"
	"github.com/diewo77/go-cms/internal/logger"
	"github.com/diewo77/go-cms/internal/policy"
	"github.com/diewo77/go-cms/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Dev: true, Metrics: true},
		Session: config.SessionConfig{Secret: "e2e-secret", TTL: time.Hour},
		Access: config.AccessConfig{
			FailurePolicy:    string(access.FailOpen),
			ProfileCacheTTL:  time.Minute,
			ProfileCacheSize: 16,
			PollInterval:     time.Second,
		},
		Bootstrap: config.BootstrapConfig{
			SuperadminEmail:    "root@example.org",
			SuperadminPassword: "rootpass",
			SuperadminName:     "Root",
		},
	}
}

func setupE2E(t *testing.T) (*App, *policy.RouterConfig) {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	cfg := testConfig()
	require.NoError(t, db.Seed(conn, cfg.Bootstrap))

	log := logger.NewWithWriter(io.Discard, false)
	routerCfg := policy.NewRouterConfig(conn, cfg, log)
	routerCfg.AdminService.ProfileRetryDelay = time.Millisecond
	return NewApp(routerCfg, log, true), routerCfg
}

// client keeps cookies between requests to the app.
type client struct {
	t       *testing.T
	app     http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, app http.Handler) *client {
	return &client{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.app.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func TestProtectedAreasRedirectAnonymousVisitors(t *testing.T) {
	app, _ := setupE2E(t)
	c := newClient(t, app)

	tests := []struct {
		path string
		want string
	}{
		{"/admin/dashboard", access.AdminLoginPath},
		{"/admin/articles", access.AdminLoginPath},
		{"/superadmin/dashboard", access.SuperadminLoginPath},
		{"/superadmin/admins", access.SuperadminLoginPath},
	}
	for _, tt := range tests {
		rec := c.get(tt.path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, tt.path)
		assert.Equal(t, tt.want, rec.Header().Get("Location"), tt.path)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	rec := c.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), access.AdminLoginPath)

	rec = c.get("/admin/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = c.get("/static/logo.png")
	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
}

func TestAdminLifecycle(t *testing.T) {
	app, rc := setupE2E(t)
	admin := newClient(t, app)
	root := newClient(t, app)

	rec := admin.post("/admin/register", url.Values{
		"full_name":        {"Rina"},
		"email":            {"rina@example.org"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = admin.post("/admin/login", url.Values{"email": {"rina@example.org"}, "password": {"secret1"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = root.post("/superadmin/login", url.Values{"email": {"root@example.org"}, "password": {"rootpass"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, access.SuperadminDashboardPath, rec.Header().Get("Location"))
	rec = root.get("/superadmin/dashboard")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "/superadmin/session/watch")

	list, err := rc.AdminService.ListAdmins(context.Background(), access.StatusPending)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID.String()

	rec = root.post("/superadmin/admins/"+id+"/status", url.Values{"status": {"approved"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = admin.post("/admin/login", url.Values{"email": {"rina@example.org"}, "password": {"secret1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, access.AdminDashboardPath, rec.Header().Get("Location"))

	rec = admin.get("/admin/dashboard")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = admin.get("/admin/login")
	assert.Equal(t, http.StatusSeeOther, rec.Code, "signed-in admins skip the login page")
	assert.Equal(t, access.AdminDashboardPath, rec.Header().Get("Location"))
	rec = admin.get("/superadmin/dashboard")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, access.AdminDashboardPath, rec.Header().Get("Location"))

	rec = admin.post("/admin/articles", url.Values{
		"title":        {"Musyawarah Besar"},
		"content":      {"<p>Agenda tahunan</p>"},
		"category_id":  {"1"},
		"is_published": {"on"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	rec = admin.get("/articles/musyawarah-besar")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rina")

	rec = root.post("/superadmin/admins/"+id+"/status", url.Values{"status": {"rejected"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = admin.get("/admin/dashboard")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, access.AdminSuspendedPath, rec.Header().Get("Location"))

	// A watch stream reconnecting after the rejection is told to leave.
	req := httptest.NewRequest(http.MethodGet, "/admin/session/watch", nil)
	req.Header.Set("Accept", "text/event-stream")
	rec = admin.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: revoked\ndata: "+access.AdminSuspendedPath)

	rec = admin.get(access.AdminSuspendedPath)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, admin.cookies, "session")
}

func TestPublicRoutesAndMetrics(t *testing.T) {
	app, rc := setupE2E(t)
	c := newClient(t, app)
	cat, err := rc.ContentService.CategoryBySlug(context.Background(), "berita")
	require.NoError(t, err)
	_, err = rc.ContentService.CreateArticle(context.Background(), services.ArticleInput{
		Title:       "Dies Natalis",
		Content:     "<p>Perayaan</p>",
		CategoryID:  &cat.ID,
		IsPublished: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, c.get("/").Code)
	assert.Equal(t, http.StatusOK, c.get("/kategori/berita").Code)
	assert.Equal(t, http.StatusNotFound, c.get("/kategori/nope").Code)
	rec := c.get("/search?q=dies")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dies Natalis")

	req := httptest.NewRequest(http.MethodPost, "/articles/dies-natalis/dislike", nil)
	req.Header.Set("Accept", "application/json")
	rec = c.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"dislikes":1}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, c.get("/health").Code)
	assert.Equal(t, http.StatusOK, c.get("/healthz").Code)
	rec = c.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cms_http_request_duration_seconds")
}
