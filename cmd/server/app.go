package main

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/handlers"
	"github.com/diewo77/go-cms/internal/metrics"
	"github.com/diewo77/go-cms/internal/middleware"
	"github.com/diewo77/go-cms/internal/policy"
	"github.com/diewo77/go-cms/internal/services"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *policy.RouterConfig
	log       *slog.Logger
	handler   http.Handler
}

// NewApp creates a new application with all routes configured. metrics
// controls whether /metrics is exposed.
func NewApp(routerCfg *policy.RouterConfig, log *slog.Logger, withMetrics bool) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
		log:       log,
	}
	app.setupRoutes(withMetrics)

	// Built inside out; Recover ends up outermost.
	var h http.Handler = app.mux
	h = access.Middleware(routerCfg.Decider)(h)
	h = middleware.Prefs(h)
	h = routerCfg.Sessions.Middleware(h)
	h = middleware.Logging(log)(h)
	h = middleware.Recover(log)(h)
	app.handler = h
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes. Gating happens before the
// mux, so routes are registered without per-route guards.
func (a *App) setupRoutes(withMetrics bool) {
	// ─────────────────────────────────────────────────────────────────────────
	// Public site
	// ─────────────────────────────────────────────────────────────────────────
	ph := a.routerCfg.PublicHandler

	a.mux.HandleFunc("GET /", ph.Home)
	a.mux.HandleFunc("GET /kategori/{slug}", ph.Category)
	a.mux.HandleFunc("GET /articles/{slug}", ph.Article)
	a.mux.HandleFunc("GET /search", ph.Search)
	a.mux.HandleFunc("POST /articles/{slug}/like", ph.React(services.Like))
	a.mux.HandleFunc("POST /articles/{slug}/dislike", ph.React(services.Dislike))

	hh := a.routerCfg.HealthHandler
	a.mux.HandleFunc("GET /health", hh.Health)
	a.mux.HandleFunc("GET /healthz", hh.Ready)
	if withMetrics {
		a.mux.Handle("GET /metrics", metrics.Handler())
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Admin area
	// ─────────────────────────────────────────────────────────────────────────
	ah := a.routerCfg.AuthHandler

	a.mux.HandleFunc("GET /admin/login", ah.AdminLogin)
	a.mux.HandleFunc("POST /admin/login", ah.AdminLogin)
	a.mux.HandleFunc("GET /admin/register", ah.Register)
	a.mux.HandleFunc("POST /admin/register", ah.Register)
	a.mux.HandleFunc("GET /admin/logout", ah.Logout(access.AdminLoginPath))
	a.mux.HandleFunc("POST /admin/logout", ah.Logout(access.AdminLoginPath))
	a.mux.Handle("GET /admin/{$}", http.RedirectHandler(access.AdminDashboardPath, http.StatusSeeOther))
	a.mux.HandleFunc("GET /admin/dashboard", a.routerCfg.DashboardHandler.Admin)
	a.mux.Handle("GET /admin/session/watch", a.routerCfg.AdminWatch)
	a.contentRoutes("/admin", a.routerCfg.AdminContent)

	// ─────────────────────────────────────────────────────────────────────────
	// Superadmin area
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /superadmin/login", ah.SuperadminLogin)
	a.mux.HandleFunc("POST /superadmin/login", ah.SuperadminLogin)
	a.mux.HandleFunc("GET /superadmin/logout", ah.Logout(access.SuperadminLoginPath))
	a.mux.HandleFunc("POST /superadmin/logout", ah.Logout(access.SuperadminLoginPath))
	a.mux.Handle("GET /superadmin/{$}", http.RedirectHandler(access.SuperadminDashboardPath, http.StatusSeeOther))
	a.mux.HandleFunc("GET /superadmin/dashboard", a.routerCfg.DashboardHandler.Superadmin)
	a.mux.Handle("GET /superadmin/session/watch", a.routerCfg.SuperadminWatch)
	a.contentRoutes("/superadmin", a.routerCfg.SuperadminContent)

	adm := a.routerCfg.AdminsHandler
	a.mux.HandleFunc("GET /superadmin/admins", adm.List)
	a.mux.HandleFunc("POST /superadmin/admins", adm.Create)
	a.mux.HandleFunc("POST /superadmin/admins/{id}/status", adm.SetStatus)
	a.mux.HandleFunc("POST /superadmin/admins/{id}/password", adm.ResetPassword)
	a.mux.HandleFunc("POST /superadmin/admins/{id}/delete", adm.Delete)

	// ─────────────────────────────────────────────────────────────────────────
	// Static files
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	a.mux.Handle("GET /favicon.ico", http.RedirectHandler("/static/favicon.svg", http.StatusMovedPermanently))
}

// contentRoutes registers article and category management below base.
func (a *App) contentRoutes(base string, ch *handlers.ContentHandler) {
	a.mux.HandleFunc("GET "+base+"/articles", ch.Articles)
	a.mux.HandleFunc("GET "+base+"/articles/create", ch.NewArticle)
	a.mux.HandleFunc("POST "+base+"/articles", ch.CreateArticle)
	a.mux.HandleFunc("GET "+base+"/articles/edit/{id}", ch.EditArticle)
	a.mux.HandleFunc("POST "+base+"/articles/{id}", ch.UpdateArticle)
	a.mux.HandleFunc("POST "+base+"/articles/{id}/delete", ch.DeleteArticle)

	a.mux.HandleFunc("GET "+base+"/categories", ch.Categories)
	a.mux.HandleFunc("GET "+base+"/categories/create", ch.NewCategory)
	a.mux.HandleFunc("POST "+base+"/categories", ch.CreateCategory)
	a.mux.HandleFunc("GET "+base+"/categories/edit/{id}", ch.EditCategory)
	a.mux.HandleFunc("POST "+base+"/categories/{id}", ch.UpdateCategory)
	a.mux.HandleFunc("POST "+base+"/categories/{id}/delete", ch.DeleteCategory)
}
