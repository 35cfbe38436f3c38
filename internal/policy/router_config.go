package policy

import (
	"log/slog"

	"github.com/diewo77/go-cms/auth"
	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/config"
	"github.com/diewo77/go-cms/internal/handlers"
	"github.com/diewo77/go-cms/internal/services"
	"github.com/diewo77/go-cms/internal/sessionwatch"
	"gorm.io/gorm"
)

// RouterConfig holds configured handlers and middleware for the application.
type RouterConfig struct {
	Sessions *auth.Sessions

	// Profiles is the cached lookup used for request-time decisions. Admin
	// changes invalidate it.
	Profiles *access.CachedLookup
	Decider  *access.Decider
	Poller   *sessionwatch.Poller

	// Services
	AdminService     *services.AdminService
	ContentService   *services.ContentService
	DashboardService *services.DashboardService

	// Handlers
	AuthHandler       *handlers.AuthHandler
	PublicHandler     *handlers.PublicHandler
	DashboardHandler  *handlers.DashboardHandler
	AdminContent      *handlers.ContentHandler
	SuperadminContent *handlers.ContentHandler
	AdminsHandler     *handlers.AdminsHandler
	AdminWatch        *handlers.SessionWatchHandler
	SuperadminWatch   *handlers.SessionWatchHandler
	HealthHandler     *handlers.HealthHandler
}

// NewRouterConfig creates a fully configured router setup.
//
// The decider reads profiles through the cache; session watchers read the
// table directly so a status change shows up on their next tick.
func NewRouterConfig(db *gorm.DB, cfg *config.Config, log *slog.Logger) *RouterConfig {
	sessions := auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Secure)

	store := NewDBProfileLookup(db)
	cached := access.NewCachedLookup(store, cfg.Access.ProfileCacheSize, cfg.Access.ProfileCacheTTL)
	decider := access.NewDecider(NewDBIdentityResolver(db, sessions), cached, cfg.Access.Policy(), log.With("component", "access"))
	poller := sessionwatch.New(store, cfg.Access.PollInterval, log.With("component", "sessionwatch"))

	adminSvc := services.NewAdminService(db, cached)
	contentSvc := services.NewContentService(db)
	dashSvc := services.NewDashboardService(db)

	return &RouterConfig{
		Sessions: sessions,
		Profiles: cached,
		Decider:  decider,
		Poller:   poller,

		AdminService:     adminSvc,
		ContentService:   contentSvc,
		DashboardService: dashSvc,

		AuthHandler:       handlers.NewAuthHandler(adminSvc, sessions, log),
		PublicHandler:     handlers.NewPublicHandler(contentSvc, log),
		DashboardHandler:  handlers.NewDashboardHandler(dashSvc, adminSvc, log),
		AdminContent:      handlers.NewContentHandler(contentSvc, handlers.AdminArea, log),
		SuperadminContent: handlers.NewContentHandler(contentSvc, handlers.SuperadminArea, log),
		AdminsHandler:     handlers.NewAdminsHandler(adminSvc, log),
		AdminWatch:        handlers.NewSessionWatchHandler(poller, sessionwatch.AdminView, log),
		SuperadminWatch:   handlers.NewSessionWatchHandler(poller, sessionwatch.SuperadminView, log),
		HealthHandler:     handlers.NewHealthHandler(handlers.PingDB(db)),
	}
}
