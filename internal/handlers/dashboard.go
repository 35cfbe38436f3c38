package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/go-cms/auth"
	"github.com/diewo77/go-cms/httpx"
	"github.com/diewo77/go-cms/internal/models"
	"github.com/diewo77/go-cms/internal/services"
)

type DashboardHandler struct {
	dash   *services.DashboardService
	admins *services.AdminService
	log    *slog.Logger
}

func NewDashboardHandler(dash *services.DashboardService, admins *services.AdminService, log *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dash: dash, admins: admins, log: log}
}

// current returns the signed-in profile for the page header, or nil.
func (h *DashboardHandler) current(r *http.Request) *models.Profile {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil
	}
	p, err := h.admins.Profile(r.Context(), uid)
	if err != nil {
		return nil
	}
	return p
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	st, err := h.dash.Admin(r.Context())
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, st)
		return
	}
	render(w, r, h.log, "admin/dashboard.html", map[string]any{
		"Stats":   st,
		"Profile": h.current(r),
		"Area":    AdminArea,
	})
}

func (h *DashboardHandler) Superadmin(w http.ResponseWriter, r *http.Request) {
	st, err := h.dash.Superadmin(r.Context())
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, st)
		return
	}
	render(w, r, h.log, "superadmin/dashboard.html", map[string]any{
		"Stats":   st,
		"Profile": h.current(r),
		"Area":    SuperadminArea,
	})
}
