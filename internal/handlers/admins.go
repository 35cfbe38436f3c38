package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diewo77/go-cms/httpx"
	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/middleware"
	"github.com/diewo77/go-cms/internal/services"
	"github.com/diewo77/go-cms/validation"
	"github.com/google/uuid"
)

const adminsPath = "/superadmin/admins"

// AdminsHandler lets a superadmin approve, create and remove admins.
type AdminsHandler struct {
	admins *services.AdminService
	log    *slog.Logger
}

func NewAdminsHandler(admins *services.AdminService, log *slog.Logger) *AdminsHandler {
	return &AdminsHandler{admins: admins, log: log}
}

func (h *AdminsHandler) page(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	if _, ok := data["Admins"]; !ok {
		all, err := h.admins.ListAdmins(r.Context(), "")
		if err != nil {
			serverError(w, r, h.log, err)
			return
		}
		data["Admins"] = all
	}
	pending, err := h.admins.ListAdmins(r.Context(), access.StatusPending)
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	data["Pending"] = pending
	data["Area"] = SuperadminArea
	renderIn(w, r, h.log, status, "", "superadmin/admins.html", data)
}

// List shows all admins with the pending ones on top. ?status= filters the
// JSON listing.
func (h *AdminsHandler) List(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		status := access.Status(r.URL.Query().Get("status"))
		if status != "" && !status.Valid() {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
			return
		}
		list, err := h.admins.ListAdmins(r.Context(), status)
		if err != nil {
			serverError(w, r, h.log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
		return
	}
	h.page(w, r, http.StatusOK, map[string]any{})
}

func (h *AdminsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in := services.CreateAdminInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		FullName: strings.TrimSpace(r.FormValue("full_name")),
	}
	v := validation.Violations{}
	validation.Required("full_name", in.FullName, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	validation.MinLength("password", in.Password, services.MinPasswordLength, v)
	if v.Empty() {
		if _, err := h.admins.CreateAdmin(r.Context(), in); err != nil {
			code, ok := errorCode(err)
			if !ok {
				serverError(w, r, h.log, err)
				return
			}
			v.Add(errorField(err), code)
		}
	}
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
			return
		}
		h.page(w, r, http.StatusUnprocessableEntity, map[string]any{"Errors": v, "Form": in})
		return
	}
	h.log.Info("admin created", "email", strings.ToLower(in.Email))
	h.done(w, r, http.StatusCreated, "flash_admin_created")
}

func (h *AdminsHandler) id(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		notFound(w, r)
		return uuid.Nil, false
	}
	return id, true
}

// failed answers a service error from a per-admin action.
func (h *AdminsHandler) failed(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		notFound(w, r)
	case errors.Is(err, services.ErrProtectedSuperadmin):
		httpx.JSONError(w, http.StatusForbidden, "superadmin_protected", nil)
	case errors.Is(err, services.ErrInvalidStatus):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
	default:
		if code, ok := errorCode(err); ok {
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", validation.Violations{errorField(err): code})
				return
			}
			middleware.Flash(w, r, code)
			http.Redirect(w, r, adminsPath, http.StatusSeeOther)
			return
		}
		serverError(w, r, h.log, err)
	}
}

func (h *AdminsHandler) done(w http.ResponseWriter, r *http.Request, status int, flash string) {
	if httpx.WantsJSON(r) {
		httpx.JSON(w, status, map[string]any{"success": true})
		return
	}
	middleware.Flash(w, r, flash)
	http.Redirect(w, r, adminsPath, http.StatusSeeOther)
}

// SetStatus approves or rejects an admin. Rejected admins are signed out by
// their session watcher within one poll interval.
func (h *AdminsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	status := access.Status(r.FormValue("status"))
	if err := h.admins.SetStatus(r.Context(), id, status); err != nil {
		h.failed(w, r, err)
		return
	}
	h.log.Info("admin status changed", "admin_id", id, "status", status)
	flash := "flash_admin_approved"
	if status == access.StatusRejected {
		flash = "flash_admin_rejected"
	}
	h.done(w, r, http.StatusOK, flash)
}

func (h *AdminsHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	if err := h.admins.ResetPassword(r.Context(), id, r.FormValue("password"), r.FormValue("confirm_password")); err != nil {
		h.failed(w, r, err)
		return
	}
	h.log.Info("admin password reset", "admin_id", id)
	h.done(w, r, http.StatusOK, "flash_password_reset")
}

func (h *AdminsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	if err := h.admins.Delete(r.Context(), id); err != nil {
		h.failed(w, r, err)
		return
	}
	h.log.Info("admin deleted", "admin_id", id)
	h.done(w, r, http.StatusOK, "flash_admin_deleted")
}
