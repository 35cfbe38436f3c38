package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diewo77/go-cms/auth"
	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/services"
	"github.com/diewo77/go-cms/validation"
)

type AuthHandler struct {
	admins   *services.AdminService
	sessions *auth.Sessions
	log      *slog.Logger
}

func NewAuthHandler(admins *services.AdminService, sessions *auth.Sessions, log *slog.Logger) *AuthHandler {
	return &AuthHandler{admins: admins, sessions: sessions, log: log}
}

// loginNotice maps the ?error= value of a login page to a message code.
// A suspended account also loses its session here.
func (h *AuthHandler) loginNotice(w http.ResponseWriter, r *http.Request, suspendedCode string) string {
	switch r.URL.Query().Get("error") {
	case access.ErrorAccountSuspended:
		h.sessions.Clear(w)
		return suspendedCode
	case "account_not_approved":
		return "account_not_approved"
	}
	return ""
}

// AdminLogin signs in admins. Superadmins may use it too and land on their
// own dashboard.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	const page = "admin/login.html"
	if r.Method == http.MethodGet {
		render(w, r, h.log, page, map[string]any{"Error": h.loginNotice(w, r, "account_suspended")})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	user, profile, err := h.admins.Authenticate(r.Context(), email, r.FormValue("password"))
	if err != nil {
		code := ""
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			code = "invalid_credentials"
		case errors.Is(err, services.ErrAccountPending):
			code = "account_pending"
		case errors.Is(err, services.ErrAccountRejected):
			code = "account_rejected"
		default:
			serverError(w, r, h.log, err)
			return
		}
		h.sessions.Clear(w)
		renderIn(w, r, h.log, http.StatusUnauthorized, "", page, map[string]any{"Error": code, "Email": email})
		return
	}

	h.sessions.Create(w, user.ID)
	h.log.Info("signed in", "user_id", user.ID, "landing", services.LandingPath(profile))
	http.Redirect(w, r, services.LandingPath(profile), http.StatusSeeOther)
}

// SuperadminLogin signs in superadmins only.
func (h *AuthHandler) SuperadminLogin(w http.ResponseWriter, r *http.Request) {
	const page = "superadmin/login.html"
	if r.Method == http.MethodGet {
		render(w, r, h.log, page, map[string]any{"Error": h.loginNotice(w, r, "superadmin_suspended")})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	_, profile, err := h.admins.Authenticate(r.Context(), email, r.FormValue("password"))
	code := ""
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		code = "invalid_credentials"
	case errors.Is(err, services.ErrAccountPending), errors.Is(err, services.ErrAccountRejected):
		code = "not_superadmin"
	case err != nil:
		serverError(w, r, h.log, err)
		return
	case profile == nil || profile.Role != access.RoleSuperadmin:
		code = "not_superadmin"
	}
	if code != "" {
		h.sessions.Clear(w)
		renderIn(w, r, h.log, http.StatusUnauthorized, "", page, map[string]any{"Error": code, "Email": email})
		return
	}

	h.sessions.Create(w, profile.ID)
	h.log.Info("signed in", "user_id", profile.ID, "role", profile.Role)
	http.Redirect(w, r, access.SuperadminDashboardPath, http.StatusSeeOther)
}

// Register is the admin self-registration form. New accounts wait for a
// superadmin's approval and are not signed in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	const page = "admin/register.html"
	if r.Method == http.MethodGet {
		render(w, r, h.log, page, nil)
		return
	}

	in := services.RegisterInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm_password"),
		FullName: strings.TrimSpace(r.FormValue("full_name")),
	}
	v := validation.Violations{}
	validation.Required("full_name", in.FullName, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	validation.MinLength("password", in.Password, services.MinPasswordLength, v)
	validation.Match("confirm_password", in.Confirm, in.Password, v)
	if v.Empty() {
		if _, err := h.admins.Register(r.Context(), in); err != nil {
			code, ok := errorCode(err)
			if !ok {
				serverError(w, r, h.log, err)
				return
			}
			v.Add(errorField(err), code)
		}
	}
	if !v.Empty() {
		renderIn(w, r, h.log, http.StatusUnprocessableEntity, "", page, map[string]any{"Errors": v, "Form": in})
		return
	}
	render(w, r, h.log, "admin/register_success.html", map[string]any{"Email": in.Email})
}

// Logout clears the session and sends the caller to target.
func (h *AuthHandler) Logout(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.sessions.Clear(w)
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
