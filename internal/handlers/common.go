package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/diewo77/go-cms/httpx"
	"github.com/diewo77/go-cms/i18n"
	"github.com/diewo77/go-cms/internal/middleware"
	"github.com/diewo77/go-cms/internal/services"
	"github.com/diewo77/go-cms/view"
)

// Area names a dashboard section. Shared content pages render inside the
// area's layout and link below its base path.
type Area struct {
	Name string // template directory holding layout.html
	Base string // URL prefix, e.g. "/admin"
}

var (
	AdminArea      = Area{Name: "admin", Base: "/admin"}
	SuperadminArea = Area{Name: "superadmin", Base: "/superadmin"}
)

func render(w http.ResponseWriter, r *http.Request, log *slog.Logger, name string, data map[string]any) {
	renderIn(w, r, log, http.StatusOK, "", name, data)
}

// renderIn renders name inside the layout of the given area directory ("" for
// the page's own) with the given status.
func renderIn(w http.ResponseWriter, r *http.Request, log *slog.Logger, status int, layout, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = middleware.TakeFlash(w, r)
	}
	var buf bytes.Buffer
	rec := &bufferedWriter{header: w.Header(), buf: &buf}
	if err := view.RenderIn(rec, r, layout, name, data); err != nil {
		log.Error("render template", "template", name, "error", err)
		http.Error(w, i18n.T(middleware.LangFrom(r), "internal_error"), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// bufferedWriter holds a rendered page until the status is known.
type bufferedWriter struct {
	header http.Header
	buf    *bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header         { return b.header }
func (b *bufferedWriter) Write(p []byte) (int, error) { return b.buf.Write(p) }
func (b *bufferedWriter) WriteHeader(int)             {}

// serverError logs err and answers 500 in the client's format.
func serverError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	http.Error(w, i18n.T(middleware.LangFrom(r), "internal_error"), http.StatusInternalServerError)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	http.Error(w, i18n.T(middleware.LangFrom(r), "not_found"), http.StatusNotFound)
}

// errorCode maps service sentinels to i18n codes shown on forms.
func errorCode(err error) (string, bool) {
	switch {
	case errors.Is(err, services.ErrMissingFields):
		return "required", true
	case errors.Is(err, services.ErrPasswordMismatch):
		return "mismatch", true
	case errors.Is(err, services.ErrPasswordTooShort):
		return "password_too_short", true
	case errors.Is(err, services.ErrEmailTaken):
		return "email_taken", true
	case errors.Is(err, services.ErrTitleRequired):
		return "title_required", true
	case errors.Is(err, services.ErrCategoryRequired):
		return "category_required", true
	case errors.Is(err, services.ErrInvalidDate):
		return "date_required", true
	case errors.Is(err, services.ErrSlugTaken):
		return "slug_taken", true
	}
	return "", false
}

// errorField names the form field a service error belongs to.
func errorField(err error) string {
	switch {
	case errors.Is(err, services.ErrPasswordMismatch):
		return "confirm_password"
	case errors.Is(err, services.ErrPasswordTooShort):
		return "password"
	case errors.Is(err, services.ErrEmailTaken):
		return "email"
	case errors.Is(err, services.ErrTitleRequired):
		return "title"
	case errors.Is(err, services.ErrCategoryRequired):
		return "category_id"
	case errors.Is(err, services.ErrInvalidDate):
		return "posted_at"
	case errors.Is(err, services.ErrSlugTaken):
		return "slug"
	}
	return "form"
}
