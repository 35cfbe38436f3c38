package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diewo77/go-cms/httpx"
	"github.com/diewo77/go-cms/internal/services"
)

// PublicHandler serves the visitor-facing site.
type PublicHandler struct {
	content *services.ContentService
	log     *slog.Logger
}

func NewPublicHandler(content *services.ContentService, log *slog.Logger) *PublicHandler {
	return &PublicHandler{content: content, log: log}
}

func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		notFound(w, r)
		return
	}
	cats, err := h.content.Categories(r.Context())
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	render(w, r, h.log, "public/home.html", map[string]any{"Categories": cats})
}

func (h *PublicHandler) Category(w http.ResponseWriter, r *http.Request) {
	cat, err := h.content.CategoryBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, services.ErrNotFound) {
		notFound(w, r)
		return
	}
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	articles, err := h.content.ArticlesInCategory(r.Context(), cat.ID)
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	render(w, r, h.log, "public/category.html", map[string]any{"Category": cat, "Articles": articles})
}

// Article shows a published article and counts the visit.
func (h *PublicHandler) Article(w http.ResponseWriter, r *http.Request) {
	a, err := h.content.PublishedArticle(r.Context(), r.PathValue("slug"))
	if errors.Is(err, services.ErrNotFound) {
		notFound(w, r)
		return
	}
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, a)
		return
	}
	render(w, r, h.log, "public/article.html", map[string]any{"Article": a})
}

func (h *PublicHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	articles, err := h.content.Search(r.Context(), q)
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"query": q, "items": articles})
		return
	}
	render(w, r, h.log, "public/search.html", map[string]any{"Query": q, "Articles": articles})
}

// React returns a handler recording a like or dislike. The response is
// {"success": true, "<likes|dislikes>": n}.
func (h *PublicHandler) React(kind services.Reaction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.content.React(r.Context(), r.PathValue("slug"), kind)
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "not_found"})
			return
		}
		if err != nil {
			h.log.Error("record reaction", "article", r.PathValue("slug"), "kind", kind, "error", err)
			httpx.JSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "internal_error"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"success": true, string(kind): n})
	}
}
