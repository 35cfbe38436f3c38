package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-cms/auth"
	"github.com/diewo77/go-cms/httpx"
	"github.com/diewo77/go-cms/internal/middleware"
	"github.com/diewo77/go-cms/internal/models"
	"github.com/diewo77/go-cms/internal/services"
	"github.com/diewo77/go-cms/validation"
)

// ContentHandler manages articles and categories for one dashboard area.
type ContentHandler struct {
	content *services.ContentService
	area    Area
	log     *slog.Logger
}

func NewContentHandler(content *services.ContentService, area Area, log *slog.Logger) *ContentHandler {
	return &ContentHandler{content: content, area: area, log: log}
}

func (h *ContentHandler) page(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	data["Area"] = h.area
	renderIn(w, r, h.log, status, h.area.Name, "manage/"+name, data)
}

func (h *ContentHandler) articlesPath() string   { return h.area.Base + "/articles" }
func (h *ContentHandler) categoriesPath() string { return h.area.Base + "/categories" }

// articlePayload is the JSON shape of the article form.
type articlePayload struct {
	Title        string               `json:"title"`
	Content      string               `json:"content"`
	CategoryID   *uint                `json:"category_id"`
	RelatedLinks []models.RelatedLink `json:"related_links"`
	IsPublished  *bool                `json:"is_published"`
	PostingMode  string               `json:"posting_mode"`
	PostedAt     time.Time            `json:"posted_at"`
}

const postedAtLayout = "2006-01-02T15:04"

func parseArticleInput(r *http.Request) (services.ArticleInput, error) {
	if httpx.WantsJSON(r) && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var p articlePayload
		if err := httpx.DecodeJSON(r, &p); err != nil {
			return services.ArticleInput{}, err
		}
		in := services.ArticleInput{
			Title:        p.Title,
			Content:      p.Content,
			CategoryID:   p.CategoryID,
			RelatedLinks: p.RelatedLinks,
			IsPublished:  p.IsPublished == nil || *p.IsPublished,
			PostingMode:  p.PostingMode,
			PostedAt:     p.PostedAt,
		}
		return in, nil
	}
	if err := r.ParseForm(); err != nil {
		return services.ArticleInput{}, err
	}
	in := services.ArticleInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Content:     r.FormValue("content"),
		IsPublished: r.FormValue("is_published") == "on" || r.FormValue("is_published") == "true",
		PostingMode: r.FormValue("posting_mode"),
	}
	if id, err := strconv.ParseUint(r.FormValue("category_id"), 10, 64); err == nil && id > 0 {
		cid := uint(id)
		in.CategoryID = &cid
	}
	if in.PostingMode == services.PostingCustom {
		if t, err := time.ParseInLocation(postedAtLayout, r.FormValue("posted_at"), time.Local); err == nil {
			in.PostedAt = t
		}
	}
	labels, urls := r.Form["link_label"], r.Form["link_url"]
	for i := range labels {
		if i >= len(urls) {
			break
		}
		in.RelatedLinks = append(in.RelatedLinks, models.RelatedLink{
			Label: strings.TrimSpace(labels[i]),
			URL:   strings.TrimSpace(urls[i]),
		})
	}
	return in, nil
}

func (h *ContentHandler) Articles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.content.Articles(r.Context())
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": articles, "total": len(articles)})
		return
	}
	h.page(w, r, http.StatusOK, "articles.html", map[string]any{"Articles": articles})
}

func (h *ContentHandler) articleForm(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	cats, err := h.content.Categories(r.Context())
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	data["Categories"] = cats
	h.page(w, r, status, "article_form.html", data)
}

func (h *ContentHandler) NewArticle(w http.ResponseWriter, r *http.Request) {
	h.articleForm(w, r, http.StatusOK, map[string]any{
		"IsEdit":  false,
		"Article": &models.Article{IsPublished: true},
	})
}

func (h *ContentHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	in, err := parseArticleInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		in.AuthorID = &uid
	}
	a, err := h.content.CreateArticle(r.Context(), in)
	if err != nil {
		h.articleError(w, r, err, false, draft("", in))
		return
	}
	h.log.Info("article created", "id", a.ID, "area", h.area.Name)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, a)
		return
	}
	middleware.Flash(w, r, "flash_article_saved")
	http.Redirect(w, r, h.articlesPath(), http.StatusSeeOther)
}

func (h *ContentHandler) EditArticle(w http.ResponseWriter, r *http.Request) {
	a, err := h.content.Article(r.Context(), r.PathValue("id"))
	if errors.Is(err, services.ErrNotFound) {
		middleware.Flash(w, r, "flash_not_found")
		http.Redirect(w, r, h.articlesPath(), http.StatusSeeOther)
		return
	}
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	h.articleForm(w, r, http.StatusOK, map[string]any{"IsEdit": true, "Article": a})
}

func (h *ContentHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	in, err := parseArticleInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	a, err := h.content.UpdateArticle(r.Context(), id, in)
	if errors.Is(err, services.ErrNotFound) {
		notFound(w, r)
		return
	}
	if err != nil {
		h.articleError(w, r, err, true, draft(id, in))
		return
	}
	h.log.Info("article updated", "id", a.ID, "area", h.area.Name)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, a)
		return
	}
	middleware.Flash(w, r, "flash_article_saved")
	http.Redirect(w, r, h.articlesPath(), http.StatusSeeOther)
}

// draft rebuilds the submitted article for re-rendering the form.
func draft(id string, in services.ArticleInput) *models.Article {
	return &models.Article{
		ID:           id,
		Title:        in.Title,
		Content:      in.Content,
		CategoryID:   in.CategoryID,
		RelatedLinks: in.RelatedLinks,
		IsPublished:  in.IsPublished,
		CreatedAt:    in.PostedAt,
	}
}

func (h *ContentHandler) articleError(w http.ResponseWriter, r *http.Request, err error, edit bool, a *models.Article) {
	code, ok := errorCode(err)
	if !ok {
		serverError(w, r, h.log, err)
		return
	}
	v := validation.Violations{}
	v.Add(errorField(err), code)
	if httpx.WantsJSON(r) {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, services.ErrSlugTaken) {
			status = http.StatusConflict
		}
		httpx.JSONError(w, status, "validation_failed", v)
		return
	}
	h.articleForm(w, r, http.StatusUnprocessableEntity, map[string]any{"IsEdit": edit, "Article": a, "Errors": v})
}

func (h *ContentHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.content.DeleteArticle(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		notFound(w, r)
		return
	}
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	h.log.Info("article deleted", "id", id, "area", h.area.Name)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
		return
	}
	middleware.Flash(w, r, "flash_article_deleted")
	http.Redirect(w, r, h.articlesPath(), http.StatusSeeOther)
}

func (h *ContentHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.content.Categories(r.Context())
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": cats})
		return
	}
	h.page(w, r, http.StatusOK, "categories.html", map[string]any{"Categories": cats})
}

func categoryInput(r *http.Request) services.CategoryInput {
	return services.CategoryInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Slug:        strings.TrimSpace(r.FormValue("slug")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Icon:        strings.TrimSpace(r.FormValue("icon")),
	}
}

func (h *ContentHandler) NewCategory(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, "category_form.html", map[string]any{"IsEdit": false, "Category": &models.Category{}})
}

func (h *ContentHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	in := categoryInput(r)
	c, err := h.content.CreateCategory(r.Context(), in)
	if err != nil {
		h.categoryError(w, r, err, false, &models.Category{Title: in.Title, Slug: in.Slug, Description: in.Description, Icon: in.Icon})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, c)
		return
	}
	middleware.Flash(w, r, "flash_category_saved")
	http.Redirect(w, r, h.categoriesPath(), http.StatusSeeOther)
}

func parseCategoryID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *ContentHandler) EditCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCategoryID(r)
	if !ok {
		notFound(w, r)
		return
	}
	c, err := h.content.Category(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		middleware.Flash(w, r, "flash_not_found")
		http.Redirect(w, r, h.categoriesPath(), http.StatusSeeOther)
		return
	}
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	h.page(w, r, http.StatusOK, "category_form.html", map[string]any{"IsEdit": true, "Category": c})
}

func (h *ContentHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCategoryID(r)
	if !ok {
		notFound(w, r)
		return
	}
	in := categoryInput(r)
	c, err := h.content.UpdateCategory(r.Context(), id, in)
	if errors.Is(err, services.ErrNotFound) {
		notFound(w, r)
		return
	}
	if err != nil {
		h.categoryError(w, r, err, true, &models.Category{ID: id, Title: in.Title, Slug: in.Slug, Description: in.Description, Icon: in.Icon})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, c)
		return
	}
	middleware.Flash(w, r, "flash_category_saved")
	http.Redirect(w, r, h.categoriesPath(), http.StatusSeeOther)
}

func (h *ContentHandler) categoryError(w http.ResponseWriter, r *http.Request, err error, edit bool, c *models.Category) {
	code, ok := errorCode(err)
	if !ok {
		serverError(w, r, h.log, err)
		return
	}
	v := validation.Violations{}
	v.Add(errorField(err), code)
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	h.page(w, r, http.StatusUnprocessableEntity, "category_form.html", map[string]any{"IsEdit": edit, "Category": c, "Errors": v})
}

func (h *ContentHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCategoryID(r)
	if !ok {
		notFound(w, r)
		return
	}
	err := h.content.DeleteCategory(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		notFound(w, r)
		return
	}
	if err != nil {
		serverError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
		return
	}
	middleware.Flash(w, r, "flash_category_deleted")
	http.Redirect(w, r, h.categoriesPath(), http.StatusSeeOther)
}
