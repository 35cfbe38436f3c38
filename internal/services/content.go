package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-cms/internal/metrics"
	"github.com/diewo77/go-cms/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrCategoryRequired = errors.New("category is required")
	ErrSlugTaken        = errors.New("slug already in use")
	ErrInvalidDate      = errors.New("custom posting date is required")
)

// Posting modes of the article form.
const (
	PostingAuto   = "auto"
	PostingCustom = "custom"
)

// ContentService stores articles and categories.
type ContentService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db, now: time.Now}
}

// ArticleInput is the article form shared by create and edit.
type ArticleInput struct {
	Title        string
	Content      string
	CategoryID   *uint
	RelatedLinks []models.RelatedLink
	IsPublished  bool
	PostingMode  string
	PostedAt     time.Time
	AuthorID     *uuid.UUID
}

func (in ArticleInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if in.CategoryID == nil || *in.CategoryID == 0 {
		return ErrCategoryRequired
	}
	if in.PostingMode == PostingCustom && in.PostedAt.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (s *ContentService) postedAt(in ArticleInput) time.Time {
	if in.PostingMode == PostingCustom {
		return in.PostedAt
	}
	return s.now()
}

func (s *ContentService) exists(ctx context.Context, model any, where string, arg any) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where(where, arg).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateArticle stores a new article whose id is the slug of its title.
func (s *ContentService) CreateArticle(ctx context.Context, in ArticleInput) (*models.Article, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	slug := models.Slugify(in.Title)
	if slug == "" {
		return nil, ErrTitleRequired
	}
	taken, err := s.exists(ctx, &models.Article{}, "id = ?", slug)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return nil, ErrSlugTaken
	}
	a := &models.Article{
		ID:           slug,
		CreatedAt:    s.postedAt(in),
		Title:        strings.TrimSpace(in.Title),
		Content:      in.Content,
		CategoryID:   in.CategoryID,
		AuthorID:     in.AuthorID,
		RelatedLinks: models.CleanLinks(in.RelatedLinks),
		IsPublished:  in.IsPublished,
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return a, nil
}

// UpdateArticle rewrites an article. The id stays the same even when the title changes.
func (s *ContentService) UpdateArticle(ctx context.Context, id string, in ArticleInput) (*models.Article, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a, err := s.Article(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Title = strings.TrimSpace(in.Title)
	a.Content = in.Content
	a.CategoryID = in.CategoryID
	a.RelatedLinks = models.CleanLinks(in.RelatedLinks)
	a.IsPublished = in.IsPublished
	a.CreatedAt = s.postedAt(in)
	a.UpdatedAt = s.now()
	err = s.db.WithContext(ctx).Model(a).
		Select("title", "content", "category_id", "related_links", "is_published", "created_at", "updated_at").
		Updates(a).Error
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return s.Article(ctx, id)
}

// DeleteArticle removes an article.
func (s *ContentService) DeleteArticle(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Article{})
	if res.Error != nil {
		return fmt.Errorf("delete article: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ContentService) findArticle(ctx context.Context, q *gorm.DB) (*models.Article, error) {
	var a models.Article
	err := q.WithContext(ctx).Preload("Category").Preload("Author").First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	return &a, nil
}

// Article returns an article regardless of its publish flag.
func (s *ContentService) Article(ctx context.Context, id string) (*models.Article, error) {
	return s.findArticle(ctx, s.db.Where("id = ?", id))
}

// PublishedArticle returns a published article and counts the view.
func (s *ContentService) PublishedArticle(ctx context.Context, id string) (*models.Article, error) {
	a, err := s.findArticle(ctx, s.db.Where("id = ? AND is_published = ?", id, true))
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("count view: %w", res.Error)
	}
	a.Views++
	return a, nil
}

// Articles lists every article, newest first.
func (s *ContentService) Articles(ctx context.Context) ([]models.Article, error) {
	var out []models.Article
	err := s.db.WithContext(ctx).Preload("Category").Preload("Author").
		Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return out, nil
}

// ArticlesInCategory lists the published articles of a category, newest first.
func (s *ContentService) ArticlesInCategory(ctx context.Context, categoryID uint) ([]models.Article, error) {
	var out []models.Article
	err := s.db.WithContext(ctx).
		Where("category_id = ? AND is_published = ?", categoryID, true).
		Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list category articles: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches published article titles case-insensitively, most viewed first.
func (s *ContentService) Search(ctx context.Context, q string) ([]models.Article, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
	var out []models.Article
	err := s.db.WithContext(ctx).Preload("Category").
		Where("is_published = ?", true).
		Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern).
		Order("views DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return out, nil
}

// Reaction is a like or a dislike.
type Reaction string

const (
	Like    Reaction = "likes"
	Dislike Reaction = "dislikes"
)

// React increments the like or dislike counter of an article and returns
// the new value.
func (s *ContentService) React(ctx context.Context, id string, r Reaction) (int64, error) {
	if r != Like && r != Dislike {
		return 0, fmt.Errorf("unknown reaction %q", r)
	}
	col := string(r)
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Article{}).Where("id = ?", id).
			UpdateColumn(col, gorm.Expr(col+" + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.Article{}).Where("id = ?", id).Select(col).Scan(&count).Error
	})
	if errors.Is(err, ErrNotFound) {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", col, err)
	}
	metrics.ArticleReactions.WithLabelValues(col).Inc()
	return count, nil
}

// CategoryInput is the category form.
type CategoryInput struct {
	Title       string
	Slug        string
	Description string
	Icon        string
}

func (in CategoryInput) slug() string {
	if s := models.Slugify(in.Slug); s != "" {
		return s
	}
	return models.Slugify(in.Title)
}

// Categories lists categories in creation order.
func (s *ContentService) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (s *ContentService) findCategory(ctx context.Context, where string, arg any) (*models.Category, error) {
	var c models.Category
	err := s.db.WithContext(ctx).Where(where, arg).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	return &c, nil
}

// Category returns a category by id.
func (s *ContentService) Category(ctx context.Context, id uint) (*models.Category, error) {
	return s.findCategory(ctx, "id = ?", id)
}

// CategoryBySlug returns a category by slug.
func (s *ContentService) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findCategory(ctx, "slug = ?", slug)
}

// CreateCategory stores a category. An empty slug is derived from the title.
func (s *ContentService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	slug := in.slug()
	taken, err := s.exists(ctx, &models.Category{}, "slug = ?", slug)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return nil, ErrSlugTaken
	}
	c := &models.Category{
		Title:       strings.TrimSpace(in.Title),
		Slug:        slug,
		Description: in.Description,
		Icon:        in.Icon,
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// UpdateCategory rewrites a category.
func (s *ContentService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	c, err := s.Category(ctx, id)
	if err != nil {
		return nil, err
	}
	slug := in.slug()
	if slug != c.Slug {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ? AND id <> ?", slug, id).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if n > 0 {
			return nil, ErrSlugTaken
		}
	}
	c.Title = strings.TrimSpace(in.Title)
	c.Slug = slug
	c.Description = in.Description
	c.Icon = in.Icon
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category. Its articles keep existing without one.
func (s *ContentService) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Article{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach articles: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return fmt.Errorf("delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
