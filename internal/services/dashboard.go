package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/models"
	"gorm.io/gorm"
)

const recentLimit = 5

// AdminStats feeds the admin dashboard.
type AdminStats struct {
	Articles       int64
	Categories     int64
	RecentArticles []models.Article
}

// SuperadminStats feeds the superadmin dashboard.
type SuperadminStats struct {
	Admins           int64
	NewAdminsToday   int64
	Articles         int64
	NewArticlesToday int64
	Categories       int64
	RecentArticles   []models.Article
	RecentAdmins     []models.Profile
}

// DashboardService aggregates counts for the dashboards.
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

func (s *DashboardService) startOfDay() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

func (s *DashboardService) count(ctx context.Context, model any, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(model).Scopes(scopes...).Count(&n).Error
	return n, err
}

func (s *DashboardService) recentArticles(ctx context.Context) ([]models.Article, error) {
	var out []models.Article
	err := s.db.WithContext(ctx).Preload("Author").Order("created_at DESC").Limit(recentLimit).Find(&out).Error
	return out, err
}

func approvedAdmins(db *gorm.DB) *gorm.DB {
	return db.Where("role = ? AND status = ?", access.RoleAdmin, access.StatusApproved)
}

func createdSince(t time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("created_at >= ?", t) }
}

// Admin returns the admin dashboard figures.
func (s *DashboardService) Admin(ctx context.Context) (*AdminStats, error) {
	var st AdminStats
	var err error
	if st.Articles, err = s.count(ctx, &models.Article{}); err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	if st.Categories, err = s.count(ctx, &models.Category{}); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if st.RecentArticles, err = s.recentArticles(ctx); err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}
	return &st, nil
}

// Superadmin returns the superadmin dashboard figures.
func (s *DashboardService) Superadmin(ctx context.Context) (*SuperadminStats, error) {
	today := s.startOfDay()
	var st SuperadminStats
	var err error
	if st.Admins, err = s.count(ctx, &models.Profile{}, approvedAdmins); err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	if st.NewAdminsToday, err = s.count(ctx, &models.Profile{}, approvedAdmins, createdSince(today)); err != nil {
		return nil, fmt.Errorf("count new admins: %w", err)
	}
	if st.Articles, err = s.count(ctx, &models.Article{}); err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	if st.NewArticlesToday, err = s.count(ctx, &models.Article{}, createdSince(today)); err != nil {
		return nil, fmt.Errorf("count new articles: %w", err)
	}
	if st.Categories, err = s.count(ctx, &models.Category{}); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if st.RecentArticles, err = s.recentArticles(ctx); err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}
	err = s.db.WithContext(ctx).Scopes(approvedAdmins).Order("created_at DESC").Limit(recentLimit).Find(&st.RecentAdmins).Error
	if err != nil {
		return nil, fmt.Errorf("recent admins: %w", err)
	}
	return &st, nil
}
