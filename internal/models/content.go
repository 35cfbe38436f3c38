package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups articles on the public site.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Icon        string    `gorm:"size:100" json:"icon,omitempty"`
}

// RelatedLink is an external reference shown under an article.
type RelatedLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// MaxRelatedLinks bounds the links kept on one article.
const MaxRelatedLinks = 3

// Article is a published or draft post. Its id is the slug derived from the
// title at creation time.
type Article struct {
	ID           string        `gorm:"primaryKey;size:255" json:"id"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Title        string        `gorm:"size:255;not null" json:"title"`
	Content      string        `gorm:"type:text" json:"content"`
	CategoryID   *uint         `gorm:"index" json:"category_id"`
	Category     *Category     `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	AuthorID     *uuid.UUID    `gorm:"type:uuid;index" json:"author_id,omitempty"`
	Author       *Profile      `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	RelatedLinks []RelatedLink `gorm:"serializer:json" json:"related_links"`
	IsPublished  bool          `gorm:"index" json:"is_published"`
	Views        int64         `gorm:"not null;default:0" json:"views"`
	Likes        int64         `gorm:"not null;default:0" json:"likes"`
	Dislikes     int64         `gorm:"not null;default:0" json:"dislikes"`
}

// Excerpt returns the plain-text start of the article content.
func (a *Article) Excerpt(n int) string {
	return Truncate(StripHTML(a.Content), n)
}

// CleanLinks keeps links that have both a label and a url, at most MaxRelatedLinks.
func CleanLinks(links []RelatedLink) []RelatedLink {
	out := make([]RelatedLink, 0, len(links))
	for _, l := range links {
		if l.Label == "" || l.URL == "" {
			continue
		}
		out = append(out, l)
		if len(out) == MaxRelatedLinks {
			break
		}
	}
	return out
}

// AuthorName is the display name of the author, "Admin" when unknown.
func (a *Article) AuthorName() string {
	if a.Author == nil {
		return "Admin"
	}
	return a.Author.DisplayName()
}
