package dto

import (
	"time"

	"github.com/noah-isme/wakaf-cms-api/internal/models"
)

// ContentListRequest captures admin list filters shared by every content table.
type ContentListRequest struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
	Search   string `query:"search" validate:"omitempty,max=128"`
}

// ContentListResponse wraps a page of rows from one content table.
type ContentListResponse struct {
	Table      string         `json:"table"`
	Items      interface{}    `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// ProfileSectionRequest creates or patches a profile block.
type ProfileSectionRequest struct {
	Key       *string `json:"key" validate:"omitempty,min=2,max=64"`
	Title     *string `json:"title" validate:"omitempty,min=1,max=255"`
	Body      *string `json:"body" validate:"omitempty,max=50000"`
	ImageURL  *string `json:"image_url" validate:"omitempty,url"`
	SortOrder *int    `json:"sort_order" validate:"omitempty,min=0"`
}

// FacilityRequest creates or patches a facility.
type FacilityRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,min=0"`
}

// ProgramRequest creates or patches a program.
type ProgramRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Category    *string `json:"category" validate:"omitempty,max=64"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

// ArticleRequest creates or patches an article.
type ArticleRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=255"`
	Slug        *string    `json:"slug" validate:"omitempty,max=160"`
	Excerpt     *string    `json:"excerpt" validate:"omitempty,max=1000"`
	Body        *string    `json:"body" validate:"omitempty,max=100000"`
	CoverURL    *string    `json:"cover_url" validate:"omitempty,url"`
	Author      *string    `json:"author" validate:"omitempty,max=128"`
	PublishedAt *time.Time `json:"published_at"`
}

// AnnouncementRequest creates or patches an announcement.
type AnnouncementRequest struct {
	Title    *string    `json:"title" validate:"omitempty,min=3,max=255"`
	Body     *string    `json:"body" validate:"omitempty,max=20000"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	IsPinned *bool      `json:"is_pinned"`
}

// DocumentationRequest creates or patches a gallery entry.
type DocumentationRequest struct {
	Title     *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Caption   *string    `json:"caption" validate:"omitempty,max=2000"`
	MediaURL  *string    `json:"media_url" validate:"omitempty,url"`
	MediaKind *string    `json:"media_kind" validate:"omitempty,oneof=image video"`
	Width     *int       `json:"width" validate:"omitempty,min=0"`
	Height    *int       `json:"height" validate:"omitempty,min=0"`
	TakenAt   *time.Time `json:"taken_at"`
	Tags      []string   `json:"tags" validate:"omitempty,max=20,dive,max=32"`
}

// PublicList is the cached envelope for public list endpoints.
type PublicList[T any] struct {
	Items      []T             `json:"items"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	CacheHit   bool            `json:"cache_hit"`
}

// MediaDescriptor tells the public site how to lazily render a gallery item.
type MediaDescriptor struct {
	Kind       string `json:"kind"`
	URL        string `json:"url"`
	Alt        string `json:"alt"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	RootMargin int    `json:"root_margin"`
	State      string `json:"state"`
}

// DocumentationItem is a public gallery entry with its lazy media descriptor.
type DocumentationItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Caption   string          `json:"caption"`
	Tags      []string        `json:"tags"`
	TakenAt   *time.Time      `json:"taken_at"`
	CreatedAt time.Time       `json:"created_at"`
	Media     MediaDescriptor `json:"media"`
}

// ArticleSummary omits the article body for list views.
type ArticleSummary struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	CoverURL    string     `json:"cover_url"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"published_at"`
}

// NewArticleSummary converts an article model into its list shape.
func NewArticleSummary(article models.Article) ArticleSummary {
	return ArticleSummary{
		ID:          article.ID,
		Slug:        article.Slug,
		Title:       article.Title,
		Excerpt:     article.Excerpt,
		CoverURL:    article.CoverURL,
		Author:      article.Author,
		PublishedAt: article.PublishedAt,
	}
}
