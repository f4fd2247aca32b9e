package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentBase carries the identifier and timestamps shared by every content table.
type ContentBase struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an identifier when the caller did not.
func (b *ContentBase) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// ProfileSection is one block of the organisation profile page (history, vision, mission...).
type ProfileSection struct {
	ContentBase
	Key       string `gorm:"size:64;uniqueIndex;not null" json:"key"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Body      string `gorm:"type:text" json:"body"`
	ImageURL  string `gorm:"size:512" json:"image_url"`
	SortOrder int    `gorm:"index" json:"sort_order"`
}

// Facility describes a physical asset managed by the endowment.
type Facility struct {
	ContentBase
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:512" json:"image_url"`
	SortOrder   int    `gorm:"index" json:"sort_order"`
}

// Program is an activity or service run by the organisation.
type Program struct {
	ContentBase
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:64;index" json:"category"`
	ImageURL    string `gorm:"size:512" json:"image_url"`
	IsActive    bool   `gorm:"index" json:"is_active"`
}

// Article is a long form news or blog post.
type Article struct {
	ContentBase
	Slug        string     `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Excerpt     string     `gorm:"type:text" json:"excerpt"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	CoverURL    string     `gorm:"size:512" json:"cover_url"`
	Author      string     `gorm:"size:128" json:"author"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
}

// Announcement represents a time boxed notice shown on the public site.
type Announcement struct {
	ContentBase
	Title    string     `gorm:"size:255;not null" json:"title"`
	Body     string     `gorm:"type:text;not null" json:"body"`
	StartsAt time.Time  `gorm:"index" json:"starts_at"`
	EndsAt   *time.Time `gorm:"index" json:"ends_at"`
	IsPinned bool       `gorm:"index" json:"is_pinned"`
}

// IsActive reports whether the announcement should be visible at the given instant.
func (a Announcement) IsActive(now time.Time) bool {
	if a.IsPinned {
		return true
	}
	if a.StartsAt.After(now) {
		return false
	}
	return a.EndsAt == nil || !a.EndsAt.Before(now)
}

// Media kinds accepted for documentation entries.
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Documentation is one entry of the photo/video documentation gallery.
type Documentation struct {
	ContentBase
	Title     string     `gorm:"size:255;not null" json:"title"`
	Caption   string     `gorm:"type:text" json:"caption"`
	MediaURL  string     `gorm:"size:512;not null" json:"media_url"`
	MediaKind string     `gorm:"size:16;not null;default:image" json:"media_kind"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	TakenAt   *time.Time `json:"taken_at"`
	TagsRaw   string     `gorm:"column:tags;type:text" json:"-"`
	Tags      []string   `gorm:"-" json:"tags"`
}

// TableName keeps the singular table name used by the public site.
func (Documentation) TableName() string {
	return "documentation"
}

// BeforeSave normalises tag data before persisting.
func (d *Documentation) BeforeSave(tx *gorm.DB) error {
	d.TagsRaw = encodeTags(d.Tags)
	return nil
}

// AfterFind hydrates the tag list after retrieval.
func (d *Documentation) AfterFind(tx *gorm.DB) error {
	d.Tags = decodeTags(d.TagsRaw)
	return nil
}

func encodeTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(strings.ToLower(tag))
		if trimmed == "" || strings.Contains(trimmed, "|") {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "|" + strings.Join(cleaned, "|") + "|"
}

func decodeTags(raw string) []string {
	raw = strings.Trim(raw, "|")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
