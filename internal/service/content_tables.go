package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/repository"
)

const maxSlugLength = 150

// Audit table names of the managed content.
const (
	TableProfile       = "profile"
	TableFacility      = "facility"
	TableProgram       = "program"
	TableArticle       = "article"
	TableAnnouncement  = "announcement"
	TableDocumentation = "documentation"
)

// ContentRepositories groups the repositories of every content table.
type ContentRepositories struct {
	Profile       repository.ContentRepository[models.ProfileSection]
	Facility      repository.ContentRepository[models.Facility]
	Program       repository.ContentRepository[models.Program]
	Article       repository.ContentRepository[models.Article]
	Announcement  repository.ContentRepository[models.Announcement]
	Documentation repository.ContentRepository[models.Documentation]
}

// NewContentRepositories builds gorm repositories with the ordering used by the site.
func NewContentRepositories(db *gorm.DB) ContentRepositories {
	return ContentRepositories{
		Profile: repository.NewContentRepository[models.ProfileSection](db, repository.ContentRepositoryOptions{
			SearchColumns: []string{"key", "title"},
			OrderBy:       "sort_order ASC, created_at ASC",
		}),
		Facility: repository.NewContentRepository[models.Facility](db, repository.ContentRepositoryOptions{
			SearchColumns: []string{"name", "description"},
			OrderBy:       "sort_order ASC, created_at DESC",
		}),
		Program: repository.NewContentRepository[models.Program](db, repository.ContentRepositoryOptions{
			SearchColumns: []string{"name", "category", "description"},
		}),
		Article: repository.NewContentRepository[models.Article](db, repository.ContentRepositoryOptions{
			SearchColumns: []string{"title", "excerpt"},
			OrderBy:       "published_at DESC, created_at DESC",
		}),
		Announcement: repository.NewContentRepository[models.Announcement](db, repository.ContentRepositoryOptions{
			SearchColumns: []string{"title", "body"},
			OrderBy:       "is_pinned DESC, starts_at DESC",
		}),
		Documentation: repository.NewContentRepository[models.Documentation](db, repository.ContentRepositoryOptions{
			SearchColumns: []string{"title", "caption", "tags"},
			OrderBy:       "taken_at DESC, created_at DESC",
		}),
	}
}

var htmlPolicy = bluemonday.UGCPolicy()

func buildContentTables(repos ContentRepositories, validate *validator.Validate) []contentTable {
	return []contentTable{
		&tableSpec[models.ProfileSection, dto.ProfileSectionRequest]{
			meta:     ContentTableInfo{Route: "profile", Name: TableProfile, Label: "profil"},
			repo:     repos.Profile,
			validate: validate,
			build:    buildProfileSection,
			apply:    applyProfileSection,
			title:    func(p models.ProfileSection) string { return p.Title },
			id:       func(p models.ProfileSection) string { return p.ID },
		},
		&tableSpec[models.Facility, dto.FacilityRequest]{
			meta:     ContentTableInfo{Route: "facilities", Name: TableFacility, Label: "fasilitas"},
			repo:     repos.Facility,
			validate: validate,
			build:    buildFacility,
			apply:    applyFacility,
			title:    func(f models.Facility) string { return f.Name },
			id:       func(f models.Facility) string { return f.ID },
		},
		&tableSpec[models.Program, dto.ProgramRequest]{
			meta:     ContentTableInfo{Route: "programs", Name: TableProgram, Label: "program"},
			repo:     repos.Program,
			validate: validate,
			build:    buildProgram,
			apply:    applyProgram,
			title:    func(p models.Program) string { return p.Name },
			id:       func(p models.Program) string { return p.ID },
		},
		&tableSpec[models.Article, dto.ArticleRequest]{
			meta:         ContentTableInfo{Route: "articles", Name: TableArticle, Label: "artikel"},
			repo:         repos.Article,
			validate:     validate,
			build:        buildArticle,
			apply:        applyArticle,
			title:        func(a models.Article) string { return a.Title },
			id:           func(a models.Article) string { return a.ID },
			beforeCreate: uniqueSlug(repos.Article),
		},
		&tableSpec[models.Announcement, dto.AnnouncementRequest]{
			meta:     ContentTableInfo{Route: "announcements", Name: TableAnnouncement, Label: "pengumuman"},
			repo:     repos.Announcement,
			validate: validate,
			build:    buildAnnouncement,
			apply:    applyAnnouncement,
			title:    func(a models.Announcement) string { return a.Title },
			id:       func(a models.Announcement) string { return a.ID },
		},
		&tableSpec[models.Documentation, dto.DocumentationRequest]{
			meta:     ContentTableInfo{Route: "documentation", Name: TableDocumentation, Label: "dokumentasi"},
			repo:     repos.Documentation,
			validate: validate,
			build:    buildDocumentation,
			apply:    applyDocumentation,
			title:    func(d models.Documentation) string { return d.Title },
			id:       func(d models.Documentation) string { return d.ID },
		},
	}
}

func requiredText(value *string, field string) (string, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "", fmt.Errorf("%w: %s is required", ErrContentInvalid, field)
	}
	return strings.TrimSpace(*value), nil
}

func text(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func sanitizeHTML(value string) string {
	return strings.TrimSpace(htmlPolicy.Sanitize(value))
}

func buildProfileSection(req dto.ProfileSectionRequest) (models.ProfileSection, error) {
	key, err := requiredText(req.Key, "key")
	if err != nil {
		return models.ProfileSection{}, err
	}
	title, err := requiredText(req.Title, "title")
	if err != nil {
		return models.ProfileSection{}, err
	}
	section := models.ProfileSection{Key: slugify(key), Title: title}
	if err := applyProfileSection(&section, dto.ProfileSectionRequest{Body: req.Body, ImageURL: req.ImageURL, SortOrder: req.SortOrder}); err != nil {
		return models.ProfileSection{}, err
	}
	return section, nil
}

func applyProfileSection(section *models.ProfileSection, req dto.ProfileSectionRequest) error {
	if req.Key != nil {
		key := slugify(*req.Key)
		if key == "" {
			return fmt.Errorf("%w: key must not be empty", ErrContentInvalid)
		}
		section.Key = key
	}
	if req.Title != nil {
		title, err := requiredText(req.Title, "title")
		if err != nil {
			return err
		}
		section.Title = title
	}
	if req.Body != nil {
		section.Body = sanitizeHTML(*req.Body)
	}
	if req.ImageURL != nil {
		section.ImageURL = text(req.ImageURL)
	}
	if req.SortOrder != nil {
		section.SortOrder = *req.SortOrder
	}
	return nil
}

func buildFacility(req dto.FacilityRequest) (models.Facility, error) {
	name, err := requiredText(req.Name, "name")
	if err != nil {
		return models.Facility{}, err
	}
	facility := models.Facility{Name: name}
	if err := applyFacility(&facility, dto.FacilityRequest{Description: req.Description, ImageURL: req.ImageURL, SortOrder: req.SortOrder}); err != nil {
		return models.Facility{}, err
	}
	return facility, nil
}

func applyFacility(facility *models.Facility, req dto.FacilityRequest) error {
	if req.Name != nil {
		name, err := requiredText(req.Name, "name")
		if err != nil {
			return err
		}
		facility.Name = name
	}
	if req.Description != nil {
		facility.Description = text(req.Description)
	}
	if req.ImageURL != nil {
		facility.ImageURL = text(req.ImageURL)
	}
	if req.SortOrder != nil {
		facility.SortOrder = *req.SortOrder
	}
	return nil
}

func buildProgram(req dto.ProgramRequest) (models.Program, error) {
	name, err := requiredText(req.Name, "name")
	if err != nil {
		return models.Program{}, err
	}
	program := models.Program{Name: name, IsActive: true}
	if err := applyProgram(&program, dto.ProgramRequest{Description: req.Description, Category: req.Category, ImageURL: req.ImageURL, IsActive: req.IsActive}); err != nil {
		return models.Program{}, err
	}
	return program, nil
}

func applyProgram(program *models.Program, req dto.ProgramRequest) error {
	if req.Name != nil {
		name, err := requiredText(req.Name, "name")
		if err != nil {
			return err
		}
		program.Name = name
	}
	if req.Description != nil {
		program.Description = text(req.Description)
	}
	if req.Category != nil {
		program.Category = strings.ToLower(text(req.Category))
	}
	if req.ImageURL != nil {
		program.ImageURL = text(req.ImageURL)
	}
	if req.IsActive != nil {
		program.IsActive = *req.IsActive
	}
	return nil
}

func buildArticle(req dto.ArticleRequest) (models.Article, error) {
	title, err := requiredText(req.Title, "title")
	if err != nil {
		return models.Article{}, err
	}
	body, err := requiredText(req.Body, "body")
	if err != nil {
		return models.Article{}, err
	}
	article := models.Article{Title: title, Body: sanitizeHTML(body)}
	if err := applyArticle(&article, dto.ArticleRequest{Slug: req.Slug, Excerpt: req.Excerpt, CoverURL: req.CoverURL, Author: req.Author, PublishedAt: req.PublishedAt}); err != nil {
		return models.Article{}, err
	}
	if article.Slug == "" {
		article.Slug = slugify(title)
	}
	return article, nil
}

func applyArticle(article *models.Article, req dto.ArticleRequest) error {
	if req.Title != nil {
		title, err := requiredText(req.Title, "title")
		if err != nil {
			return err
		}
		article.Title = title
	}
	if req.Slug != nil {
		if custom := slugify(*req.Slug); custom != "" {
			article.Slug = custom
		}
	}
	if req.Body != nil {
		body := sanitizeHTML(*req.Body)
		if body == "" {
			return fmt.Errorf("%w: body is required", ErrContentInvalid)
		}
		article.Body = body
	}
	if req.Excerpt != nil {
		article.Excerpt = text(req.Excerpt)
	}
	if req.CoverURL != nil {
		article.CoverURL = text(req.CoverURL)
	}
	if req.Author != nil {
		article.Author = text(req.Author)
	}
	if req.PublishedAt != nil {
		published := req.PublishedAt.UTC()
		article.PublishedAt = &published
	}
	return nil
}

// uniqueSlug suffixes the article slug until it no longer collides.
func uniqueSlug(repo repository.ContentRepository[models.Article]) func(ctx context.Context, article *models.Article) error {
	return func(ctx context.Context, article *models.Article) error {
		base := article.Slug
		if base == "" {
			base = "artikel"
		}
		candidate := base
		for i := 2; i < 100; i++ {
			_, err := repo.FindBy(ctx, "slug", candidate)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				article.Slug = candidate
				return nil
			}
			if err != nil {
				return err
			}
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		return fmt.Errorf("%w: slug %q is exhausted", ErrContentInvalid, base)
	}
}

func buildAnnouncement(req dto.AnnouncementRequest) (models.Announcement, error) {
	title, err := requiredText(req.Title, "title")
	if err != nil {
		return models.Announcement{}, err
	}
	body, err := requiredText(req.Body, "body")
	if err != nil {
		return models.Announcement{}, err
	}
	announcement := models.Announcement{Title: title, Body: sanitizeHTML(body), StartsAt: time.Now().UTC()}
	if err := applyAnnouncement(&announcement, dto.AnnouncementRequest{StartsAt: req.StartsAt, EndsAt: req.EndsAt, IsPinned: req.IsPinned}); err != nil {
		return models.Announcement{}, err
	}
	return announcement, nil
}

func applyAnnouncement(announcement *models.Announcement, req dto.AnnouncementRequest) error {
	if req.Title != nil {
		title, err := requiredText(req.Title, "title")
		if err != nil {
			return err
		}
		announcement.Title = title
	}
	if req.Body != nil {
		announcement.Body = sanitizeHTML(*req.Body)
	}
	if req.StartsAt != nil {
		announcement.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		ends := req.EndsAt.UTC()
		announcement.EndsAt = &ends
	}
	if req.IsPinned != nil {
		announcement.IsPinned = *req.IsPinned
	}
	if announcement.EndsAt != nil && announcement.EndsAt.Before(announcement.StartsAt) {
		return fmt.Errorf("%w: ends_at must not be before starts_at", ErrContentInvalid)
	}
	return nil
}

func buildDocumentation(req dto.DocumentationRequest) (models.Documentation, error) {
	title, err := requiredText(req.Title, "title")
	if err != nil {
		return models.Documentation{}, err
	}
	mediaURL, err := requiredText(req.MediaURL, "media_url")
	if err != nil {
		return models.Documentation{}, err
	}
	item := models.Documentation{Title: title, MediaURL: mediaURL, MediaKind: inferMediaKind(mediaURL)}
	if err := applyDocumentation(&item, dto.DocumentationRequest{Caption: req.Caption, MediaKind: req.MediaKind, Width: req.Width, Height: req.Height, TakenAt: req.TakenAt, Tags: req.Tags}); err != nil {
		return models.Documentation{}, err
	}
	return item, nil
}

func applyDocumentation(item *models.Documentation, req dto.DocumentationRequest) error {
	if req.Title != nil {
		title, err := requiredText(req.Title, "title")
		if err != nil {
			return err
		}
		item.Title = title
	}
	if req.MediaURL != nil {
		mediaURL, err := requiredText(req.MediaURL, "media_url")
		if err != nil {
			return err
		}
		item.MediaURL = mediaURL
		if req.MediaKind == nil {
			item.MediaKind = inferMediaKind(mediaURL)
		}
	}
	if req.MediaKind != nil {
		item.MediaKind = strings.ToLower(text(req.MediaKind))
	}
	if req.Caption != nil {
		item.Caption = text(req.Caption)
	}
	if req.Width != nil {
		item.Width = *req.Width
	}
	if req.Height != nil {
		item.Height = *req.Height
	}
	if req.TakenAt != nil {
		taken := req.TakenAt.UTC()
		item.TakenAt = &taken
	}
	if req.Tags != nil {
		item.Tags = append([]string(nil), req.Tags...)
	}
	return nil
}

func inferMediaKind(mediaURL string) string {
	switch strings.ToLower(path.Ext(strings.SplitN(mediaURL, "?", 2)[0])) {
	case ".mp4", ".webm", ".mov":
		return models.MediaKindVideo
	default:
		return models.MediaKindImage
	}
}

// slugify transliterates to ASCII with Indonesian symbol names ("&" becomes "dan").
func slugify(value string) string {
	out := slug.MakeLang(value, "id")
	if len(out) > maxSlugLength {
		out = strings.Trim(out[:maxSlugLength], "-")
	}
	return out
}
