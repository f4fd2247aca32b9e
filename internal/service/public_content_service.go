package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/lazymedia"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/observability"
	"github.com/noah-isme/wakaf-cms-api/internal/repository"
)

// PublicContentService serves the read-only public site.
type PublicContentService interface {
	ContentCacheInvalidator
	Profile(ctx context.Context) (dto.PublicList[models.ProfileSection], error)
	Facilities(ctx context.Context) (dto.PublicList[models.Facility], error)
	Programs(ctx context.Context) (dto.PublicList[models.Program], error)
	Articles(ctx context.Context, page, pageSize int) (dto.PublicList[dto.ArticleSummary], error)
	ArticleBySlug(ctx context.Context, slug string) (models.Article, error)
	Announcements(ctx context.Context) (dto.PublicList[models.Announcement], error)
	Documentation(ctx context.Context, page, pageSize int) (dto.PublicList[dto.DocumentationItem], error)
}

// PublicContentOptions tunes caching and the gallery.
type PublicContentOptions struct {
	CacheTTL        time.Duration
	GalleryPageSize int
	RootMargin      int
}

type publicContentService struct {
	repos      ContentRepositories
	cache      *redis.Client
	ttl        time.Duration
	pageSize   int
	rootMargin int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewPublicContentService constructs the public content service. cache may be nil.
func NewPublicContentService(repos ContentRepositories, cache *redis.Client, opts PublicContentOptions, logger zerolog.Logger) PublicContentService {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	pageSize := opts.GalleryPageSize
	if pageSize <= 0 {
		pageSize = 24
	}
	return &publicContentService{
		repos:      repos,
		cache:      cache,
		ttl:        ttl,
		pageSize:   pageSize,
		rootMargin: opts.RootMargin,
		logger:     logger.With().Str("component", "public_content_service").Logger(),
		now:        time.Now,
	}
}

func contentCacheKey(table, suffix string) string {
	return fmt.Sprintf("content:%s:%s", table, suffix)
}

// cached implements cache-aside for one key. The bool reports a cache hit.
func cached[T any](ctx context.Context, s *publicContentService, table, key string, load func() (T, error)) (T, bool, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var value T
			if unmarshalErr := json.Unmarshal(raw, &value); unmarshalErr == nil {
				observability.ContentCache().WithLabelValues(table, "hit").Inc()
				return value, true, nil
			}
		case !errors.Is(err, redis.Nil):
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read content cache")
		}
	}
	observability.ContentCache().WithLabelValues(table, "miss").Inc()

	value, err := load()
	if err != nil {
		return value, false, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(value); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("failed to store content cache")
			}
		}
	}
	return value, false, nil
}

func allRows[T any](ctx context.Context, repo repository.ContentRepository[T], scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	items, _, err := repo.List(ctx, repository.ContentQuery{Scopes: scopes})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *publicContentService) Profile(ctx context.Context) (dto.PublicList[models.ProfileSection], error) {
	items, hit, err := cached(ctx, s, TableProfile, contentCacheKey(TableProfile, "all"), func() ([]models.ProfileSection, error) {
		return allRows(ctx, s.repos.Profile)
	})
	return dto.PublicList[models.ProfileSection]{Items: items, CacheHit: hit}, err
}

func (s *publicContentService) Facilities(ctx context.Context) (dto.PublicList[models.Facility], error) {
	items, hit, err := cached(ctx, s, TableFacility, contentCacheKey(TableFacility, "all"), func() ([]models.Facility, error) {
		return allRows(ctx, s.repos.Facility)
	})
	return dto.PublicList[models.Facility]{Items: items, CacheHit: hit}, err
}

func (s *publicContentService) Programs(ctx context.Context) (dto.PublicList[models.Program], error) {
	active := func(db *gorm.DB) *gorm.DB { return db.Where("is_active = ?", true) }
	items, hit, err := cached(ctx, s, TableProgram, contentCacheKey(TableProgram, "active"), func() ([]models.Program, error) {
		return allRows(ctx, s.repos.Program, active)
	})
	return dto.PublicList[models.Program]{Items: items, CacheHit: hit}, err
}

func (s *publicContentService) Articles(ctx context.Context, page, pageSize int) (dto.PublicList[dto.ArticleSummary], error) {
	page = maxInt(page, 1)
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 10
	}
	published := func(db *gorm.DB) *gorm.DB {
		return db.Where("published_at IS NOT NULL AND published_at <= ?", s.now().UTC())
	}

	key := contentCacheKey(TableArticle, fmt.Sprintf("page:%d:%d", page, pageSize))
	list, hit, err := cached(ctx, s, TableArticle, key, func() (dto.PublicList[dto.ArticleSummary], error) {
		items, total, err := s.repos.Article.List(ctx, repository.ContentQuery{Page: page, PageSize: pageSize, Scopes: []func(*gorm.DB) *gorm.DB{published}})
		if err != nil {
			return dto.PublicList[dto.ArticleSummary]{}, err
		}
		summaries := make([]dto.ArticleSummary, 0, len(items))
		for _, article := range items {
			summaries = append(summaries, dto.NewArticleSummary(article))
		}
		meta := dto.NewPaginationMeta(page, pageSize, total)
		return dto.PublicList[dto.ArticleSummary]{Items: summaries, Pagination: &meta}, nil
	})
	list.CacheHit = hit
	return list, err
}

func (s *publicContentService) ArticleBySlug(ctx context.Context, slug string) (models.Article, error) {
	slug = slugify(slug)
	if slug == "" {
		return models.Article{}, ErrContentNotFound
	}
	article, _, err := cached(ctx, s, TableArticle, contentCacheKey(TableArticle, "slug:"+slug), func() (models.Article, error) {
		article, err := s.repos.Article.FindBy(ctx, "slug", slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return article, ErrContentNotFound
		}
		return article, err
	})
	if err != nil {
		return models.Article{}, err
	}
	if article.PublishedAt == nil || article.PublishedAt.After(s.now()) {
		return models.Article{}, ErrContentNotFound
	}
	return article, nil
}

// Announcements caches every row and filters by the activity window on each read.
func (s *publicContentService) Announcements(ctx context.Context) (dto.PublicList[models.Announcement], error) {
	items, hit, err := cached(ctx, s, TableAnnouncement, contentCacheKey(TableAnnouncement, "all"), func() ([]models.Announcement, error) {
		return allRows(ctx, s.repos.Announcement)
	})
	if err != nil {
		return dto.PublicList[models.Announcement]{}, err
	}

	now := s.now()
	active := make([]models.Announcement, 0, len(items))
	for _, item := range items {
		if item.IsActive(now) {
			active = append(active, item)
		}
	}
	return dto.PublicList[models.Announcement]{Items: active, CacheHit: hit}, nil
}

func (s *publicContentService) Documentation(ctx context.Context, page, pageSize int) (dto.PublicList[dto.DocumentationItem], error) {
	page = maxInt(page, 1)
	if pageSize <= 0 || pageSize > 100 {
		pageSize = s.pageSize
	}

	key := contentCacheKey(TableDocumentation, fmt.Sprintf("page:%d:%d", page, pageSize))
	list, hit, err := cached(ctx, s, TableDocumentation, key, func() (dto.PublicList[dto.DocumentationItem], error) {
		items, total, err := s.repos.Documentation.List(ctx, repository.ContentQuery{Page: page, PageSize: pageSize})
		if err != nil {
			return dto.PublicList[dto.DocumentationItem]{}, err
		}
		out := make([]dto.DocumentationItem, 0, len(items))
		for _, item := range items {
			out = append(out, s.documentationItem(item))
		}
		meta := dto.NewPaginationMeta(page, pageSize, total)
		return dto.PublicList[dto.DocumentationItem]{Items: out, Pagination: &meta}, nil
	})
	list.CacheHit = hit
	return list, err
}

func (s *publicContentService) documentationItem(item models.Documentation) dto.DocumentationItem {
	alt := item.Caption
	if alt == "" {
		alt = item.Title
	}
	return dto.DocumentationItem{
		ID:        item.ID,
		Title:     item.Title,
		Caption:   item.Caption,
		Tags:      item.Tags,
		TakenAt:   item.TakenAt,
		CreatedAt: item.CreatedAt,
		Media: dto.MediaDescriptor{
			Kind:       string(lazymedia.ParseKind(item.MediaKind)),
			URL:        item.MediaURL,
			Alt:        alt,
			Width:      item.Width,
			Height:     item.Height,
			RootMargin: s.rootMargin,
			State:      string(lazymedia.Idle),
		},
	}
}

// Invalidate removes every cached view of table.
func (s *publicContentService) Invalidate(ctx context.Context, table string) error {
	if s.cache == nil {
		return nil
	}
	iter := s.cache.Scan(ctx, 0, contentCacheKey(table, "*"), 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.cache.Del(ctx, keys...).Err()
}
