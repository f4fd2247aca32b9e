package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/handler"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/service"
)

type stubPublicService struct {
	docs     []dto.DocumentationItem
	lastPage int
}

func (s *stubPublicService) Invalidate(context.Context, string) error { return nil }

func (s *stubPublicService) Profile(context.Context) (dto.PublicList[models.ProfileSection], error) {
	return dto.PublicList[models.ProfileSection]{Items: []models.ProfileSection{{Key: "sejarah", Title: "Sejarah"}}}, nil
}

func (s *stubPublicService) Facilities(context.Context) (dto.PublicList[models.Facility], error) {
	return dto.PublicList[models.Facility]{Items: []models.Facility{{Name: "Masjid"}}, CacheHit: true}, nil
}

func (s *stubPublicService) Programs(context.Context) (dto.PublicList[models.Program], error) {
	return dto.PublicList[models.Program]{Items: []models.Program{}}, nil
}

func (s *stubPublicService) Articles(_ context.Context, page, _ int) (dto.PublicList[dto.ArticleSummary], error) {
	s.lastPage = page
	return dto.PublicList[dto.ArticleSummary]{Items: []dto.ArticleSummary{{Slug: "kabar"}}}, nil
}

func (s *stubPublicService) ArticleBySlug(_ context.Context, slug string) (models.Article, error) {
	if slug != "kabar" {
		return models.Article{}, service.ErrContentNotFound
	}
	return models.Article{Slug: "kabar", Title: "Kabar"}, nil
}

func (s *stubPublicService) Announcements(context.Context) (dto.PublicList[models.Announcement], error) {
	return dto.PublicList[models.Announcement]{Items: []models.Announcement{}}, nil
}

func (s *stubPublicService) Documentation(_ context.Context, page, _ int) (dto.PublicList[dto.DocumentationItem], error) {
	s.lastPage = page
	if page <= 0 {
		page = 1
	}
	meta := dto.NewPaginationMeta(page, 2, int64(len(s.docs)+2))
	return dto.PublicList[dto.DocumentationItem]{Items: s.docs, Pagination: &meta}, nil
}

func publicApp(svc *stubPublicService) *fiber.App {
	app := fiber.New()
	handler.NewPublicContentHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/public"))
	handler.NewDocumentationPageHandler(svc, zerolog.Nop()).Register(app)
	return app
}

func TestPublicContentEndpoints(t *testing.T) {
	svc := &stubPublicService{}
	app := publicApp(svc)

	resp := send(t, app, http.MethodGet, "/api/v1/public/facilities", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "public, max-age=60", resp.Header.Get("Cache-Control"))
	var facilities envelope[dto.PublicList[models.Facility]]
	decodeResponse(t, resp, &facilities)
	require.True(t, facilities.Data.CacheHit)
	require.Equal(t, "Masjid", facilities.Data.Items[0].Name)

	resp = send(t, app, http.MethodGet, "/api/v1/public/articles?page=3", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 3, svc.lastPage)

	resp = send(t, app, http.MethodGet, "/api/v1/public/articles/kabar", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/v1/public/articles/hilang", "")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/v1/public/documentation?page=x", "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDocumentationPageRendersIdlePlaceholders(t *testing.T) {
	svc := &stubPublicService{docs: []dto.DocumentationItem{
		{ID: "d1", Title: "Pengajian", Caption: "Pengajian <rutin>", Media: dto.MediaDescriptor{Kind: "image", URL: "https://cdn.example.org/a.jpg", Alt: "Pengajian", Width: 800, Height: 600, RootMargin: 200, State: "idle"}},
		{ID: "d2", Title: "Video", Media: dto.MediaDescriptor{Kind: "video", URL: "https://cdn.example.org/b.mp4", Alt: "Video", RootMargin: 200, State: "idle"}},
	}}
	app := publicApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dokumentasi", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(raw)

	require.Contains(t, page, `data-root-margin="200"`)
	require.Equal(t, 2, strings.Count(page, "lazy-media__placeholder"))
	require.Contains(t, page, `data-lazy-src="https://cdn.example.org/a.jpg"`)
	require.NotContains(t, page, "<img")
	require.NotContains(t, page, "<video")
	require.Contains(t, page, "Pengajian &lt;rutin&gt;")
	require.Contains(t, page, `rel="next" href="?page=2"`)
}
