package handler_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/handler"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/service"
)

type stubContentService struct {
	lastRoute string
	lastID    string
	lastBody  string
	lastList  dto.ContentListRequest
	err       error
}

func (s *stubContentService) Tables() []service.ContentTableInfo {
	return []service.ContentTableInfo{
		{Route: "facilities", Name: "facility", Label: "fasilitas"},
		{Route: "articles", Name: "article", Label: "artikel"},
	}
}

func (s *stubContentService) List(_ context.Context, route string, req dto.ContentListRequest) (dto.ContentListResponse, error) {
	s.lastRoute, s.lastList = route, req
	if s.err != nil {
		return dto.ContentListResponse{}, s.err
	}
	return dto.ContentListResponse{
		Table:      "facility",
		Items:      []models.Facility{{Name: "Masjid"}},
		Pagination: dto.NewPaginationMeta(1, 20, 1),
	}, nil
}

func (s *stubContentService) Get(_ context.Context, route, id string) (interface{}, error) {
	s.lastRoute, s.lastID = route, id
	return models.Facility{Name: "Masjid"}, s.err
}

func (s *stubContentService) Create(_ context.Context, route string, body []byte) (interface{}, error) {
	s.lastRoute, s.lastBody = route, string(body)
	return models.Facility{Name: "Masjid"}, s.err
}

func (s *stubContentService) Update(_ context.Context, route, id string, body []byte) (interface{}, error) {
	s.lastRoute, s.lastID, s.lastBody = route, id, string(body)
	return models.Facility{Name: "Masjid Baru"}, s.err
}

func (s *stubContentService) Delete(_ context.Context, route, id string) error {
	s.lastRoute, s.lastID = route, id
	return s.err
}

func contentApp(svc *stubContentService) *fiber.App {
	app := fiber.New()
	handler.NewAdminContentHandler(svc, zerolog.Nop()).Register(app.Group("/api/admin"))
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAdminContentHandlerRoutesPerTable(t *testing.T) {
	svc := &stubContentService{}
	app := contentApp(svc)

	resp := send(t, app, http.MethodGet, "/api/admin/facilities?page=2&page_size=500&search=masjid", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "facilities", svc.lastRoute)
	require.Equal(t, dto.ContentListRequest{Page: 2, PageSize: 100, Search: "masjid"}, svc.lastList)

	var list envelope[[]models.Facility]
	decodeResponse(t, resp, &list)
	require.Len(t, list.Data, 1)
	require.NotEmpty(t, list.Meta)

	resp = send(t, app, http.MethodPost, "/api/admin/articles", `{"title":"Kabar"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "articles", svc.lastRoute)
	require.JSONEq(t, `{"title":"Kabar"}`, svc.lastBody)

	resp = send(t, app, http.MethodPatch, "/api/admin/facilities/fac-1", `{"name":"Masjid Baru"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "fac-1", svc.lastID)

	resp = send(t, app, http.MethodDelete, "/api/admin/facilities/fac-1", "")
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/admin/donations", "")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminContentHandlerErrorMapping(t *testing.T) {
	validationErr := validator.New().Struct(struct {
		Name string `validate:"required"`
	}{})

	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: name is required", service.ErrContentInvalid), fiber.StatusBadRequest},
		{service.ErrContentNotFound, fiber.StatusNotFound},
		{validationErr, fiber.StatusUnprocessableEntity},
		{errors.New("db down"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		app := contentApp(&stubContentService{err: tc.err})
		resp := send(t, app, http.MethodPost, "/api/admin/facilities", `{}`)
		require.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
	}
}

func TestAdminContentHandlerListsTables(t *testing.T) {
	app := contentApp(&stubContentService{})
	resp := send(t, app, http.MethodGet, "/api/admin/tables", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body envelope[[]service.ContentTableInfo]
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 2)
}
