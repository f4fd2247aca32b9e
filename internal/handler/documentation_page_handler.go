package handler

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/lazymedia"
	"github.com/noah-isme/wakaf-cms-api/internal/service"
)

var documentationPage = template.Must(template.New("dokumentasi").Parse(`<!doctype html>
<html lang="id">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main class="gallery" data-root-margin="{{.RootMargin}}">
<h1>{{.Title}}</h1>
{{range .Figures}}<figure class="gallery__item" id="dok-{{.ID}}">{{.Media}}<figcaption>{{.Caption}}</figcaption></figure>
{{else}}<p class="gallery__empty">Belum ada dokumentasi.</p>
{{end}}
<nav class="gallery__pages">{{if .Prev}}<a rel="prev" href="?page={{.Prev}}">Sebelumnya</a>{{end}}{{if .Next}}<a rel="next" href="?page={{.Next}}">Berikutnya</a>{{end}}</nav>
</main>
</body>
</html>
`))

type documentationFigure struct {
	ID      string
	Media   template.HTML
	Caption string
}

type documentationView struct {
	Title      string
	RootMargin int
	Figures    []documentationFigure
	Prev       int
	Next       int
}

// DocumentationPageHandler renders the public gallery page. Every item starts as an idle lazy
// media placeholder; the browser swaps in the resource once it nears the viewport.
type DocumentationPageHandler struct {
	service service.PublicContentService
	logger  zerolog.Logger
}

// NewDocumentationPageHandler constructs the handler.
func NewDocumentationPageHandler(service service.PublicContentService, logger zerolog.Logger) *DocumentationPageHandler {
	return &DocumentationPageHandler{
		service: service,
		logger:  logger.With().Str("component", "documentation_page_handler").Logger(),
	}
}

// Register attaches the page route.
func (h *DocumentationPageHandler) Register(router fiber.Router) {
	router.Get("/dokumentasi", h.page)
}

func (h *DocumentationPageHandler) page(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil || page < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid page")
	}

	list, err := h.service.Documentation(c.UserContext(), page, 0)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load documentation page")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load documentation")
	}

	view := documentationView{Title: "Dokumentasi", Figures: make([]documentationFigure, 0, len(list.Items))}
	for _, item := range list.Items {
		view.RootMargin = item.Media.RootMargin
		markup, err := renderDocumentationMedia(item)
		if err != nil {
			requestLogger(h.logger, c).Error().Err(err).Str("documentation_id", item.ID).Msg("failed to render media")
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render documentation")
		}
		view.Figures = append(view.Figures, documentationFigure{ID: item.ID, Media: markup, Caption: item.Caption})
	}
	if list.Pagination != nil {
		if list.Pagination.Page > 1 {
			view.Prev = list.Pagination.Page - 1
		}
		if list.Pagination.Page < list.Pagination.TotalPages {
			view.Next = list.Pagination.Page + 1
		}
	}

	var buf bytes.Buffer
	if err := documentationPage.Execute(&buf, view); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to render documentation page")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render documentation")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// renderDocumentationMedia renders the idle lazy media tree of one item. The media is never
// mounted on the server, so no resource element is emitted.
func renderDocumentationMedia(item dto.DocumentationItem) (template.HTML, error) {
	media := lazymedia.New(lazymedia.ParseKind(item.Media.Kind), lazymedia.Source{
		URL:    item.Media.URL,
		Alt:    item.Media.Alt,
		Width:  item.Media.Width,
		Height: item.Media.Height,
	}, lazymedia.Rect{}, nil)
	return lazymedia.RenderHTML(media.Render())
}
