package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/repository"
)

const defaultAdminPageSize = 20

// ContentCacheInvalidator drops cached public views of a table.
type ContentCacheInvalidator interface {
	Invalidate(ctx context.Context, table string) error
}

// AdminContentService performs admin CRUD over the content tables. Every successful write is
// followed by an audit entry and a public cache invalidation.
type AdminContentService interface {
	Tables() []ContentTableInfo
	List(ctx context.Context, route string, req dto.ContentListRequest) (dto.ContentListResponse, error)
	Get(ctx context.Context, route, id string) (interface{}, error)
	Create(ctx context.Context, route string, body []byte) (interface{}, error)
	Update(ctx context.Context, route, id string, body []byte) (interface{}, error)
	Delete(ctx context.Context, route, id string) error
}

type adminContentService struct {
	tables   map[string]contentTable
	order    []ContentTableInfo
	activity ActivityService
	cache    ContentCacheInvalidator
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewAdminContentService constructs the admin content service. cache may be nil.
func NewAdminContentService(repos ContentRepositories, activity ActivityService, cache ContentCacheInvalidator, validate *validator.Validate, logger zerolog.Logger) AdminContentService {
	svc := &adminContentService{
		tables:   make(map[string]contentTable),
		activity: activity,
		cache:    cache,
		logger:   logger.With().Str("component", "admin_content_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/wakaf-cms-api/internal/service/admin_content"),
	}
	for _, table := range buildContentTables(repos, validate) {
		info := table.info()
		svc.tables[info.Route] = table
		svc.order = append(svc.order, info)
	}
	return svc
}

func (s *adminContentService) Tables() []ContentTableInfo {
	return append([]ContentTableInfo(nil), s.order...)
}

func (s *adminContentService) resolve(route string) (contentTable, error) {
	table, ok := s.tables[strings.ToLower(strings.TrimSpace(route))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContentTable, route)
	}
	return table, nil
}

func (s *adminContentService) List(ctx context.Context, route string, req dto.ContentListRequest) (dto.ContentListResponse, error) {
	table, err := s.resolve(route)
	if err != nil {
		return dto.ContentListResponse{}, err
	}

	page := maxInt(req.Page, 1)
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultAdminPageSize
	}

	items, total, err := table.list(ctx, repository.ContentQuery{Search: req.Search, Page: page, PageSize: pageSize})
	if err != nil {
		return dto.ContentListResponse{}, err
	}
	return dto.ContentListResponse{
		Table:      table.info().Name,
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *adminContentService) Get(ctx context.Context, route, id string) (interface{}, error) {
	table, err := s.resolve(route)
	if err != nil {
		return nil, err
	}
	return table.get(ctx, id)
}

func (s *adminContentService) Create(ctx context.Context, route string, body []byte) (interface{}, error) {
	table, err := s.resolve(route)
	if err != nil {
		return nil, err
	}
	ctx, span := s.startSpan(ctx, "content.create", table)
	defer span.End()

	mutation, err := table.create(ctx, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}

	s.afterWrite(ctx, table, models.ActivityCreate, "Tambah", mutation)
	return mutation.new, nil
}

func (s *adminContentService) Update(ctx context.Context, route, id string, body []byte) (interface{}, error) {
	table, err := s.resolve(route)
	if err != nil {
		return nil, err
	}
	ctx, span := s.startSpan(ctx, "content.update", table)
	defer span.End()
	span.SetAttributes(attribute.String("content.id", id))

	mutation, err := table.update(ctx, id, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}

	s.afterWrite(ctx, table, models.ActivityUpdate, "Update", mutation)
	return mutation.new, nil
}

func (s *adminContentService) Delete(ctx context.Context, route, id string) error {
	table, err := s.resolve(route)
	if err != nil {
		return err
	}
	ctx, span := s.startSpan(ctx, "content.delete", table)
	defer span.End()
	span.SetAttributes(attribute.String("content.id", id))

	mutation, err := table.delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}

	s.afterWrite(ctx, table, models.ActivityDelete, "Hapus", mutation)
	return nil
}

func (s *adminContentService) startSpan(ctx context.Context, name string, table contentTable) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("content.table", table.info().Name))
	return ctx, span
}

// afterWrite runs once the store accepted the mutation. Neither step can fail the request.
func (s *adminContentService) afterWrite(ctx context.Context, table contentTable, action models.ActivityAction, verb string, mutation contentMutation) {
	info := table.info()

	oldPayload, err := models.DocumentOf(mutation.old)
	if err != nil {
		s.logger.Warn().Err(err).Str("table", info.Name).Msg("failed to snapshot previous row")
	}
	newPayload, err := models.DocumentOf(mutation.new)
	if err != nil {
		s.logger.Warn().Err(err).Str("table", info.Name).Msg("failed to snapshot new row")
	}

	if s.activity != nil {
		s.activity.Record(ctx, ActivityEntry{
			Action:         action,
			TargetTable:    info.Name,
			TargetRecordID: mutation.id,
			OldPayload:     oldPayload,
			NewPayload:     newPayload,
			Description:    fmt.Sprintf("%s %s: %s", verb, info.Label, mutation.title),
		})
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, info.Name); err != nil {
			s.logger.Warn().Err(err).Str("table", info.Name).Msg("failed to invalidate public content cache")
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
