package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// ContentQuery narrows list queries over a content table.
type ContentQuery struct {
	Search   string
	Page     int
	PageSize int
	// Scopes are trusted filters supplied by services, never by request input.
	Scopes []func(*gorm.DB) *gorm.DB
}

// ContentRepository is the table oriented CRUD contract shared by every content table.
type ContentRepository[T any] interface {
	List(ctx context.Context, query ContentQuery) ([]T, int64, error)
	GetByID(ctx context.Context, id string) (T, error)
	FindBy(ctx context.Context, column string, value interface{}) (T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, id string) error
}

// ContentRepositoryOptions configures ordering and search for one table.
type ContentRepositoryOptions struct {
	SearchColumns []string
	OrderBy       string
}

type contentRepository[T any] struct {
	db      *gorm.DB
	search  []string
	orderBy string
}

// NewContentRepository constructs a gorm backed repository for the model T.
func NewContentRepository[T any](db *gorm.DB, opts ContentRepositoryOptions) ContentRepository[T] {
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	return &contentRepository[T]{
		db:      db,
		search:  append([]string(nil), opts.SearchColumns...),
		orderBy: orderBy,
	}
}

func (r *contentRepository[T]) List(ctx context.Context, q ContentQuery) ([]T, int64, error) {
	var model T
	query := r.db.WithContext(ctx).Model(&model)
	if len(q.Scopes) > 0 {
		query = query.Scopes(q.Scopes...)
	}

	if search := strings.TrimSpace(q.Search); search != "" && len(r.search) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		clauses := make([]string, 0, len(r.search))
		args := make([]interface{}, 0, len(r.search))
		for _, column := range r.search {
			clauses = append(clauses, "LOWER("+column+") LIKE ?")
			args = append(args, pattern)
		}
		query = query.Where(strings.Join(clauses, " OR "), args...)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.PageSize > 0 {
		page := q.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * q.PageSize).Limit(q.PageSize)
	}

	var items []T
	if err := query.Order(r.orderBy).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *contentRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var item T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	return item, err
}

func (r *contentRepository[T]) FindBy(ctx context.Context, column string, value interface{}) (T, error) {
	var item T
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&item).Error
	return item, err
}

func (r *contentRepository[T]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *contentRepository[T]) Update(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *contentRepository[T]) Delete(ctx context.Context, id string) error {
	var model T
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
