package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/noah-isme/wakaf-cms-api/internal/repository"
)

var (
	// ErrContentNotFound indicates the requested row does not exist.
	ErrContentNotFound = errors.New("content not found")
	// ErrContentInvalid indicates the payload could not be turned into a row.
	ErrContentInvalid = errors.New("invalid content payload")
	// ErrUnknownContentTable indicates the route does not name a managed table.
	ErrUnknownContentTable = errors.New("unknown content table")
)

// ContentTableInfo describes one managed table.
type ContentTableInfo struct {
	Route string `json:"route"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// contentMutation is the outcome of a successful store write.
type contentMutation struct {
	id    string
	title string
	old   interface{}
	new   interface{}
}

// contentTable erases the row type so the admin service can route by table name.
type contentTable interface {
	info() ContentTableInfo
	list(ctx context.Context, query repository.ContentQuery) (interface{}, int64, error)
	get(ctx context.Context, id string) (interface{}, error)
	create(ctx context.Context, body []byte) (contentMutation, error)
	update(ctx context.Context, id string, body []byte) (contentMutation, error)
	delete(ctx context.Context, id string) (contentMutation, error)
}

// tableSpec binds a row type T and its request type R.
type tableSpec[T any, R any] struct {
	meta         ContentTableInfo
	repo         repository.ContentRepository[T]
	validate     *validator.Validate
	build        func(req R) (T, error)
	apply        func(item *T, req R) error
	title        func(item T) string
	id           func(item T) string
	beforeCreate func(ctx context.Context, item *T) error
}

func (t *tableSpec[T, R]) info() ContentTableInfo {
	return t.meta
}

func (t *tableSpec[T, R]) list(ctx context.Context, query repository.ContentQuery) (interface{}, int64, error) {
	items, total, err := t.repo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []T{}
	}
	return items, total, nil
}

func (t *tableSpec[T, R]) get(ctx context.Context, id string) (interface{}, error) {
	item, err := t.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (t *tableSpec[T, R]) find(ctx context.Context, id string) (T, error) {
	item, err := t.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, ErrContentNotFound
	}
	return item, err
}

func (t *tableSpec[T, R]) decode(body []byte) (R, error) {
	var req R
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrContentInvalid, err)
	}
	if t.validate != nil {
		if err := t.validate.Struct(req); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (t *tableSpec[T, R]) create(ctx context.Context, body []byte) (contentMutation, error) {
	req, err := t.decode(body)
	if err != nil {
		return contentMutation{}, err
	}
	item, err := t.build(req)
	if err != nil {
		return contentMutation{}, err
	}
	if t.beforeCreate != nil {
		if err := t.beforeCreate(ctx, &item); err != nil {
			return contentMutation{}, err
		}
	}
	if err := t.repo.Create(ctx, &item); err != nil {
		return contentMutation{}, err
	}
	return contentMutation{id: t.id(item), title: t.title(item), new: item}, nil
}

func (t *tableSpec[T, R]) update(ctx context.Context, id string, body []byte) (contentMutation, error) {
	req, err := t.decode(body)
	if err != nil {
		return contentMutation{}, err
	}
	current, err := t.find(ctx, id)
	if err != nil {
		return contentMutation{}, err
	}

	previous := current
	if err := t.apply(&current, req); err != nil {
		return contentMutation{}, err
	}
	if err := t.repo.Update(ctx, &current); err != nil {
		return contentMutation{}, err
	}
	return contentMutation{id: t.id(current), title: t.title(current), old: previous, new: current}, nil
}

func (t *tableSpec[T, R]) delete(ctx context.Context, id string) (contentMutation, error) {
	current, err := t.find(ctx, id)
	if err != nil {
		return contentMutation{}, err
	}
	if err := t.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contentMutation{}, ErrContentNotFound
		}
		return contentMutation{}, err
	}
	return contentMutation{id: t.id(current), title: t.title(current), old: current}, nil
}
