// Package service layers CRUD use cases over a repository: pagination,
// patch updates and uniform error context.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/repository"
)

// DefaultLimit is the page size used when the caller passes a non-positive
// limit.
const DefaultLimit = 10

// CRUDService exposes the create, read, update and delete operations of one
// entity type.
type CRUDService[T any] struct {
	repo   repository.Repository[T]
	logger *slog.Logger
}

// New builds a service over repo.
func New[T any](repo repository.Repository[T], logger *slog.Logger) (*CRUDService[T], error) {
	if repo == nil {
		return nil, fmt.Errorf("service: repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CRUDService[T]{repo: repo, logger: logger}, nil
}

// GetItems returns the window [skip, skip+limit) of all items. The window is
// cut in memory after fetching everything; negative skips start at zero and
// windows past the end are empty.
func (s *CRUDService[T]) GetItems(ctx context.Context, skip, limit int) ([]T, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, &Error{Op: OpList, Err: err}
	}
	return paginate(items, skip, limit), nil
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) || end < skip {
		end = len(items)
	}
	return items[skip:end]
}

// GetItem returns the item with id, or nil when there is none.
func (s *CRUDService[T]) GetItem(ctx context.Context, id uint) (*T, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &Error{Op: OpGet, ID: id, Err: err}
	}
	return item, nil
}

// CreateItem persists item and returns it with storage generated fields set.
func (s *CRUDService[T]) CreateItem(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, &Error{Op: OpCreate, Err: fmt.Errorf("item is required")}
	}
	created, err := s.repo.Add(ctx, item)
	if err != nil {
		return nil, &Error{Op: OpCreate, Err: err}
	}
	s.logger.Debug("item created", "entity", fmt.Sprintf("%T", item))
	return created, nil
}

// UpdateItem applies patch to the item with id. It returns nil without
// touching storage when the item does not exist, and rejects the whole patch
// (leaving the item unchanged) when any key or value does not fit the
// entity.
func (s *CRUDService[T]) UpdateItem(ctx context.Context, id uint, patch model.Patch) (*T, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &Error{Op: OpUpdate, ID: id, Err: err}
	}
	if item == nil {
		return nil, nil
	}
	if err := model.Apply(item, patch); err != nil {
		return nil, &Error{Op: OpUpdate, ID: id, Err: err}
	}
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, &Error{Op: OpUpdate, ID: id, Err: err}
	}
	return updated, nil
}

// DeleteItem removes the item with id and returns it, or nil when there is
// none.
func (s *CRUDService[T]) DeleteItem(ctx context.Context, id uint) (*T, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &Error{Op: OpDelete, ID: id, Err: err}
	}
	if item == nil {
		return nil, nil
	}
	if err := s.repo.Delete(ctx, item); err != nil {
		return nil, &Error{Op: OpDelete, ID: id, Err: err}
	}
	return item, nil
}
