package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-crudform/pkg/model"
)

// Repository is the persistence contract for one entity type. Every error it
// returns is an *Error; absence is reported as a nil entity, never as an
// error.
type Repository[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id uint) (*T, error)
	Add(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, item *T) (*T, error)
	Delete(ctx context.Context, item *T) error
}

// Option configures a Store.
type Option func(*options)

type options struct {
	classify Classifier
	logger   *slog.Logger
}

// WithClassifier overrides how native errors are recognised as connectivity
// failures.
func WithClassifier(fn Classifier) Option {
	return func(o *options) {
		if fn != nil {
			o.classify = fn
		}
	}
}

// WithLogger sets the logger used for rollback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Store implements Repository over a Session. Mutations run as
// write, reload, commit inside one transaction so a failure at any stage
// leaves storage untouched.
type Store[T any] struct {
	session  Session
	entity   string
	classify Classifier
	logger   *slog.Logger
}

var _ Repository[struct{ ID uint }] = (*Store[struct{ ID uint }])(nil)

// New builds a Store for T.
func New[T any](session Session, opts ...Option) (*Store[T], error) {
	if session == nil {
		return nil, fmt.Errorf("repository: session is required")
	}
	schema, err := model.SchemaOf[T]()
	if err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}

	cfg := options{
		classify: IsConnectivityError,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Store[T]{
		session:  session,
		entity:   schema.Name,
		classify: cfg.classify,
		logger:   cfg.logger,
	}, nil
}

// Entity returns the schema name used in error messages.
func (s *Store[T]) Entity() string { return s.entity }

func (s *Store[T]) GetAll(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	if err := s.session.All(ctx, &items); err != nil {
		return nil, s.fail(OpGetAll, StageRead, KindQuery, err)
	}
	return items, nil
}

func (s *Store[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	item := new(T)
	err := s.session.First(ctx, item, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail(OpGetByID, StageRead, KindQuery, err)
	}
	return item, nil
}

func (s *Store[T]) Add(ctx context.Context, item *T) (*T, error) {
	if err := s.mutate(ctx, OpAdd, item, Tx.Insert, true); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Store[T]) Update(ctx context.Context, item *T) (*T, error) {
	if err := s.mutate(ctx, OpUpdate, item, Tx.Save, true); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Store[T]) Delete(ctx context.Context, item *T) error {
	return s.mutate(ctx, OpDelete, item, Tx.Remove, false)
}

type writeFunc func(Tx, context.Context, any) error

func (s *Store[T]) mutate(ctx context.Context, op string, item *T, write writeFunc, reload bool) error {
	if item == nil {
		return s.fail(op, StageWrite, KindQuery, fmt.Errorf("nil %s", s.entity))
	}

	tx, err := s.session.Begin(ctx)
	if err != nil {
		return s.fail(op, StageBegin, KindQuery, err)
	}

	if err := write(tx, ctx, item); err != nil {
		s.rollback(op, tx)
		return s.fail(op, StageWrite, KindQuery, err)
	}
	if reload {
		if err := tx.Reload(ctx, item); err != nil {
			s.rollback(op, tx)
			return s.fail(op, StageReload, KindQuery, err)
		}
	}
	if err := tx.Commit(); err != nil {
		s.rollback(op, tx)
		return s.fail(op, StageCommit, KindCommit, err)
	}
	return nil
}

func (s *Store[T]) rollback(op string, tx Tx) {
	if err := tx.Rollback(); err != nil {
		s.logger.Debug("rollback failed", "op", op, "entity", s.entity, "error", err)
	}
}

// fail builds the typed error. Connectivity faults win over the stage's
// fallback kind.
func (s *Store[T]) fail(op string, stage Stage, fallback Kind, err error) error {
	kind := fallback
	if s.classify(err) {
		kind = KindConnection
	}
	return &Error{
		Kind:   kind,
		Op:     op,
		Entity: s.entity,
		Stage:  stage,
		Err:    err,
	}
}
