package crudform

import (
	"fmt"
	"io/fs"
	"log/slog"

	"gorm.io/gorm"

	"github.com/goliatone/go-crudform/pkg/form"
	"github.com/goliatone/go-crudform/pkg/metrics"
	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/page"
	"github.com/goliatone/go-crudform/pkg/render"
	"github.com/goliatone/go-crudform/pkg/repository"
	"github.com/goliatone/go-crudform/pkg/service"
	"github.com/goliatone/go-crudform/pkg/surface/web"
)

// Section aliases page.Section for callers assembling a navigation shell.
type Section = page.Section

// Page aliases page.Page.
type Page = page.Page

// Option configures NewCRUD.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	renderers   *render.Registry
	classifier  repository.Classifier
	metrics     *metrics.Metrics
	pageOptions []page.CRUDOption
}

// WithLogger sets the logger shared by the repository, service and form.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRenderers replaces the default renderer registry.
func WithRenderers(registry *render.Registry) Option {
	return func(o *options) {
		if registry != nil {
			o.renderers = registry
		}
	}
}

// WithClassifier overrides how backend errors map to failure kinds.
func WithClassifier(fn repository.Classifier) Option {
	return func(o *options) {
		o.classifier = fn
	}
}

// WithMetrics records repository operations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithPageOptions forwards options to the CRUD page.
func WithPageOptions(opts ...page.CRUDOption) Option {
	return func(o *options) {
		o.pageOptions = append(o.pageOptions, opts...)
	}
}

// CRUD bundles the layers built for one entity type.
type CRUD[T any] struct {
	Schema     *model.Schema
	Repository repository.Repository[T]
	Service    *service.CRUDService[T]
	Form       *form.Form[T]
	Page       *page.CRUDPage[T]
}

// NewCRUD builds repository, service, form and page for T over session.
func NewCRUD[T any](session repository.Session, opts ...Option) (*CRUD[T], error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.renderers == nil {
		o.renderers = render.NewDefaultRegistry()
	}

	schema, err := model.SchemaOf[T]()
	if err != nil {
		return nil, fmt.Errorf("crudform: %w", err)
	}

	repoOpts := []repository.Option{repository.WithLogger(o.logger)}
	if o.classifier != nil {
		repoOpts = append(repoOpts, repository.WithClassifier(o.classifier))
	}
	store, err := repository.New[T](session, repoOpts...)
	if err != nil {
		return nil, fmt.Errorf("crudform: %w", err)
	}
	var repo repository.Repository[T] = store
	if o.metrics != nil {
		repo = metrics.WrapRepository[T](o.metrics, store, schema.Name)
	}

	svc, err := service.New[T](repo, o.logger)
	if err != nil {
		return nil, fmt.Errorf("crudform: %w", err)
	}
	f, err := form.New[T](o.renderers, o.logger)
	if err != nil {
		return nil, fmt.Errorf("crudform: %w", err)
	}
	p, err := page.NewCRUDPage(svc, f, o.pageOptions...)
	if err != nil {
		return nil, fmt.Errorf("crudform: %w", err)
	}

	return &CRUD[T]{
		Schema:     schema,
		Repository: repo,
		Service:    svc,
		Form:       f,
		Page:       p,
	}, nil
}

// NewGormCRUD is NewCRUD over a gorm connection.
func NewGormCRUD[T any](db *gorm.DB, opts ...Option) (*CRUD[T], error) {
	session, err := repository.NewGormSession(db)
	if err != nil {
		return nil, fmt.Errorf("crudform: %w", err)
	}
	return NewCRUD[T](session, opts...)
}

// NewShell exposes page.NewShell from the top-level module.
func NewShell(sections ...Section) (*page.Shell, error) {
	return page.NewShell(sections...)
}

// EmbeddedTemplates exposes the built-in web layout so callers can reuse or
// extend it with web.WithFS or web.WithBaseDir.
func EmbeddedTemplates() fs.FS {
	return web.TemplatesFS()
}
