package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-crudform/pkg/form"
	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/service"
	"github.com/goliatone/go-crudform/pkg/surface"
)

// CreateFormKey is the form key of the create section.
const CreateFormKey = "create"

// LineFormatter renders one listed record.
type LineFormatter func(schema *model.Schema, values map[string]any) string

// CRUDOption configures a CRUDPage.
type CRUDOption func(*crudConfig)

type crudConfig struct {
	format LineFormatter
	limit  int
}

// WithLineFormatter replaces the default "Label: value" listing.
func WithLineFormatter(fn LineFormatter) CRUDOption {
	return func(cfg *crudConfig) {
		if fn != nil {
			cfg.format = fn
		}
	}
}

// WithListLimit sets how many records are listed.
func WithListLimit(limit int) CRUDOption {
	return func(cfg *crudConfig) {
		if limit > 0 {
			cfg.limit = limit
		}
	}
}

// CRUDPage shows a create form followed by the stored records of T.
type CRUDPage[T any] struct {
	service *service.CRUDService[T]
	form    *form.Form[T]
	schema  *model.Schema
	format  LineFormatter
	limit   int
}

// NewCRUDPage wires a page for T.
func NewCRUDPage[T any](svc *service.CRUDService[T], f *form.Form[T], opts ...CRUDOption) (*CRUDPage[T], error) {
	if svc == nil {
		return nil, fmt.Errorf("page: crud service is required")
	}
	if f == nil {
		return nil, fmt.Errorf("page: form is required")
	}
	cfg := crudConfig{format: DefaultLineFormatter, limit: service.DefaultLimit}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &CRUDPage[T]{
		service: svc,
		form:    f,
		schema:  f.Schema(),
		format:  cfg.format,
		limit:   cfg.limit,
	}, nil
}

// Title returns the page heading.
func (p *CRUDPage[T]) Title() string { return p.schema.Name + " CRUD Page" }

// Render draws the create form, creates the submitted entity if there is
// one, then lists the stored records. Errors are returned to the host.
func (p *CRUDPage[T]) Render(ctx context.Context, s surface.Surface) error {
	name := p.schema.Name
	s.Title(p.Title())
	s.Subheader("Create New " + name + " Entry")

	if err := p.form.Render(ctx, s, nil, CreateFormKey); err != nil {
		return err
	}
	item, err := p.form.GetModel(s.State(), CreateFormKey)
	if err != nil {
		return err
	}
	if item != nil {
		if _, err := p.service.CreateItem(ctx, item); err != nil {
			return err
		}
		s.Success(name + " created successfully!")
		p.form.ClearForm(s.State(), CreateFormKey)
	}

	s.Subheader("View " + name + " Entries")
	items, err := p.service.GetItems(ctx, 0, p.limit)
	if err != nil {
		return err
	}
	for i := range items {
		values, err := p.schema.Values(&items[i])
		if err != nil {
			return fmt.Errorf("page: %w", err)
		}
		s.Text(p.format(p.schema, values))
	}
	return nil
}

// DefaultLineFormatter joins "Label: value" for every editable field.
func DefaultLineFormatter(schema *model.Schema, values map[string]any) string {
	fields := schema.Editable()
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %v", field.Label, values[field.Name]))
	}
	return strings.Join(parts, ", ")
}
