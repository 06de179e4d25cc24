package render

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/surface"
)

// Registry stores field renderers by kind and dispatches fields to them.
// Lookups never modify the registry.
type Registry struct {
	mu        sync.RWMutex
	renderers map[model.FieldKind]FieldRenderer
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[model.FieldKind]FieldRenderer),
	}
}

// NewDefaultRegistry returns a registry holding the text, integer, float and
// boolean renderers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(model.KindText, TextRenderer{})
	r.MustRegister(model.KindInteger, IntegerRenderer{})
	r.MustRegister(model.KindFloat, FloatRenderer{})
	r.MustRegister(model.KindBoolean, BooleanRenderer{})
	return r
}

// Register adds a renderer for kind. Duplicate kinds return an error.
func (r *Registry) Register(kind model.FieldKind, renderer FieldRenderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	if kind == "" || kind == model.KindUnsupported {
		return fmt.Errorf("render: cannot register a renderer for kind %q", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[kind]; exists {
		return fmt.Errorf("render: renderer for kind %q already registered", kind)
	}

	r.renderers[kind] = renderer
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(kind model.FieldKind, renderer FieldRenderer) {
	if err := r.Register(kind, renderer); err != nil {
		panic(err)
	}
}

// Lookup returns the renderer for field's kind, or an
// *UnsupportedFieldTypeError when none is registered.
func (r *Registry) Lookup(field model.Field) (FieldRenderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[field.Kind]
	if !ok {
		return nil, &UnsupportedFieldTypeError{Field: field.Name, Kind: field.Kind, TypeName: field.TypeName}
	}
	return renderer, nil
}

// RenderField dispatches in to the renderer of its field kind.
func (r *Registry) RenderField(ctx context.Context, s surface.Surface, in Input) (any, error) {
	renderer, err := r.Lookup(in.Field)
	if err != nil {
		return nil, err
	}
	return renderer.RenderField(ctx, s, in)
}

// Kinds returns the registered kinds sorted by name.
func (r *Registry) Kinds() []model.FieldKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]model.FieldKind, 0, len(r.renderers))
	for kind := range r.renderers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Has reports whether a renderer is registered for kind.
func (r *Registry) Has(kind model.FieldKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.renderers[kind]
	return ok
}
