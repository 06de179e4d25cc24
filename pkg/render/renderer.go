// Package render maps field kinds to the widgets that edit them. A Registry
// is built once at startup and shared read-only by every form.
package render

import (
	"context"

	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/surface"
)

// Input is everything a renderer needs to draw one field.
type Input struct {
	Key     string
	Label   string
	Field   model.Field
	Default any
}

// Widget returns the surface widget descriptor for in.
func (in Input) Widget() surface.Widget {
	return surface.Widget{Key: in.Key, Label: in.Label, Help: in.Field.Description}
}

// FieldRenderer draws one field on a surface and returns its current value.
type FieldRenderer interface {
	RenderField(ctx context.Context, s surface.Surface, in Input) (any, error)
}

// FieldRendererFunc adapts a function to FieldRenderer.
type FieldRendererFunc func(ctx context.Context, s surface.Surface, in Input) (any, error)

func (fn FieldRendererFunc) RenderField(ctx context.Context, s surface.Surface, in Input) (any, error) {
	return fn(ctx, s, in)
}
