// Package page composes forms and services into screens and arranges
// screens behind a navigation shell.
package page

import (
	"context"

	"github.com/goliatone/go-crudform/pkg/surface"
)

// Page draws one screen per render pass.
type Page interface {
	Render(ctx context.Context, s surface.Surface) error
}

// Func adapts a function to Page.
type Func func(ctx context.Context, s surface.Surface) error

func (fn Func) Render(ctx context.Context, s surface.Surface) error { return fn(ctx, s) }
