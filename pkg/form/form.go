// Package form renders create and edit forms for any entity type from its
// schema and turns submissions into entities exactly once.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/render"
	"github.com/goliatone/go-crudform/pkg/surface"
)

// SubmitLabel is the caption of every form's submit button.
const SubmitLabel = "Submit"

// Form renders the editable fields of T.
type Form[T any] struct {
	schema    *model.Schema
	renderers *render.Registry
	logger    *slog.Logger
}

// New builds a form for T dispatching fields through renderers.
func New[T any](renderers *render.Registry, logger *slog.Logger) (*Form[T], error) {
	if renderers == nil {
		return nil, fmt.Errorf("form: renderer registry is required")
	}
	schema, err := model.SchemaOf[T]()
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Form[T]{schema: schema, renderers: renderers, logger: logger}, nil
}

// Schema returns the schema the form renders.
func (f *Form[T]) Schema() *model.Schema { return f.schema }

// Render draws the form under formKey. Defaults come from existing when it is
// given, otherwise from each field's static default, then its default
// factory. Fields without a renderer are reported as a warning and left out.
// The primary key is assigned by storage and is never rendered.
// When the submit button fires the entered values are stored and the form
// moves to the submitted phase.
func (f *Form[T]) Render(ctx context.Context, s surface.Surface, existing *T, formKey string) error {
	if s == nil {
		return fmt.Errorf("form: surface is required")
	}
	if strings.TrimSpace(formKey) == "" {
		return fmt.Errorf("form: form key is required")
	}

	var current map[string]any
	if existing != nil {
		values, err := f.schema.Values(existing)
		if err != nil {
			return fmt.Errorf("form: read existing %s: %w", f.schema.Name, err)
		}
		current = values
	}

	s.BeginForm(formKey, f.schema.Name+" Form")
	values, err := f.renderFields(ctx, s, current, formKey)
	if err != nil {
		s.EndForm()
		return err
	}
	submitted, err := s.SubmitButton(ctx, formKey+"_submit", SubmitLabel)
	s.EndForm()
	if err != nil {
		return fmt.Errorf("form: submit button: %w", err)
	}

	if submitted {
		saveState(s.State(), formKey, State{Phase: PhaseSubmitted, Values: values})
		f.logger.Debug("form submitted", "form", formKey, "entity", f.schema.Name)
	}
	return nil
}

func (f *Form[T]) renderFields(ctx context.Context, s surface.Surface, current map[string]any, formKey string) (map[string]any, error) {
	values := make(map[string]any)
	if pk, ok := f.schema.PrimaryKey(); ok {
		f.logger.Debug("primary key not rendered", "form", formKey, "field", pk.Name)
	}
	for _, field := range f.schema.Editable() {
		in := render.Input{
			Key:     formKey + "_" + field.Name,
			Label:   field.Label,
			Field:   field,
			Default: resolveDefault(field, current),
		}
		value, err := f.renderers.RenderField(ctx, s, in)
		if err != nil {
			var unsupported *render.UnsupportedFieldTypeError
			var invalid *surface.InputError
			if errors.As(err, &invalid) {
				// Decoding the raw entry rejects the submission.
				values[field.Name] = invalid.Raw
				continue
			}
			if errors.As(err, &unsupported) {
				s.Warning(fmt.Sprintf("No field renderer found for %s (type %s)", field.Name, field.TypeName))
				continue
			}
			return nil, fmt.Errorf("form: render field %q: %w", field.Name, err)
		}
		values[field.Name] = value
	}
	return values, nil
}

func resolveDefault(field model.Field, current map[string]any) any {
	if current != nil {
		return current[field.Name]
	}
	if field.Default != nil {
		return field.Default
	}
	if field.DefaultFactory != nil {
		return field.DefaultFactory()
	}
	return nil
}

// GetModel returns the entity submitted under formKey, or nil when the form
// has not been submitted since the last read. A submission is handed out at
// most once, even when it fails validation.
func (f *Form[T]) GetModel(store surface.State, formKey string) (*T, error) {
	st := LoadState(store, formKey)
	if st.Phase != PhaseSubmitted {
		return nil, nil
	}
	saveState(store, formKey, State{Phase: PhaseConsumed, Values: st.Values})
	return model.Decode[T](st.Values)
}

// ClearForm forgets the values and phase of formKey.
func (f *Form[T]) ClearForm(store surface.State, formKey string) {
	store.Delete(stateKey(formKey))
}
