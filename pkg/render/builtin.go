package render

import (
	"context"
	"fmt"

	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/surface"
)

const (
	IntegerStep = int64(1)
	FloatStep   = 0.1
)

// TextRenderer draws a single line text input. Missing defaults become "".
type TextRenderer struct{}

func (TextRenderer) RenderField(ctx context.Context, s surface.Surface, in Input) (any, error) {
	value := ""
	if in.Default != nil {
		v, err := model.Coerce(model.KindText, in.Default)
		if err != nil {
			return nil, defaultErr(in, err)
		}
		value = v.(string)
	}
	return s.TextInput(ctx, in.Widget(), value)
}

// IntegerRenderer draws a whole number input stepping by one.
type IntegerRenderer struct{}

func (IntegerRenderer) RenderField(ctx context.Context, s surface.Surface, in Input) (any, error) {
	value := int64(0)
	if in.Default != nil {
		v, err := model.Coerce(model.KindInteger, in.Default)
		if err != nil {
			return nil, defaultErr(in, err)
		}
		value = v.(int64)
	}
	return s.IntegerInput(ctx, in.Widget(), value, IntegerStep)
}

// FloatRenderer draws a decimal input stepping by 0.1.
type FloatRenderer struct{}

func (FloatRenderer) RenderField(ctx context.Context, s surface.Surface, in Input) (any, error) {
	value := 0.0
	if in.Default != nil {
		v, err := model.Coerce(model.KindFloat, in.Default)
		if err != nil {
			return nil, defaultErr(in, err)
		}
		value = v.(float64)
	}
	return s.FloatInput(ctx, in.Widget(), value, FloatStep)
}

// BooleanRenderer draws a checkbox.
type BooleanRenderer struct{}

func (BooleanRenderer) RenderField(ctx context.Context, s surface.Surface, in Input) (any, error) {
	value := false
	if in.Default != nil {
		v, err := model.Coerce(model.KindBoolean, in.Default)
		if err != nil {
			return nil, defaultErr(in, err)
		}
		value = v.(bool)
	}
	return s.Checkbox(ctx, in.Widget(), value)
}

func defaultErr(in Input, err error) error {
	return fmt.Errorf("render: default for %q: %w", in.Field.Name, err)
}
