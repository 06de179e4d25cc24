package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/render"
	"github.com/goliatone/go-crudform/pkg/surface"
	"github.com/goliatone/go-crudform/pkg/testsupport"
)

func field(name string, kind model.FieldKind) model.Field {
	return model.Field{Name: name, Kind: kind, Description: name + " help"}
}

func TestDefaultRegistry_Kinds(t *testing.T) {
	got := render.NewDefaultRegistry().Kinds()
	want := []model.FieldKind{model.KindBoolean, model.KindFloat, model.KindInteger, model.KindText}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_RegisterRejectsDuplicatesAndUnsupported(t *testing.T) {
	r := render.NewRegistry()
	if err := r.Register(model.KindText, render.TextRenderer{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(model.KindText, render.TextRenderer{}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := r.Register(model.KindUnsupported, render.TextRenderer{}); err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
	if err := r.Register(model.KindFloat, nil); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestRegistry_MissIsTypedAndSideEffectFree(t *testing.T) {
	r := render.NewRegistry()
	r.MustRegister(model.KindText, render.TextRenderer{})
	s := testsupport.NewSurface()

	in := render.Input{Key: "f_tags", Label: "Tags", Field: model.Field{Name: "tags", Kind: model.KindUnsupported, TypeName: "[]string"}}
	_, err := r.RenderField(context.Background(), s, in)

	var unsupported *render.UnsupportedFieldTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFieldTypeError, got %v", err)
	}
	if unsupported.Field != "tags" || unsupported.TypeName != "[]string" {
		t.Fatalf("unexpected error fields: %+v", unsupported)
	}
	if !errors.Is(err, render.ErrUnsupportedFieldType) {
		t.Fatalf("expected errors.Is match")
	}
	if len(s.Widgets) != 0 {
		t.Fatalf("expected no widgets, got %+v", s.Widgets)
	}
	if diff := cmp.Diff([]model.FieldKind{model.KindText}, r.Kinds()); diff != "" {
		t.Fatalf("registry changed (-want +got):\n%s", diff)
	}
	if r.Has(model.KindUnsupported) {
		t.Fatalf("miss must not register anything")
	}
}

func TestBuiltinRenderers_Defaults(t *testing.T) {
	r := render.NewDefaultRegistry()
	s := testsupport.NewSurface()
	ctx := context.Background()

	inputs := []render.Input{
		{Key: "f_name", Label: "Name", Field: field("name", model.KindText)},
		{Key: "f_count", Label: "Count", Field: field("count", model.KindInteger)},
		{Key: "f_ratio", Label: "Ratio", Field: field("ratio", model.KindFloat)},
		{Key: "f_on", Label: "On", Field: field("on", model.KindBoolean)},
	}
	var values []any
	for _, in := range inputs {
		v, err := r.RenderField(ctx, s, in)
		if err != nil {
			t.Fatalf("render %s: %v", in.Key, err)
		}
		values = append(values, v)
	}

	if diff := cmp.Diff([]any{"", int64(0), 0.0, false}, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	want := []testsupport.RenderedWidget{
		{Kind: "text", Key: "f_name", Label: "Name", Help: "name help", Default: ""},
		{Kind: "integer", Key: "f_count", Label: "Count", Help: "count help", Default: int64(0), Step: int64(1)},
		{Kind: "float", Key: "f_ratio", Label: "Ratio", Help: "ratio help", Default: 0.0, Step: 0.1},
		{Kind: "checkbox", Key: "f_on", Label: "On", Help: "on help", Default: false},
	}
	if diff := cmp.Diff(want, s.Widgets); diff != "" {
		t.Fatalf("widgets mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltinRenderers_UseDefaultsAndInput(t *testing.T) {
	r := render.NewDefaultRegistry()
	s := testsupport.NewSurface()
	s.Inputs["f_count"] = int64(12)

	v, err := r.RenderField(context.Background(), s, render.Input{Key: "f_count", Field: field("count", model.KindInteger), Default: 5})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if v != int64(12) {
		t.Fatalf("expected entered value 12, got %v", v)
	}
	if s.Widgets[0].Default != int64(5) {
		t.Fatalf("expected default 5 passed to surface, got %v", s.Widgets[0].Default)
	}

	_, err = r.RenderField(context.Background(), s, render.Input{Key: "f_bad", Field: field("bad", model.KindBoolean), Default: "maybe"})
	if err == nil {
		t.Fatalf("expected error for uncoercible default")
	}
}

func TestFieldRendererFunc(t *testing.T) {
	r := render.NewRegistry()
	r.MustRegister(model.KindText, render.FieldRendererFunc(func(ctx context.Context, s surface.Surface, in render.Input) (any, error) {
		return s.TextInput(ctx, in.Widget(), "custom")
	}))
	v, err := r.RenderField(context.Background(), testsupport.NewSurface(), render.Input{Key: "k", Field: field("k", model.KindText)})
	if err != nil || v != "custom" {
		t.Fatalf("expected custom renderer value, got %v (%v)", v, err)
	}
}
