package model_test

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-crudform/pkg/model"
)

type gadget struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `json:"name" crud:"required;help=Display name"`
	UnitPrice   float64 `crud:"default=1.5"`
	Stock       int32   `json:"stock" crud:"label=In stock;default=3"`
	Active      bool    `json:"active"`
	Tags        []string
	Description string `json:"description"`
	Internal    string `crud:"-"`
	hidden      string
}

func (g gadget) FieldDefaults() map[string]func() any {
	return map[string]func() any{"description": func() any { return "new gadget" }}
}

type strictGadget struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (g strictGadget) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Name, validation.Length(0, 5)),
	)
}

func TestSchemaOf_DerivesFields(t *testing.T) {
	schema, err := model.SchemaOf[gadget]()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if schema.Name != "gadget" {
		t.Fatalf("expected schema name gadget, got %q", schema.Name)
	}

	type row struct {
		Name     string
		Label    string
		Kind     model.FieldKind
		Default  any
		Required bool
		PK       bool
	}
	var got []row
	for _, f := range schema.Fields {
		got = append(got, row{f.Name, f.Label, f.Kind, f.Default, f.Required, f.PrimaryKey})
	}
	want := []row{
		{"id", "Id", model.KindInteger, nil, false, true},
		{"name", "Name", model.KindText, nil, true, false},
		{"unit_price", "Unit Price", model.KindFloat, 1.5, false, false},
		{"stock", "In stock", model.KindInteger, int64(3), false, false},
		{"active", "Active", model.KindBoolean, nil, false, false},
		{"tags", "Tags", model.KindUnsupported, nil, false, false},
		{"description", "Description", model.KindText, nil, false, false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	name, _ := schema.Field("name")
	if name.Description != "Display name" {
		t.Fatalf("expected help text, got %q", name.Description)
	}
	desc, _ := schema.Field("description")
	if desc.DefaultFactory == nil || desc.DefaultFactory() != "new gadget" {
		t.Fatalf("expected default factory on description")
	}
	tags, _ := schema.Field("tags")
	if tags.TypeName != "[]string" {
		t.Fatalf("expected type name []string, got %q", tags.TypeName)
	}
}

func TestSchema_EditableExcludesPrimaryKey(t *testing.T) {
	schema := model.MustSchemaOf[gadget]()
	for _, f := range schema.Editable() {
		if f.PrimaryKey {
			t.Fatalf("primary key %q listed as editable", f.Name)
		}
	}
	pk, ok := schema.PrimaryKey()
	if !ok || pk.Name != "id" {
		t.Fatalf("expected id primary key, got %+v", pk)
	}
}

func TestSchema_Values(t *testing.T) {
	schema := model.MustSchemaOf[strictGadget]()
	values, err := schema.Values(&strictGadget{ID: 7, Name: "bolt"})
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	want := map[string]any{"id": uint(7), "name": "bolt"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if _, err := schema.Values(gadget{}); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"name":          "Name",
		"unit_price":    "Unit Price",
		"created-at":    "Created At",
		"HTTP_port":     "Http Port",
		"":              "",
		"already Title": "Already Title",
	}
	for in, want := range cases {
		if got := model.DefaultLabeler(in); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecode_CoercesValues(t *testing.T) {
	got, err := model.Decode[gadget](map[string]any{
		"name":        "widget",
		"unit_price":  "2.25",
		"stock":       int64(9),
		"active":      "on",
		"description": "blue",
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := &gadget{Name: "widget", UnitPrice: 2.25, Stock: 9, Active: true, Description: "blue"}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(gadget{})); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_RequiredAndCoercionFailures(t *testing.T) {
	_, err := model.Decode[gadget](map[string]any{
		"name":  "  ",
		"stock": "lots",
	})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if !model.IsValidationFailure(err) {
		t.Fatalf("expected validation category, got %v", err)
	}
	fieldErrs := model.FieldErrors(err)
	if _, ok := fieldErrs["name"]; !ok {
		t.Fatalf("expected name error, got %v", fieldErrs)
	}
	if _, ok := fieldErrs["stock"]; !ok {
		t.Fatalf("expected stock error, got %v", fieldErrs)
	}
}

func TestDecode_RunsEntityValidation(t *testing.T) {
	if _, err := model.Decode[strictGadget](map[string]any{"name": "much too long"}); !model.IsValidationFailure(err) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	got, err := model.Decode[strictGadget](map[string]any{"name": "ok"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "ok" {
		t.Fatalf("expected name ok, got %q", got.Name)
	}
}

func TestApply_UpdatesListedFields(t *testing.T) {
	item := &gadget{ID: 1, Name: "old", Stock: 1}
	if err := model.Apply(item, model.Patch{"name": "new", "stock": "4"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if item.Name != "new" || item.Stock != 4 || item.ID != 1 {
		t.Fatalf("unexpected entity after patch: %+v", item)
	}
}

func TestApply_RejectsWithoutMutation(t *testing.T) {
	cases := []struct {
		name  string
		patch model.Patch
	}{
		{"unknown field", model.Patch{"name": "changed", "colour": "red"}},
		{"primary key", model.Patch{"id": 99}},
		{"bad value", model.Patch{"name": "changed", "stock": "many"}},
		{"overflow", model.Patch{"stock": int64(1) << 40}},
		{"float beyond int64", model.Patch{"stock": 1e19}},
		{"unsupported", model.Patch{"tags": "a,b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := &gadget{ID: 1, Name: "old", Stock: 2}
			before := *item
			err := model.Apply(item, tc.patch)
			if !model.IsValidationFailure(err) {
				t.Fatalf("expected validation failure, got %v", err)
			}
			if diff := cmp.Diff(before, *item, cmpopts.IgnoreUnexported(gadget{})); diff != "" {
				t.Fatalf("entity mutated (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_EntityValidationKeepsOriginal(t *testing.T) {
	item := &strictGadget{ID: 3, Name: "abc"}
	if err := model.Apply(item, model.Patch{"name": "far too long"}); !model.IsValidationFailure(err) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if item.Name != "abc" {
		t.Fatalf("expected name unchanged, got %q", item.Name)
	}
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		kind    model.FieldKind
		in      any
		want    any
		wantErr bool
	}{
		{model.KindText, "x", "x", false},
		{model.KindText, 3, nil, true},
		{model.KindInteger, "12", int64(12), false},
		{model.KindInteger, 4.0, int64(4), false},
		{model.KindInteger, 4.5, nil, true},
		{model.KindInteger, 1e19, nil, true},
		{model.KindInteger, -1e19, nil, true},
		{model.KindInteger, float64(1 << 62), int64(1 << 62), false},
		{model.KindFloat, 2, 2.0, false},
		{model.KindFloat, "0.1", 0.1, false},
		{model.KindBoolean, "true", true, false},
		{model.KindBoolean, "", false, false},
		{model.KindBoolean, 1, nil, true},
		{model.KindUnsupported, "x", nil, true},
	}
	for _, tc := range cases {
		got, err := model.Coerce(tc.kind, tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("Coerce(%s, %v): expected error", tc.kind, tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Coerce(%s, %v): %v", tc.kind, tc.in, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("Coerce(%s, %v) mismatch (-want +got):\n%s", tc.kind, tc.in, diff)
		}
	}
}
