// Package openapi exports entity schemas as OpenAPI 3 component schemas, so
// the fields a form edits can be published alongside the UI.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-crudform/pkg/model"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.0.3"

// ComponentSchema describes one entity. Fields with an unsupported kind are
// left out; the primary key is read only.
func ComponentSchema(schema *model.Schema) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	out.Title = schema.Name
	for _, field := range schema.Fields {
		prop := propertySchema(field)
		if prop == nil {
			continue
		}
		out.WithProperty(field.Name, prop)
		if field.Required {
			out.Required = append(out.Required, field.Name)
		}
	}
	return out
}

func propertySchema(field model.Field) *openapi3.Schema {
	var prop *openapi3.Schema
	switch field.Kind {
	case model.KindText:
		prop = openapi3.NewStringSchema()
	case model.KindInteger:
		prop = openapi3.NewInt64Schema()
	case model.KindFloat:
		prop = openapi3.NewFloat64Schema()
	case model.KindBoolean:
		prop = openapi3.NewBoolSchema()
	default:
		return nil
	}
	prop.Title = field.Label
	prop.Description = field.Description
	prop.ReadOnly = field.PrimaryKey
	if field.Default != nil {
		prop.Default = field.Default
	}
	return prop
}

// Document builds and validates a document holding one component schema per
// entity, keyed by entity name.
func Document(ctx context.Context, title, version string, schemas ...*model.Schema) (*openapi3.T, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("openapi: title is required")
	}
	if strings.TrimSpace(version) == "" {
		version = "0.0.0"
	}
	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas, len(schemas)),
		},
	}
	for _, schema := range schemas {
		if schema == nil {
			continue
		}
		if _, dup := doc.Components.Schemas[schema.Name]; dup {
			return nil, fmt.Errorf("openapi: duplicate schema %q", schema.Name)
		}
		doc.Components.Schemas[schema.Name] = ComponentSchema(schema).NewRef()
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}
	return doc, nil
}
