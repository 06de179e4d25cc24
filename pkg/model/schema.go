package model

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Field describes one persisted attribute of an entity. Fields are read-only
// once the schema has been built.
type Field struct {
	Name        string
	GoName      string
	Label       string
	Kind        FieldKind
	TypeName    string
	Description string
	Required    bool
	PrimaryKey  bool

	// Default holds the canonical static default parsed from the tag. It is
	// nil when the field declares none.
	Default        any
	DefaultFactory func() any

	index []int
}

// HasDefault reports whether the field carries a static default or factory.
func (f Field) HasDefault() bool {
	return f.Default != nil || f.DefaultFactory != nil
}

// DefaultsProvider lets an entity contribute default factories, keyed by
// field name, for values that cannot be expressed in a struct tag.
type DefaultsProvider interface {
	FieldDefaults() map[string]func() any
}

// Schema is the field metadata of one entity type.
type Schema struct {
	Name   string
	Fields []Field

	typ    reflect.Type
	byName map[string]int
}

var schemaCache sync.Map // reflect.Type -> *Schema

// SchemaOf returns the schema of T, building it on first use.
func SchemaOf[T any]() (*Schema, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if cached, ok := schemaCache.Load(typ); ok {
		return cached.(*Schema), nil
	}
	schema, err := buildSchema(typ)
	if err != nil {
		return nil, err
	}
	actual, _ := schemaCache.LoadOrStore(typ, schema)
	return actual.(*Schema), nil
}

// MustSchemaOf panics when T cannot be described. Useful for init-time wiring.
func MustSchemaOf[T any]() *Schema {
	schema, err := SchemaOf[T]()
	if err != nil {
		panic(err)
	}
	return schema
}

func buildSchema(typ reflect.Type) (*Schema, error) {
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model: %s is not a struct", typ)
	}
	if typ.Name() == "" {
		return nil, fmt.Errorf("model: anonymous struct types are not supported")
	}

	schema := &Schema{
		Name:   typ.Name(),
		typ:    typ,
		byName: make(map[string]int),
	}

	var factories map[string]func() any
	if provider, ok := reflect.New(typ).Interface().(DefaultsProvider); ok {
		factories = provider.FieldDefaults()
	}

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		tag, skip := parseTag(sf.Tag.Get("crud"))
		if skip {
			continue
		}

		field := Field{
			Name:        fieldName(sf),
			GoName:      sf.Name,
			Kind:        kindOf(sf.Type),
			TypeName:    sf.Type.String(),
			Description: tag.help,
			Required:    tag.required,
			PrimaryKey:  isPrimaryKey(sf),
			index:       sf.Index,
		}
		field.Label = tag.label
		if field.Label == "" {
			field.Label = DefaultLabeler(field.Name)
		}

		if tag.hasDefault {
			if !field.Kind.Supported() {
				return nil, fmt.Errorf("model: %s.%s: default on unsupported type %s", schema.Name, sf.Name, field.TypeName)
			}
			value, err := Coerce(field.Kind, tag.defaultValue)
			if err != nil {
				return nil, fmt.Errorf("model: %s.%s: invalid default: %w", schema.Name, sf.Name, err)
			}
			field.Default = value
		}
		if factory, ok := factories[field.Name]; ok && factory != nil {
			field.DefaultFactory = factory
		}

		if _, exists := schema.byName[field.Name]; exists {
			return nil, fmt.Errorf("model: %s: duplicate field name %q", schema.Name, field.Name)
		}
		schema.byName[field.Name] = len(schema.Fields)
		schema.Fields = append(schema.Fields, field)
	}

	if len(schema.Fields) == 0 {
		return nil, fmt.Errorf("model: %s has no fields", schema.Name)
	}
	return schema, nil
}

type crudTag struct {
	label        string
	help         string
	defaultValue string
	hasDefault   bool
	required     bool
}

func parseTag(raw string) (crudTag, bool) {
	var tag crudTag
	raw = strings.TrimSpace(raw)
	if raw == "-" {
		return tag, true
	}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		switch strings.TrimSpace(key) {
		case "label":
			tag.label = strings.TrimSpace(value)
		case "help", "description":
			tag.help = strings.TrimSpace(value)
		case "default":
			tag.defaultValue = value
			tag.hasDefault = true
		case "required":
			tag.required = true
		}
	}
	return tag, false
}

func fieldName(sf reflect.StructField) string {
	if jsonTag := sf.Tag.Get("json"); jsonTag != "" {
		name, _, _ := strings.Cut(jsonTag, ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return snakeCase(sf.Name)
}

func isPrimaryKey(sf reflect.StructField) bool {
	for _, part := range strings.Split(sf.Tag.Get("gorm"), ";") {
		if strings.EqualFold(strings.TrimSpace(part), "primaryKey") ||
			strings.EqualFold(strings.TrimSpace(part), "primary_key") {
			return true
		}
	}
	return sf.Name == "ID"
}

// Field returns the named field.
func (s *Schema) Field(name string) (Field, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[idx], true
}

// Editable returns the fields a form may set, in declaration order.
func (s *Schema) Editable() []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, field := range s.Fields {
		if !field.PrimaryKey {
			out = append(out, field)
		}
	}
	return out
}

// PrimaryKey returns the primary key field, if the entity declares one.
func (s *Schema) PrimaryKey() (Field, bool) {
	for _, field := range s.Fields {
		if field.PrimaryKey {
			return field, true
		}
	}
	return Field{}, false
}

// Values reads every field of entity, keyed by field name. entity may be a
// value or a pointer of the schema's type.
func (s *Schema) Values(entity any) (map[string]any, error) {
	rv, err := s.structValue(entity)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(s.Fields))
	for _, field := range s.Fields {
		out[field.Name] = rv.FieldByIndex(field.index).Interface()
	}
	return out, nil
}

// Value reads a single field of entity.
func (s *Schema) Value(entity any, name string) (any, error) {
	field, ok := s.Field(name)
	if !ok {
		return nil, fmt.Errorf("model: %s has no field %q", s.Name, name)
	}
	rv, err := s.structValue(entity)
	if err != nil {
		return nil, err
	}
	return rv.FieldByIndex(field.index).Interface(), nil
}

// ID returns the primary key of entity as an unsigned integer.
func (s *Schema) ID(entity any) (uint, error) {
	pk, ok := s.PrimaryKey()
	if !ok {
		return 0, fmt.Errorf("model: %s has no primary key", s.Name)
	}
	rv, err := s.structValue(entity)
	if err != nil {
		return 0, err
	}
	v := rv.FieldByIndex(pk.index)
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uint(v.Uint()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Int() < 0 {
			return 0, fmt.Errorf("model: negative primary key %d", v.Int())
		}
		return uint(v.Int()), nil
	}
	return 0, fmt.Errorf("model: %s primary key is %s, not an integer", s.Name, v.Type())
}

// SetID writes the primary key of entity, which must be a pointer.
func (s *Schema) SetID(entity any, id uint) error {
	pk, ok := s.PrimaryKey()
	if !ok {
		return fmt.Errorf("model: %s has no primary key", s.Name)
	}
	if reflect.ValueOf(entity).Kind() != reflect.Pointer {
		return fmt.Errorf("model: SetID needs a pointer to %s", s.Name)
	}
	rv, err := s.structValue(entity)
	if err != nil {
		return err
	}
	return assign(rv.FieldByIndex(pk.index), KindInteger, uint64(id))
}

func (s *Schema) structValue(entity any) (reflect.Value, error) {
	rv := reflect.ValueOf(entity)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("model: nil %s", s.Name)
		}
		rv = rv.Elem()
	}
	if rv.Type() != s.typ {
		return reflect.Value{}, fmt.Errorf("model: expected %s, got %s", s.typ, rv.Type())
	}
	return rv, nil
}
