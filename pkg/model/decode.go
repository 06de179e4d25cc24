package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

const (
	// ValidationFailedCode tags entity construction failures.
	ValidationFailedCode = "MODEL_VALIDATION_FAILED"
	// PatchInvalidCode tags rejected patches.
	PatchInvalidCode = "MODEL_PATCH_INVALID"
)

// IsValidationFailure reports whether err came from Decode or Apply
// rejecting its input.
func IsValidationFailure(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

// FieldErrors returns the per-field messages of a validation failure, keyed
// by field name. It returns nil for any other error.
func FieldErrors(err error) map[string]string {
	var e *goerrors.Error
	if !goerrors.As(err, &e) || e.Category != goerrors.CategoryValidation {
		return nil
	}
	if len(e.ValidationErrors) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.ValidationErrors))
	for _, fe := range e.ValidationErrors {
		out[fe.Field] = fe.Message
	}
	return out
}

// Patch maps field names to replacement values.
type Patch map[string]any

// Keys returns the patched field names sorted.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Decode builds a T from values keyed by field name. Values are coerced to
// their field kind; missing optional fields keep their zero value. Required
// fields must be present (and non-blank for text). When *T implements
// validation.Validatable the result is validated as well.
func Decode[T any](values map[string]any) (*T, error) {
	schema, err := SchemaOf[T]()
	if err != nil {
		return nil, err
	}

	entity := new(T)
	rv := reflect.ValueOf(entity).Elem()
	errs := validation.Errors{}

	for _, field := range schema.Editable() {
		value, ok := values[field.Name]
		if !ok || value == nil {
			if field.Required {
				errs[field.Name] = validation.NewError("model.required", "is required")
			}
			continue
		}
		if !field.Kind.Supported() {
			continue
		}
		if field.Required && field.Kind == KindText {
			if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
				errs[field.Name] = validation.NewError("model.required", "is required")
				continue
			}
		}
		if err := assign(rv.FieldByIndex(field.index), field.Kind, value); err != nil {
			errs[field.Name] = err
		}
	}

	if len(errs) > 0 {
		return nil, validationFailure(schema.Name, errs)
	}
	if err := validateEntity(entity); err != nil {
		return nil, validationFailure(schema.Name, err)
	}
	return entity, nil
}

// Apply validates patch against the schema of T and, only when every key
// names an editable field and every value coerces to that field's kind,
// writes the values into entity. A rejected patch leaves entity unchanged.
func Apply[T any](entity *T, patch Patch) error {
	if entity == nil {
		return fmt.Errorf("model: apply patch to nil entity")
	}
	schema, err := SchemaOf[T]()
	if err != nil {
		return err
	}

	updated := *entity
	rv := reflect.ValueOf(&updated).Elem()
	errs := validation.Errors{}

	for _, name := range patch.Keys() {
		field, ok := schema.Field(name)
		switch {
		case !ok:
			errs[name] = validation.NewError("model.unknown_field", "is not a field of "+schema.Name)
			continue
		case field.PrimaryKey:
			errs[name] = validation.NewError("model.read_only", "cannot be updated")
			continue
		case !field.Kind.Supported():
			errs[name] = validation.NewError("model.unsupported", "has an unsupported type "+field.TypeName)
			continue
		}
		if err := assign(rv.FieldByIndex(field.index), field.Kind, patch[name]); err != nil {
			errs[name] = err
		}
	}
	if len(errs) > 0 {
		return patchFailure(schema.Name, errs)
	}
	if err := validateEntity(&updated); err != nil {
		return patchFailure(schema.Name, err)
	}

	*entity = updated
	return nil
}

func validateEntity(entity any) error {
	if v, ok := entity.(validation.Validatable); ok {
		return v.Validate()
	}
	return nil
}

func validationFailure(entity string, err error) error {
	return goerrors.FromOzzoValidation(err, entity+" validation failed").
		WithTextCode(ValidationFailedCode)
}

func patchFailure(entity string, err error) error {
	return goerrors.FromOzzoValidation(err, "invalid "+entity+" patch").
		WithTextCode(PatchInvalidCode)
}
