package render

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-crudform/pkg/model"
)

// ErrUnsupportedFieldType matches any *UnsupportedFieldTypeError.
var ErrUnsupportedFieldType = errors.New("render: unsupported field type")

// UnsupportedFieldTypeError reports a field whose kind has no registered
// renderer.
type UnsupportedFieldTypeError struct {
	Field    string
	Kind     model.FieldKind
	TypeName string
}

func (e *UnsupportedFieldTypeError) Error() string {
	if e.TypeName != "" {
		return fmt.Sprintf("render: no field renderer found for field %q of type %s", e.Field, e.TypeName)
	}
	return fmt.Sprintf("render: no field renderer found for field %q of kind %s", e.Field, e.Kind)
}

func (e *UnsupportedFieldTypeError) Is(target error) bool {
	return target == ErrUnsupportedFieldType
}
