package model

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// FieldKind is the closed set of value kinds a form can edit. Anything else
// resolves to KindUnsupported and is reported by the form instead of being
// rendered.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindInteger     FieldKind = "integer"
	KindFloat       FieldKind = "float"
	KindBoolean     FieldKind = "boolean"
	KindUnsupported FieldKind = "unsupported"
)

// Kinds lists the supported kinds in declaration order.
func Kinds() []FieldKind {
	return []FieldKind{KindText, KindInteger, KindFloat, KindBoolean}
}

func (k FieldKind) String() string { return string(k) }

// Supported reports whether k is one of the editable kinds.
func (k FieldKind) Supported() bool {
	switch k {
	case KindText, KindInteger, KindFloat, KindBoolean:
		return true
	}
	return false
}

// kindOf resolves a Go type exactly. Pointers and named types over other
// kinds are not unwrapped beyond their reflect.Kind.
func kindOf(t reflect.Type) FieldKind {
	switch t.Kind() {
	case reflect.String:
		return KindText
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Bool:
		return KindBoolean
	default:
		return KindUnsupported
	}
}

// Coerce converts a loose value into the canonical Go representation of the
// kind: string, int64, float64 or bool. Strings are parsed, numeric values are
// widened, and integral floats are accepted as integers.
func Coerce(kind FieldKind, value any) (any, error) {
	if value == nil {
		return nil, fmt.Errorf("model: nil value for %s field", kind)
	}
	switch kind {
	case KindText:
		switch v := value.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		}
		return nil, fmt.Errorf("model: expected text, got %T", value)
	case KindInteger:
		return coerceInt(value)
	case KindFloat:
		return coerceFloat(value)
	case KindBoolean:
		return coerceBool(value)
	}
	return nil, fmt.Errorf("model: cannot coerce into %s field", kind)
}

func coerceInt(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("model: integer %d out of range", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("model: %v is not a whole number", f)
		}
		if f < -(1<<63) || f >= 1<<63 {
			return nil, fmt.Errorf("model: integer %v out of range", f)
		}
		return int64(f), nil
	case reflect.String:
		n, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("model: %q is not an integer", rv.String())
		}
		return n, nil
	}
	return nil, fmt.Errorf("model: expected integer, got %T", value)
}

func coerceFloat(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return nil, fmt.Errorf("model: %q is not a number", rv.String())
		}
		return f, nil
	}
	return nil, fmt.Errorf("model: expected number, got %T", value)
}

func coerceBool(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "yes", "y":
			return true, nil
		case "off", "no", "n", "":
			return false, nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("model: %q is not a boolean", v)
		}
		return b, nil
	}
	return nil, fmt.Errorf("model: expected boolean, got %T", value)
}

// assign stores a canonical value into a struct field, converting to the
// field's concrete Go type and rejecting overflow.
func assign(dst reflect.Value, kind FieldKind, value any) error {
	canonical, err := Coerce(kind, value)
	if err != nil {
		return err
	}
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := canonical.(int64)
		if dst.OverflowInt(n) {
			return fmt.Errorf("model: %d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := canonical.(int64)
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("model: %d overflows %s", n, dst.Type())
		}
		dst.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		f := canonical.(float64)
		if dst.OverflowFloat(f) {
			return fmt.Errorf("model: %v overflows %s", f, dst.Type())
		}
		dst.SetFloat(f)
	case reflect.String:
		dst.SetString(canonical.(string))
	case reflect.Bool:
		dst.SetBool(canonical.(bool))
	default:
		return fmt.Errorf("model: cannot assign to %s", dst.Type())
	}
	return nil
}
