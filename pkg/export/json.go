package export

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
)

// JSON serializes v verbatim with two-space indentation. Values JSON cannot
// represent (NaN, channels, functions, complex numbers) are replaced by their
// string form; anything still unencodable yields a SerializationError.
func (e *Exporter) JSON(v any, searchID string) (*Artifact, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.IsNil() {
		v = []any{}
	}

	data, err := encodeIndented(v)
	if err != nil {
		var unsupportedType *json.UnsupportedTypeError
		var unsupportedValue *json.UnsupportedValueError
		if !errors.As(err, &unsupportedType) && !errors.As(err, &unsupportedValue) {
			return nil, failed(FormatJSON, &SerializationError{Cause: err})
		}
		clean, serr := sanitize(reflect.ValueOf(v))
		if serr != nil {
			return nil, failed(FormatJSON, &SerializationError{Cause: serr})
		}
		if data, err = encodeIndented(clean); err != nil {
			return nil, failed(FormatJSON, &SerializationError{Cause: err})
		}
	}
	return e.artifact(FormatJSON, data, searchID, nil), nil
}

func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// sanitize rebuilds v as plain maps, slices and scalars, replacing leaves
// encoding/json rejects with fmt.Sprint output.
func sanitize(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	if v.Type().Implements(jsonMarshalerType) || v.Type().Implements(textMarshalerType) {
		if _, err := json.Marshal(v.Interface()); err == nil {
			return v.Interface(), nil
		}
		return fmt.Sprint(v.Interface()), nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		return sanitize(v.Elem())

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f), nil
		}
		return f, nil

	case reflect.Complex64, reflect.Complex128, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Sprint(v.Interface()), nil

	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		switch v.Type().Key().Kind() {
		case reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		default:
			if !v.Type().Key().Implements(textMarshalerType) {
				return nil, fmt.Errorf("unsupported map key type %s", v.Type().Key())
			}
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key, err := mapKey(iter.Key())
			if err != nil {
				return nil, err
			}
			val, err := sanitize(iter.Value())
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil

	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface(), nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := range v.Len() {
			val, err := sanitize(v.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil

	case reflect.Struct:
		if _, err := json.Marshal(v.Interface()); err == nil {
			return v.Interface(), nil
		}
		out := make(map[string]any, v.NumField())
		t := v.Type()
		for i := range v.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			val, err := sanitize(v.Field(i))
			if err != nil {
				return nil, err
			}
			out[f.Name] = val
		}
		return out, nil
	}

	return v.Interface(), nil
}

func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return fmt.Sprint(k.Interface()), nil
}
