package property

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Decode converts a loosely-typed record (as produced by encoding/json into
// an any) into a Record.
//
// Field extraction never fails: numeric strings become numbers, numbers
// become strings, and flags follow truthiness ("Yes", 1 and any other
// non-empty text are true; "No", "false" and 0 are false). JSON nulls, blank
// strings and values that cannot be read as the field's type leave the field
// absent. Decode fails only when v is not a mapping.
func Decode(v any) (*Record, error) {
	if v == nil {
		return nil, fmt.Errorf("decoding property record: record is null")
	}
	switch r := v.(type) {
	case *Record:
		return r, nil
	case Record:
		return &r, nil
	}
	if kind := reflect.ValueOf(v).Kind(); kind != reflect.Map {
		return nil, fmt.Errorf("decoding property record: expected a mapping, got %s", kind)
	}

	var rec Record
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		WeaklyTypedInput: true,
		DecodeHook:       lenientHook,
	})
	if err != nil {
		return nil, fmt.Errorf("creating record decoder: %w", err)
	}
	if err := dec.Decode(v); err != nil {
		return nil, fmt.Errorf("decoding property record: %w", err)
	}
	return &rec, nil
}

// lenientHook rewrites values the weak decoder would reject. A nil result
// leaves the target field unset.
func lenientHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	target := to
	if target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	switch target.Kind() {
	case reflect.String:
		if isComposite(from) {
			return nil, nil
		}
	case reflect.Float64:
		return looseNumber(from, data), nil
	case reflect.Bool:
		return truthy(data), nil
	case reflect.Struct, reflect.Map:
		if from.Kind() != reflect.Map {
			return nil, nil
		}
	case reflect.Slice:
		if from.Kind() == reflect.Map {
			return nil, nil
		}
	}
	return data, nil
}

func isComposite(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}

// looseNumber accepts numbers, booleans and numeric text such as "1,250" or
// "$350000". Anything else is dropped.
func looseNumber(from reflect.Type, data any) any {
	if s, ok := data.(string); ok {
		s = strings.NewReplacer(",", "", "$", "").Replace(strings.TrimSpace(s))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return f
	}
	if isComposite(from) {
		return nil
	}
	return data
}

func truthy(data any) any {
	switch v := data.(type) {
	case nil:
		return nil
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "":
			return nil
		case "no", "n", "false", "f", "0":
			return false
		}
		return true
	}
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	}
	return !rv.IsZero()
}
