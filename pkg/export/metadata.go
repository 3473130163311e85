package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Field is one metadata entry.
type Field struct {
	Key   string
	Value any
}

// Text returns the value as shown in workbook and report cells.
func (f Field) Text() string {
	return displayValue(f.Value)
}

// Metadata is an ordered set of key/value pairs describing a search.
// Insertion order is display order.
type Metadata []Field

// Get returns the value stored under key.
func (m Metadata) Get(key string) (any, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// With returns a copy of m with key set to value. An existing key keeps its
// position; a new key is appended.
func (m Metadata) With(key string, value any) Metadata {
	out := make(Metadata, len(m), len(m)+1)
	copy(out, m)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Field{Key: key, Value: value})
}

// MarshalJSON encodes metadata as a JSON object, preserving order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			v, _ = json.Marshal(displayValue(f.Value))
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// displayValue coerces a metadata value to the string shown in workbook and
// report cells.
func displayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "N/A"
	case string:
		return val
	case float64:
		return formatNumber(val)
	case float32:
		return formatNumber(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		if val {
			return "True"
		}
		return "False"
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case *time.Time:
		if val == nil {
			return "N/A"
		}
		return val.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}
