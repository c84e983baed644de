package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is an untyped payload as decoded from the remote API.
type Record = map[string]any

// Get walks record along path. String segments index objects, int segments
// index sequences. Any missing, nil or type-mismatched segment yields
// (nil, false).
func Get(record any, path ...any) (any, bool) {
	current := record
	for _, segment := range path {
		if current == nil {
			return nil, false
		}

		switch key := segment.(type) {
		case string:
			object, ok := asObject(current)
			if !ok {
				return nil, false
			}
			value, found := object[key]
			if !found {
				return nil, false
			}
			current = value

		case int:
			list, ok := current.([]any)
			if !ok || key < 0 || key >= len(list) {
				return nil, false
			}
			current = list[key]

		default:
			return nil, false
		}
	}

	if current == nil {
		return nil, false
	}
	return current, true
}

// String returns the value at path as a string. Numbers and booleans are
// formatted; anything else yields "".
func String(record any, path ...any) string {
	value, ok := Get(record, path...)
	if !ok {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Int64 returns the value at path as an integer. Numeric strings are parsed,
// fractional values are truncated; anything else yields (0, false).
func Int64(record any, path ...any) (int64, bool) {
	value, ok := Get(record, path...)
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case json.Number:
		return parseInt(v.String())
	case string:
		return parseInt(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// Strings returns the string elements of the sequence at path. Non-string
// elements are skipped; the result is never nil.
func Strings(record any, path ...any) []string {
	result := []string{}

	value, ok := Get(record, path...)
	if !ok {
		return result
	}

	switch v := value.(type) {
	case []string:
		return append(result, v...)
	case []any:
		for _, element := range v {
			if s, ok := element.(string); ok {
				result = append(result, s)
			}
		}
	}

	return result
}

// Records returns the object elements of the sequence at path. Non-object
// elements are skipped; the result is never nil.
func Records(record any, path ...any) []Record {
	result := []Record{}

	value, ok := Get(record, path...)
	if !ok {
		return result
	}

	list, ok := value.([]any)
	if !ok {
		return result
	}

	for _, element := range list {
		if object, ok := asObject(element); ok {
			result = append(result, object)
		}
	}

	return result
}

func asObject(value any) (map[string]any, bool) {
	object, ok := value.(map[string]any)
	return object, ok && object != nil
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
