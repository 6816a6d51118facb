package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

// BuildQuery flattens a filter mapping into a query string.
//
// Keys whose value is nil, a nil pointer/map/slice/interface, or an empty string
// (including empty named string types) are omitted entirely. Maps, slices, arrays and
// structs are JSON-encoded. Scalars use their natural string form. Keys are emitted in
// sorted order.
func BuildQuery(params map[string]any) string {
	values := url.Values{}
	for key, value := range params {
		if s, ok := queryValue(value); ok {
			values.Set(key, s)
		}
	}
	return values.Encode()
}

func queryValue(value any) (string, bool) {
	if value == nil {
		return "", false
	}

	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "", false
		}
		return v.String(), true
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), true
	case reflect.Map, reflect.Slice:
		if v.IsNil() {
			return "", false
		}
		return encodeJSON(v.Interface())
	case reflect.Array, reflect.Struct:
		return encodeJSON(v.Interface())
	default:
		return fmt.Sprint(v.Interface()), true
	}
}

func encodeJSON(v any) (string, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// withQuery appends a non-empty query string to path.
func withQuery(path string, params map[string]any) string {
	if params == nil {
		return path
	}
	if q := BuildQuery(params); q != "" {
		return path + "?" + q
	}
	return path
}
