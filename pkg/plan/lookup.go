package plan

import (
	"reflect"
	"strconv"
	"strings"

	"digital.vasic.pavlov/pkg/introspect"
)

// Lookup walks a dotted path such as "response.items.0.id"
// through nested maps and slices. An empty path returns values
// itself; any segment that does not resolve yields Undefined.
func Lookup(values any, path string) any {
	path = strings.TrimSpace(path)
	if path == "" {
		return values
	}

	current := values
	for _, segment := range strings.Split(path, ".") {
		next, ok := child(current, segment)
		if !ok {
			return introspect.Undefined
		}
		current = next
	}
	return current
}

func child(v any, key string) (any, bool) {
	switch node := v.(type) {
	case map[string]any:
		next, ok := node[key]
		return next, ok
	case map[any]any:
		next, ok := node[key]
		return next, ok
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(node) {
			return nil, false
		}
		return node[i], true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		next := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !next.IsValid() {
			return nil, false
		}
		return next.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}
