package record

import "reflect"

// maxDepth bounds Tree against cyclic record graphs.
const maxDepth = 16

// Tree materializes a record into nested maps and slices so that template
// engines and expression evaluators can walk it. Nested Records become
// map[string]any values and collections of Records become []any.
func Tree(r Record) map[string]any {
	return tree(r, 0)
}

// Value converts a single attribute value the way Tree does.
func Value(v any) any {
	return value(v, 0)
}

func tree(r Record, depth int) map[string]any {
	out := make(map[string]any)
	if r == nil {
		return out
	}
	out["id"] = r.ID()
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		out[k] = value(v, depth+1)
	}
	return out
}

func value(v any, depth int) any {
	if depth > maxDepth {
		return nil
	}
	switch t := v.(type) {
	case nil:
		return nil
	case Record:
		return tree(t, depth)
	case []Record:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = tree(item, depth)
		}
		return items
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[k] = value(item, depth+1)
		}
		return m
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = value(item, depth+1)
		}
		return items
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Implements(recordType) {
		items := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = value(rv.Index(i).Interface(), depth)
		}
		return items
	}
	return v
}

var recordType = reflect.TypeOf((*Record)(nil)).Elem()
