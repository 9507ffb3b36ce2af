package record

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// Record is a read-only view of one business object. Attribute values are
// scalars (string, bool, integer and float kinds, time.Time), nested Records,
// slices of Records, or slices and maps of those.
type Record interface {
	// ID returns the record identifier used in log entries and file names.
	ID() string

	// Keys returns the attribute names the record exposes.
	Keys() []string

	// Get returns the named attribute and whether it exists.
	Get(name string) (any, bool)
}

// MapRecord is a Record backed by an attribute map.
type MapRecord struct {
	id    string
	attrs map[string]any
}

// NewMapRecord creates a record with the given id and attributes. The map is
// used as is; callers must not modify it afterwards.
func NewMapRecord(id string, attrs map[string]any) *MapRecord {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return &MapRecord{id: id, attrs: attrs}
}

// ID implements Record.
func (r *MapRecord) ID() string {
	return r.id
}

// Keys implements Record. Keys are sorted.
func (r *MapRecord) Keys() []string {
	keys := make([]string, 0, len(r.attrs))
	for k := range r.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get implements Record.
func (r *MapRecord) Get(name string) (any, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// Set stores an attribute. It is meant for record construction by lookup
// collaborators, before the record is handed to an export.
func (r *MapRecord) Set(name string, value any) {
	r.attrs[name] = value
}

// StructRecord exposes the exported fields of a struct as attributes.
// Attribute names are the snake_case form of the field names, or the name of
// a `record:"..."` tag when present. A tag of "-" hides the field.
type StructRecord struct {
	id    string
	value reflect.Value
	index map[string][]int
	fold  map[string][]int
	keys  []string
}

// FromStruct wraps a struct or pointer to struct.
func FromStruct(id string, v any) (*StructRecord, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot build record from non-struct type %s", rv.Kind())
	}

	r := &StructRecord{
		id:    id,
		value: rv,
		index: make(map[string][]int),
		fold:  make(map[string][]int),
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("record")
		if name == "-" {
			continue
		}
		if name == "" {
			name = snakeCase(f.Name)
		}
		r.index[name] = f.Index
		r.fold[strings.ToLower(f.Name)] = f.Index
		r.keys = append(r.keys, name)
	}
	sort.Strings(r.keys)
	return r, nil
}

// ID implements Record.
func (r *StructRecord) ID() string {
	return r.id
}

// Keys implements Record.
func (r *StructRecord) Keys() []string {
	return r.keys
}

// Get implements Record. Lookups fall back to a case-insensitive match on the
// Go field name. Hidden fields are never returned.
func (r *StructRecord) Get(name string) (any, bool) {
	if idx, ok := r.index[name]; ok {
		return r.value.FieldByIndex(idx).Interface(), true
	}
	if idx, ok := r.fold[strings.ToLower(name)]; ok {
		return r.value.FieldByIndex(idx).Interface(), true
	}
	return nil, false
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
