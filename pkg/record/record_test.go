package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type partner struct {
	Name      string
	VATNumber string
	CreatedAt time.Time `record:"create_date"`
	Secret    string    `record:"-"`
	Lines     []*MapRecord
	internal  int
}

func TestMapRecord(t *testing.T) {
	r := NewMapRecord("7", map[string]any{"b": 2, "a": "x"})

	assert.Equal(t, "7", r.ID())
	assert.Equal(t, []string{"a", "b"}, r.Keys())

	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	r.Set("c", true)
	v, _ = r.Get("c")
	assert.Equal(t, true, v)

	assert.Empty(t, NewMapRecord("1", nil).Keys())
}

func TestFromStruct(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	r, err := FromStruct("3", &partner{Name: "Acme", VATNumber: "ES1", CreatedAt: created, Secret: "s", internal: 1})
	require.NoError(t, err)

	assert.Equal(t, "3", r.ID())
	assert.Equal(t, []string{"create_date", "lines", "name", "vat_number"}, r.Keys())

	v, ok := r.Get("vat_number")
	assert.True(t, ok)
	assert.Equal(t, "ES1", v)

	v, ok = r.Get("create_date")
	assert.True(t, ok)
	assert.Equal(t, created, v)

	// Case-insensitive fallback on the Go field name.
	v, ok = r.Get("vatnumber")
	assert.True(t, ok)
	assert.Equal(t, "ES1", v)

	_, ok = r.Get("nothing")
	assert.False(t, ok)

	_, ok = r.Get("secret")
	assert.False(t, ok)
}

func TestFromStruct_Errors(t *testing.T) {
	_, err := FromStruct("1", 42)
	assert.Error(t, err)

	var p *partner
	_, err = FromStruct("1", p)
	assert.Error(t, err)
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":       "name",
		"VATNumber":  "vat_number",
		"CreatedAt":  "created_at",
		"ID":         "id",
		"HTTPServer": "http_server",
		"already":    "already",
	}
	for in, want := range tests {
		assert.Equal(t, want, snakeCase(in), in)
	}
}

func TestTree(t *testing.T) {
	party := NewMapRecord("3", map[string]any{"name": "Acme"})
	r := NewMapRecord("17", map[string]any{
		"number": "INV-17",
		"party":  party,
		"lines": []Record{
			NewMapRecord("1", map[string]any{"qty": 4}),
		},
		"tags":  []*MapRecord{NewMapRecord("9", map[string]any{"label": "urgent"})},
		"extra": map[string]any{"nested": party},
		"mixed": []any{party, 1},
	})

	tree := Tree(r)

	assert.Equal(t, "17", tree["id"])
	assert.Equal(t, "INV-17", tree["number"])
	assert.Equal(t, map[string]any{"id": "3", "name": "Acme"}, tree["party"])
	assert.Equal(t, []any{map[string]any{"id": "1", "qty": 4}}, tree["lines"])
	assert.Equal(t, []any{map[string]any{"id": "9", "label": "urgent"}}, tree["tags"])
	assert.Equal(t, map[string]any{"nested": map[string]any{"id": "3", "name": "Acme"}}, tree["extra"])
	assert.Equal(t, []any{map[string]any{"id": "3", "name": "Acme"}, 1}, tree["mixed"])
}

func TestTree_AttributeOverridesID(t *testing.T) {
	tree := Tree(NewMapRecord("1", map[string]any{"id": 99}))
	assert.Equal(t, 99, tree["id"])
}

func TestTree_CyclicGraphIsBounded(t *testing.T) {
	a := NewMapRecord("a", map[string]any{})
	b := NewMapRecord("b", map[string]any{"a": a})
	a.Set("b", b)

	tree := Tree(a)
	require.NotNil(t, tree)

	depth := 0
	var node any = tree
	for node != nil {
		m, ok := node.(map[string]any)
		if !ok {
			break
		}
		depth++
		if next, ok := m["b"]; ok {
			node = next
		} else {
			node = m["a"]
		}
	}
	assert.LessOrEqual(t, depth, maxDepth+2)
}

func TestValue_Scalars(t *testing.T) {
	assert.Nil(t, Value(nil))
	assert.Equal(t, 5, Value(5))
	assert.Equal(t, "x", Value("x"))
	assert.Equal(t, []string{"a"}, Value([]string{"a"}))
}
