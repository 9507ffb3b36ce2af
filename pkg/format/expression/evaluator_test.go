package expression

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/fileformat/pkg/record"
)

func testRecord() record.Record {
	fields := []record.Record{
		record.NewMapRecord("1", map[string]any{"name": "module"}),
		record.NewMapRecord("2", map[string]any{"name": "model"}),
		record.NewMapRecord("3", map[string]any{"name": "name"}),
	}
	return record.NewMapRecord("42", map[string]any{
		"module": "file_format",
		"model":  "file.format",
		"name":   "File Format",
		"qty":    3,
		"price":  2.5,
		"fields": fields,
		"party": map[string]any{
			"city": "Girona",
		},
	})
}

func TestRewrite(t *testing.T) {
	rewritten, names := Rewrite("len($fields) + $qty * $qty")

	assert.Equal(t, "len(instance.fields) + instance.qty * instance.qty", rewritten)
	assert.Equal(t, []string{"fields", "qty"}, names)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       any
	}{
		{name: "empty expression", expression: "", want: ""},
		{name: "blank expression", expression: "   ", want: ""},
		{name: "string attribute", expression: "$name", want: "File Format"},
		{name: "collection length", expression: "len($fields)", want: 3},
		{name: "integer arithmetic", expression: "$qty + 2", want: 5},
		{name: "float arithmetic", expression: "$price * 2", want: 5.0},
		{name: "comparison", expression: "$qty > 2", want: true},
		{name: "conditional", expression: `$qty > 5 ? "many" : "few"`, want: "few"},
		{name: "nested attribute", expression: "$party.city", want: "Girona"},
		{name: "index access", expression: "$fields[1].name", want: "model"},
		{name: "string concatenation", expression: `$module + "/" + $model`, want: "file_format/file.format"},
		{name: "literal", expression: "14", want: 14},
		{name: "record id fallback", expression: "$id", want: "42"},
	}

	ev := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Evaluate(tt.expression, testRecord())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		sentinel   error
	}{
		{name: "missing attribute", expression: "$missing", sentinel: ErrAttributeNotFound},
		{name: "missing attribute in arithmetic", expression: "$missing + 1", sentinel: ErrAttributeNotFound},
		{name: "syntax error", expression: "$name +"},
		{name: "builtin outside allowed set", expression: "upper($name)"},
		{name: "unknown identifier", expression: "os"},
		{name: "type error", expression: "$name - 1"},
		{name: "missing nested attribute", expression: "$party.vat_code", sentinel: ErrAttributeNotFound},
		{name: "missing attribute of indexed record", expression: "$fields[0].label", sentinel: ErrAttributeNotFound},
		{name: "method call", expression: `$name.Split(" ")`, sentinel: ErrCallNotAllowed},
		{name: "dot call of builtin", expression: "$name.upper()", sentinel: ErrCallNotAllowed},
		{name: "pipe into builtin", expression: "$fields | map(.name)", sentinel: ErrCallNotAllowed},
	}

	ev := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Evaluate(tt.expression, testRecord())
			require.Error(t, err)
			assert.Nil(t, got)
			if tt.sentinel != nil {
				assert.True(t, errors.Is(err, tt.sentinel), "expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestEvaluate_CachesPrograms(t *testing.T) {
	ev := New()

	_, err := ev.Evaluate("$qty * 2", testRecord())
	require.NoError(t, err)
	_, err = ev.Evaluate("$qty * 2", testRecord())
	require.NoError(t, err)

	assert.Len(t, ev.programs, 1)
}

func TestCheck(t *testing.T) {
	ev := New()

	assert.NoError(t, ev.Check(""))
	assert.NoError(t, ev.Check("len($fields) * 2"))
	assert.Error(t, ev.Check("$name +"))
	assert.Error(t, ev.Check("split($name, ' ')"))
}

func TestEvaluate_StructRecord(t *testing.T) {
	type invoice struct {
		Number    string
		TotalCost float64
		Lines     []string
	}

	r, err := record.FromStruct("7", invoice{Number: "INV-7", TotalCost: 12.5, Lines: []string{"a", "b"}})
	require.NoError(t, err)

	ev := New()

	got, err := ev.Evaluate("$number", r)
	require.NoError(t, err)
	assert.Equal(t, "INV-7", got)

	got, err = ev.Evaluate("$total_cost", r)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)

	got, err = ev.Evaluate("len($lines)", r)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestEvaluate_MethodCallsRejected(t *testing.T) {
	r := record.NewMapRecord("9", map[string]any{
		"created": time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC),
	})

	ev := New()
	for _, expression := range []string{
		"$created.Year()",
		"$created.AddDate(1, 0, 0).Year()",
		"$created.Format(\"2006\")",
	} {
		t.Run(expression, func(t *testing.T) {
			got, err := ev.Evaluate(expression, r)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, ErrCallNotAllowed), "got %v", err)
			assert.True(t, errors.Is(ev.Check(expression), ErrCallNotAllowed))
		})
	}

	// The value itself is still readable.
	got, err := ev.Evaluate("$created", r)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC), got)
}

func TestEvaluate_NestedRecordAttributes(t *testing.T) {
	party := record.NewMapRecord("5", map[string]any{"name": "ACME"})
	r := record.NewMapRecord("1", map[string]any{
		"party":   party,
		"partner": nil,
	})

	ev := New()

	got, err := ev.Evaluate("$party.name", r)
	require.NoError(t, err)
	assert.Equal(t, "ACME", got)

	got, err = ev.Evaluate("$party.id", r)
	require.NoError(t, err)
	assert.Equal(t, "5", got)

	_, err = ev.Evaluate("$party.vat_code", r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAttributeNotFound))
	assert.Contains(t, err.Error(), `"party.vat_code"`)

	// An empty relation is nil, not a record with missing keys.
	got, err = ev.Evaluate("$partner == nil", r)
	require.NoError(t, err)
	assert.Equal(t, true, got)
}
