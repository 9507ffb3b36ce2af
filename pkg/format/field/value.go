package field

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// IsNumeric reports whether v is an integer or floating point value.
// Booleans count as integers (1 and 0), so number formats apply to them.
func IsNumeric(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Stringify returns the default text representation of an evaluated value.
// Floats always carry a fractional part ("14.0"), booleans render as "True"
// and "False", nil renders as "".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case time.Time:
		if t.Nanosecond() == 0 {
			return t.Format("2006-01-02 15:04:05")
		}
		return t.Format("2006-01-02 15:04:05.000000")
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// verb matches one printf-style conversion, including the "%%" escape.
// Length modifiers (h, l, L) are accepted and ignored.
var verb = regexp.MustCompile(`%([#0\- +]*)(\d+)?(?:\.(\d+))?[hlL]?([diouxXeEfFgGcrsa%])`)

// FormatNumber renders v with a printf-style number format such as "%.2f",
// "%05d" or "%+.3e". The format must contain exactly one conversion. Integer
// conversions truncate floats toward zero; float conversions accept integers.
func FormatNumber(format string, v any) (string, error) {
	if !IsNumeric(v) {
		return "", fmt.Errorf("number format %q applied to non-numeric value %T", format, v)
	}

	var (
		b           strings.Builder
		conversions int
		last        int
	)
	for _, m := range verb.FindAllStringSubmatchIndex(format, -1) {
		literal := format[last:m[0]]
		if strings.ContainsRune(literal, '%') {
			return "", fmt.Errorf("unsupported conversion in number format %q", format)
		}
		b.WriteString(literal)
		last = m[1]

		conv := format[m[8]:m[9]]
		if conv == "%" {
			b.WriteString("%")
			continue
		}
		conversions++

		flags := submatch(format, m, 1)
		width := submatch(format, m, 2)
		precision := submatch(format, m, 3)
		directive := "%" + flags + width
		if m[6] >= 0 {
			directive += "." + precision
		}

		switch conv {
		case "d", "i", "u":
			b.WriteString(fmt.Sprintf(directive+"d", toInt(v)))
		case "o", "x", "X":
			b.WriteString(fmt.Sprintf(directive+conv, toInt(v)))
		case "c":
			b.WriteString(fmt.Sprintf(directive+"c", rune(toInt(v))))
		case "e", "E", "f", "F":
			b.WriteString(fmt.Sprintf(directive+conv, toFloat(v)))
		case "g", "G":
			if m[6] < 0 {
				directive += ".6"
			}
			b.WriteString(fmt.Sprintf(directive+conv, toFloat(v)))
		case "s", "r", "a":
			b.WriteString(fmt.Sprintf(directive+"s", Stringify(v)))
		}
	}
	tail := format[last:]
	if strings.ContainsRune(tail, '%') {
		return "", fmt.Errorf("unsupported conversion in number format %q", format)
	}
	b.WriteString(tail)

	if conversions != 1 {
		return "", fmt.Errorf("number format %q must contain exactly one conversion, found %d", format, conversions)
	}
	return b.String(), nil
}

func submatch(s string, m []int, group int) string {
	if m[2*group] < 0 {
		return ""
	}
	return s[m[2*group]:m[2*group+1]]
}

func toInt(v any) int64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return 1
		}
		return 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return int64(math.Trunc(rv.Float()))
	}
	return 0
}

func toFloat(v any) float64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return float64(toInt(v))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return 0
}

// Unaccent decomposes s (NFKD) and drops every non-ASCII rune, so "Café"
// becomes "Cafe" and "ß" disappears.
func Unaccent(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
