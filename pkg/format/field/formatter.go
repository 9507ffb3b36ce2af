package field

import (
	"strings"
	"unicode/utf8"

	"mercator-hq/fileformat/pkg/format"
)

// Format turns an evaluated value into its final column text, applying in
// order: number formatting and decimal character (numeric values only),
// diacritic stripping, and fixed-width padding and truncation. Quoting is a
// separate step, see Quote.
//
// A number format that cannot be applied falls back to the default numeric
// representation; the returned error describes the problem and the returned
// string is still usable.
func Format(raw any, f format.FieldDefinition) (string, error) {
	var (
		s   string
		err error
	)

	if IsNumeric(raw) {
		if f.NumberFormat != "" {
			s, err = FormatNumber(f.NumberFormat, raw)
			if err != nil {
				s = Stringify(raw)
			}
		} else {
			s = Stringify(raw)
		}
		if f.DecimalCharacter != "" {
			s = strings.ReplaceAll(s, ".", Unaccent(f.DecimalCharacter))
		}
	} else {
		s = Stringify(raw)
	}

	s = Unaccent(s)

	if f.Length > 0 {
		s = Fit(s, f.Length, fillRune(f.FillCharacter), f.Align)
	}

	return s, err
}

// Fit pads s with fill up to length characters, on the left for right
// alignment and on the right otherwise, then truncates the result to exactly
// length characters.
func Fit(s string, length int, fill rune, align format.Align) string {
	if n := utf8.RuneCountInString(s); n < length {
		pad := strings.Repeat(string(fill), length-n)
		if align == format.AlignRight {
			s = pad + s
		} else {
			s = s + pad
		}
	}

	if utf8.RuneCountInString(s) > length {
		r := []rune(s)
		s = string(r[:length])
	}
	return s
}

// Quote wraps s in quote. A double quote replaces embedded double quotes with
// single quotes, and a single quote does the reverse. An empty quote returns s
// unchanged.
func Quote(s, quote string) string {
	if quote == "" {
		return s
	}
	switch quote {
	case `"`:
		s = strings.ReplaceAll(s, `"`, "'")
	case "'":
		s = strings.ReplaceAll(s, "'", `"`)
	}
	return quote + s + quote
}

// Header returns the header text of a field: its diacritic-stripped name,
// wrapped in quote when set. Header names are not escaped.
func Header(f format.FieldDefinition, quote string) string {
	name := Unaccent(f.Name)
	if quote == "" {
		return name
	}
	return quote + name + quote
}

func fillRune(fill string) rune {
	fill = Unaccent(fill)
	if fill == "" {
		return ' '
	}
	r, _ := utf8.DecodeRuneInString(fill)
	return r
}
