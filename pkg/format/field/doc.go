// Package field formats evaluated field values and assembles delimited lines.
//
// Format applies a field's rules to a raw value in a fixed order:
//
//  1. numeric values: NumberFormat (printf style, e.g. "%.2f"), then every
//     "." is replaced with DecimalCharacter
//  2. NFKD decomposition, dropping every non-ASCII rune
//  3. Length > 0: pad with FillCharacter (left for right alignment, right
//     otherwise), then truncate to exactly Length characters
//
// Quote then wraps the value in the format's quote character, swapping
// embedded quotes of the same kind for the other kind:
//
//	raw 14, "%.2f", decimal ","          -> "14,00"
//	raw "File Format", length 15 "-" right -> "----File Format"
//	raw `He said "hi"`, quote `"`          -> `"He said 'hi'"`
package field
