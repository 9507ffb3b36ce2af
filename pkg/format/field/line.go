package field

import (
	"strings"

	"mercator-hq/fileformat/pkg/format"
)

// AssembleLine joins formatted column values with separator. An empty
// separator concatenates the values.
func AssembleLine(values []string, separator string) string {
	return strings.Join(values, separator)
}

// AssembleHeader builds the header line for fields, joined exactly like data
// lines.
func AssembleHeader(fields []format.FieldDefinition, separator, quote string) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = Header(f, quote)
	}
	return AssembleLine(names, separator)
}
