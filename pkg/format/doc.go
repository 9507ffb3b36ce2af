// Package format defines file format definitions: reusable export
// configurations that turn business records into delimited text lines or
// per-record templated markup files.
//
// # Definitions
//
// A Definition names the model it exports, the destination (path and file
// name), the output kind and, for delimited output, an ordered list of
// FieldDefinition columns:
//
//	def := &format.Definition{
//	    Name:           "Partners",
//	    Model:          "party.party",
//	    Kind:           format.KindDelimited,
//	    OutputPath:     "/var/exports",
//	    OutputFileName: "partners.csv",
//	    IncludeHeader:  true,
//	    Separator:      ",",
//	    QuoteChar:      `"`,
//	    Fields: []format.FieldDefinition{
//	        {Name: "code", Sequence: 1, Expression: "$code", Length: 8, FillCharacter: "0", Align: format.AlignRight},
//	        {Name: "name", Sequence: 2, Expression: "$name"},
//	    },
//	}
//
// Fields are exported in ascending Sequence order (see OrderedFields).
//
// # Subpackages
//
//   - expression: evaluates field expressions against a record
//   - field: formats evaluated values and assembles lines
//   - writer: writes delimited and templated output files
//   - export: dispatches an export run for a definition and a list of ids
//   - source: loads definitions from YAML files
//
// # Errors
//
// ConfigurationError is returned for unknown output kinds. ExpressionError
// and WriteError describe failures that are logged and, by default,
// suppressed so that a batch keeps running.
package format
