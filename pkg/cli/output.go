package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is aligned plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output, for tables only.
	FormatCSV OutputFormat = "csv"
)

// ParseOutputFormat validates an --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be one of: text, json, csv)", s)
	}
}

// Table is tabular command output. JSON output uses Data when set, so a
// command can print rich objects as JSON and a summary table as text.
type Table struct {
	Headers []string
	Rows    [][]string
	Data    any
}

// Formatter writes command output.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// TextFormatter writes tables as aligned columns and anything else with %v.
type TextFormatter struct{}

// FormatTo implements Formatter.
func (TextFormatter) FormatTo(w io.Writer, data any) error {
	table, ok := data.(*Table)
	if !ok {
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(table.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(table.Headers, "\t"))
	}
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// JSONFormatter writes JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTo implements Formatter.
func (f JSONFormatter) FormatTo(w io.Writer, data any) error {
	if table, ok := data.(*Table); ok {
		data = table.Data
		if data == nil {
			data = tableObjects(table)
		}
	}

	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter writes tables as CSV.
type CSVFormatter struct{}

// FormatTo implements Formatter.
func (CSVFormatter) FormatTo(w io.Writer, data any) error {
	table, ok := data.(*Table)
	if !ok {
		return fmt.Errorf("csv output is not supported for %T", data)
	}

	cw := csv.NewWriter(w)
	if len(table.Headers) > 0 {
		if err := cw.Write(table.Headers); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return JSONFormatter{Indent: true}
	case FormatCSV:
		return CSVFormatter{}
	default:
		return TextFormatter{}
	}
}

// tableObjects turns rows into header-keyed objects.
func tableObjects(table *Table) []map[string]string {
	out := make([]map[string]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		obj := make(map[string]string, len(table.Headers))
		for i, h := range table.Headers {
			if i < len(row) {
				obj[strings.ToLower(h)] = row[i]
			}
		}
		out = append(out, obj)
	}
	return out
}
