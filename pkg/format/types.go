package format

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Kind is the output strategy of a format.
type Kind string

const (
	// KindDelimited renders one separator-joined line per record into a shared file.
	KindDelimited Kind = "delimited"

	// KindTemplated renders the template once per record into its own file.
	KindTemplated Kind = "templated"
)

// Normalize maps the legacy kind names ("csv", "xml") onto their canonical
// values. Unknown kinds are returned unchanged so callers can report them.
func (k Kind) Normalize() Kind {
	switch strings.ToLower(strings.TrimSpace(string(k))) {
	case "delimited", "csv":
		return KindDelimited
	case "templated", "xml":
		return KindTemplated
	default:
		return k
	}
}

// Known reports whether k is a supported output kind.
func (k Kind) Known() bool {
	n := k.Normalize()
	return n == KindDelimited || n == KindTemplated
}

// Align controls which side of a fixed-width value receives the padding.
type Align string

const (
	// AlignLeft left-justifies the value (pads on the right). It is the default.
	AlignLeft Align = "left"

	// AlignRight right-justifies the value (pads on the left).
	AlignRight Align = "right"
)

// State is the lifecycle state of a format definition.
type State string

const (
	StateActive   State = "active"
	StateDisabled State = "disabled"
)

// DefaultTemplate is the template assigned to templated formats without one.
const DefaultTemplate = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"

// Definition is a reusable export configuration for one business object model.
// It is read-only at export time.
type Definition struct {
	// Name is the display label, also used as the registry key.
	Name string `yaml:"name" json:"name"`

	// Model is the business object model the record ids are resolved against.
	Model string `yaml:"model" json:"model"`

	// Kind selects the output strategy.
	Kind Kind `yaml:"kind" json:"kind"`

	// State is active or disabled. Scheduled jobs skip disabled formats.
	State State `yaml:"state" json:"state"`

	// OutputPath is the destination directory. A trailing slash is optional.
	OutputPath string `yaml:"path" json:"path"`

	// OutputFileName is the shared file name for delimited output, or the
	// per-record suffix appended to the record id for templated output.
	OutputFileName string `yaml:"file_name" json:"file_name"`

	// IncludeHeader writes a header line when the delimited file is created.
	IncludeHeader bool `yaml:"header" json:"header"`

	// Separator joins formatted fields. Empty means direct concatenation.
	Separator string `yaml:"separator" json:"separator"`

	// QuoteChar wraps every formatted field and header name when set.
	QuoteChar string `yaml:"quote" json:"quote"`

	// Template is the markup rendered once per record for templated output.
	Template string `yaml:"template" json:"template"`

	// Fields are the delimited columns. Use OrderedFields for export order.
	Fields []FieldDefinition `yaml:"fields" json:"fields"`

	// SourceFile is the file the definition was loaded from, if any.
	SourceFile string `yaml:"-" json:"source_file,omitempty"`
}

// FieldDefinition is one column of a delimited format.
type FieldDefinition struct {
	// Name is the header text.
	Name string `yaml:"name" json:"name"`

	// Sequence orders the fields ascending; ties keep declaration order.
	Sequence int `yaml:"sequence" json:"sequence"`

	// Expression is evaluated against the record. "$attr" reads attribute attr.
	Expression string `yaml:"expression" json:"expression"`

	// Length is the fixed width. Zero disables padding and truncation.
	Length int `yaml:"length" json:"length"`

	// FillCharacter pads values shorter than Length.
	FillCharacter string `yaml:"fill_character" json:"fill_character"`

	// Align selects the padded side when Length is set.
	Align Align `yaml:"align" json:"align"`

	// NumberFormat is a printf-style format applied to numeric values, e.g. "%.2f".
	NumberFormat string `yaml:"number_format" json:"number_format"`

	// DecimalCharacter replaces every "." of a rendered numeric value.
	DecimalCharacter string `yaml:"decimal_character" json:"decimal_character"`
}

// OrderedFields returns the fields sorted by ascending sequence. The sort is
// stable, so fields sharing a sequence keep their declaration order. The
// definition itself is not modified.
func (d *Definition) OrderedFields() []FieldDefinition {
	fields := make([]FieldDefinition, len(d.Fields))
	copy(fields, d.Fields)
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Sequence < fields[j].Sequence
	})
	return fields
}

// ApplyDefaults fills unset attributes with their default values.
func (d *Definition) ApplyDefaults() {
	if d.Kind == "" {
		d.Kind = KindDelimited
	}
	if d.State == "" {
		d.State = StateDisabled
	}
	if d.Kind.Normalize() == KindTemplated && d.Template == "" {
		d.Template = DefaultTemplate
	}
	for i := range d.Fields {
		if d.Fields[i].Align == "" {
			d.Fields[i].Align = AlignLeft
		}
	}
}

// Active reports whether the format is enabled.
func (d *Definition) Active() bool {
	return d.State == StateActive
}

// Validate checks the definition and returns a ValidationError listing every
// problem found, or nil.
func (d *Definition) Validate() error {
	var errs []string

	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(d.OutputFileName) == "" {
		errs = append(errs, "file_name is required")
	}
	if !d.Kind.Known() {
		errs = append(errs, fmt.Sprintf("kind must be one of: delimited, templated (got %q)", d.Kind))
	}
	switch d.State {
	case "", StateActive, StateDisabled:
	default:
		errs = append(errs, fmt.Sprintf("state must be one of: active, disabled (got %q)", d.State))
	}
	if d.State == StateActive && strings.TrimSpace(d.OutputPath) == "" {
		errs = append(errs, "path is required for active formats")
	}
	if utf8.RuneCountInString(d.Separator) > 1 {
		errs = append(errs, "separator must be a single character")
	}
	if utf8.RuneCountInString(d.QuoteChar) > 1 {
		errs = append(errs, "quote must be a single character")
	}

	for i, f := range d.Fields {
		prefix := fmt.Sprintf("fields[%d]", i)
		if f.Name != "" {
			prefix = fmt.Sprintf("fields[%d] (%s)", i, f.Name)
		}
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, prefix+": name is required")
		}
		if f.Length < 0 {
			errs = append(errs, prefix+": length must not be negative")
		}
		if f.Length > 0 && f.FillCharacter == "" {
			errs = append(errs, prefix+": fill_character is required when length is set")
		}
		if utf8.RuneCountInString(f.FillCharacter) > 1 {
			errs = append(errs, prefix+": fill_character must be a single character")
		}
		if utf8.RuneCountInString(f.DecimalCharacter) > 1 {
			errs = append(errs, prefix+": decimal_character must be a single character")
		}
		switch f.Align {
		case "", AlignLeft, AlignRight:
		default:
			errs = append(errs, prefix+": align must be one of: left, right")
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Format: d.Name, Errors: errs}
	}
	return nil
}
