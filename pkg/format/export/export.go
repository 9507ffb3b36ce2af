package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/fileformat/pkg/format"
	"mercator-hq/fileformat/pkg/format/expression"
	"mercator-hq/fileformat/pkg/format/field"
	"mercator-hq/fileformat/pkg/format/writer"
	"mercator-hq/fileformat/pkg/record"
)

// Resolver loads the records of a model by id.
type Resolver interface {
	// Resolve returns the records for ids in the order requested.
	Resolve(ctx context.Context, model string, ids []string) ([]record.Record, error)
}

// Lister enumerates the record ids of a model.
type Lister interface {
	IDs(ctx context.Context, model string) ([]string, error)
}

// Observer is notified about export activity. Implementations must be safe
// for concurrent use.
type Observer interface {
	// ObserveExport is called once per completed run.
	ObserveExport(result *Result, duration time.Duration)

	// ObserveFieldError is called for every field that degraded to an empty
	// value.
	ObserveFieldError(formatName, fieldName string)

	// ObserveWriteFailure is called for every failed file write.
	ObserveWriteFailure(formatName string, kind format.Kind)
}

// Result summarizes one export run.
type Result struct {
	RunID         string      `json:"run_id"`
	Format        string      `json:"format"`
	Kind          format.Kind `json:"kind"`
	Records       int         `json:"records"`
	Paths         []string    `json:"paths"`
	FieldErrors   int         `json:"field_errors"`
	WriteFailures int         `json:"write_failures"`
}

// Config configures an Exporter.
type Config struct {
	// Resolver loads records. Required.
	Resolver Resolver

	// Evaluator evaluates field expressions. Defaults to expression.New().
	Evaluator *expression.Evaluator

	// Observer receives run results. Optional.
	Observer Observer

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Writer configures the delimited and templated writers.
	Writer writer.Options
}

// Exporter renders records through format definitions and writes the
// resulting files. An Exporter is safe for concurrent use, but concurrent
// runs of the same delimited format interleave their lines.
type Exporter struct {
	resolver  Resolver
	evaluator *expression.Evaluator
	observer  Observer
	logger    *slog.Logger
	delimited *writer.DelimitedWriter
	templated *writer.TemplatedWriter
}

// New creates an Exporter.
func New(cfg Config) (*Exporter, error) {
	if cfg.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if cfg.Evaluator == nil {
		cfg.Evaluator = expression.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Writer.Logger == nil {
		cfg.Writer.Logger = cfg.Logger
	}

	return &Exporter{
		resolver:  cfg.Resolver,
		evaluator: cfg.Evaluator,
		observer:  cfg.Observer,
		logger:    cfg.Logger.With("component", "format.export"),
		delimited: writer.NewDelimitedWriter(cfg.Writer),
		templated: writer.NewTemplatedWriter(cfg.Writer),
	}, nil
}

// Export resolves ids against the format's model and writes them through
// def.
//
// A format whose kind is unknown returns a *format.ConfigurationError before
// any record is resolved or file touched. Expression and write failures are
// logged and counted in the Result; write failures are returned only under
// the strict failure policy.
func (e *Exporter) Export(ctx context.Context, def *format.Definition, ids []string) (*Result, error) {
	kind := def.Kind.Normalize()
	if !kind.Known() {
		return nil, format.NewConfigurationError(def.Name, def.Kind)
	}

	records, err := e.resolver.Resolve(ctx, def.Model, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve records for format %q: %w", def.Name, err)
	}

	return e.Write(def, records)
}

// Write renders already resolved records through def.
func (e *Exporter) Write(def *format.Definition, records []record.Record) (*Result, error) {
	kind := def.Kind.Normalize()
	if !kind.Known() {
		return nil, format.NewConfigurationError(def.Name, def.Kind)
	}

	start := time.Now()
	result := &Result{
		RunID:   uuid.New().String(),
		Format:  def.Name,
		Kind:    kind,
		Records: len(records),
	}
	logger := e.logger.With("run_id", result.RunID, "format", def.Name)
	logger.Debug("export started", "kind", kind, "records", len(records))

	var err error
	switch kind {
	case format.KindDelimited:
		err = e.writeDelimited(logger, def, records, result)
	case format.KindTemplated:
		err = e.writeTemplated(def, records, result)
	}

	duration := time.Since(start)
	if e.observer != nil {
		e.observer.ObserveExport(result, duration)
	}
	logger.Info("export completed",
		"kind", kind,
		"records", result.Records,
		"files", len(result.Paths),
		"field_errors", result.FieldErrors,
		"write_failures", result.WriteFailures,
		"duration", duration,
	)

	return result, err
}

func (e *Exporter) writeDelimited(logger *slog.Logger, def *format.Definition, records []record.Record, result *Result) error {
	fields := def.OrderedFields()

	var header string
	lines := make([]string, 0, len(records))
	for i, r := range records {
		if i == 0 {
			header = field.AssembleHeader(fields, def.Separator, def.QuoteChar)
		}
		lines = append(lines, e.renderLine(logger, def, fields, r, result))
	}

	res, err := e.delimited.Write(def, header, lines)
	e.collect(def, res, result)
	return err
}

func (e *Exporter) writeTemplated(def *format.Definition, records []record.Record, result *Result) error {
	for _, r := range records {
		res, err := e.templated.Write(def, r)
		e.collect(def, res, result)
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) collect(def *format.Definition, res writer.Result, result *Result) {
	if res.Failed() {
		result.WriteFailures++
		if e.observer != nil {
			e.observer.ObserveWriteFailure(def.Name, result.Kind)
		}
		return
	}
	result.Paths = append(result.Paths, res.Path)
}

// renderLine renders one record as a delimited line. A field whose expression
// fails is logged and rendered from the empty string.
func (e *Exporter) renderLine(logger *slog.Logger, def *format.Definition, fields []format.FieldDefinition, r record.Record, result *Result) string {
	values := make([]string, len(fields))
	for i, f := range fields {
		raw, err := e.evaluator.Evaluate(f.Expression, r)
		if err != nil {
			e.fieldFailed(logger, def, f, r, err, result)
			raw = ""
		}

		s, err := field.Format(raw, f)
		if err != nil {
			logger.Warn("invalid number format",
				"field", f.Name,
				"record_id", r.ID(),
				"number_format", f.NumberFormat,
				"error", err,
			)
		}
		values[i] = field.Quote(s, def.QuoteChar)
	}
	return field.AssembleLine(values, def.Separator)
}

func (e *Exporter) fieldFailed(logger *slog.Logger, def *format.Definition, f format.FieldDefinition, r record.Record, cause error, result *Result) {
	exprErr := format.NewExpressionError(def.Name, f.Name, r.ID(), f.Expression, cause)
	attrs := []any{
		"field", f.Name,
		"field_sequence", f.Sequence,
		"record_id", r.ID(),
		"expression", f.Expression,
		"error", exprErr,
	}
	var panicErr *expression.PanicError
	if errors.As(cause, &panicErr) {
		attrs = append(attrs, "stack", string(panicErr.Stack))
	}
	logger.Warn("field expression failed", attrs...)

	result.FieldErrors++
	if e.observer != nil {
		e.observer.ObserveFieldError(def.Name, f.Name)
	}
}
