package writer

import (
	"fmt"
	"os"
	"sync"

	"github.com/nikolalohinski/gonja"
	"github.com/nikolalohinski/gonja/exec"

	"mercator-hq/fileformat/pkg/format"
	"mercator-hq/fileformat/pkg/record"
)

// RecordBinding is the template variable holding the rendered record.
const RecordBinding = "record"

// TemplatedWriter renders a format's template once per record and writes
// each result to its own file.
//
// Templates use Jinja2 syntax (github.com/nikolalohinski/gonja). The record
// is exposed as "record" with its full attribute tree:
//
//	<invoice number="{{ record.number }}">
//	{% for line in record.lines %}  <line qty="{{ line.quantity }}"/>
//	{% endfor %}</invoice>
type TemplatedWriter struct {
	opts Options

	mu        sync.Mutex
	templates map[string]*exec.Template
}

// NewTemplatedWriter creates a templated file writer.
func NewTemplatedWriter(opts Options) *TemplatedWriter {
	return &TemplatedWriter{
		opts:      opts.withDefaults("format.writer.templated"),
		templates: make(map[string]*exec.Template),
	}
}

// TemplatedPath returns the output file of one record: the record id
// followed by the format's file name, inside the output path. The id is used
// verbatim.
func TemplatedPath(def *format.Definition, recordID string) string {
	return outputFile(def.OutputPath, recordID+def.OutputFileName)
}

// Render renders the format's template for r.
func (w *TemplatedWriter) Render(def *format.Definition, r record.Record) (string, error) {
	tpl, err := w.template(def.Template)
	if err != nil {
		return "", err
	}
	ctx := map[string]interface{}{
		RecordBinding: record.Tree(r),
	}
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}

// Write renders the template for r and writes it to the record's file,
// replacing any previous content. Render and write failures are logged and
// passed through the configured FailurePolicy.
func (w *TemplatedWriter) Write(def *format.Definition, r record.Record) (Result, error) {
	path := TemplatedPath(def, r.ID())

	out, err := w.Render(def, r)
	if err != nil {
		return w.fail(def, r, path, err)
	}

	if w.opts.CreateDirs {
		if err := os.MkdirAll(def.OutputPath, 0o755); err != nil {
			return w.fail(def, r, path, err)
		}
	}

	if err := os.WriteFile(path, []byte(out), w.opts.FileMode); err != nil {
		return w.fail(def, r, path, err)
	}

	w.opts.Logger.Info("file written",
		"format", def.Name,
		"record_id", r.ID(),
		"path", path,
		"bytes", len(out),
	)
	return Result{Path: path}, nil
}

// Check parses a template without rendering it.
func (w *TemplatedWriter) Check(source string) error {
	_, err := w.template(source)
	return err
}

func (w *TemplatedWriter) template(source string) (*exec.Template, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if tpl, ok := w.templates[source]; ok {
		return tpl, nil
	}
	tpl, err := gonja.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	w.templates[source] = tpl
	return tpl, nil
}

func (w *TemplatedWriter) fail(def *format.Definition, r record.Record, path string, cause error) (Result, error) {
	err := format.NewWriteError(def.Name, path, cause)
	w.opts.Logger.Warn("failed to write file",
		"format", def.Name,
		"record_id", r.ID(),
		"path", path,
		"error", cause,
		"failure_mode", w.opts.Policy.Name(),
	)
	return Result{Path: path, Failure: err}, w.opts.Policy.Handle(err)
}
