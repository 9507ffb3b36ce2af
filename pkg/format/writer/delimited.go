package writer

import (
	"bytes"
	"log/slog"
	"os"
	"strings"

	"mercator-hq/fileformat/pkg/format"
)

// LineTerminator ends every line of a delimited file.
const LineTerminator = "\r\n"

// DefaultFileMode is the permission used for created output files.
const DefaultFileMode os.FileMode = 0o644

// Options configures the writers.
type Options struct {
	// Logger receives write results and failures. Defaults to slog.Default().
	Logger *slog.Logger

	// Policy decides whether failures are returned. Defaults to Suppress.
	Policy FailurePolicy

	// CreateDirs creates a missing output directory instead of failing.
	CreateDirs bool

	// FileMode is the permission of created files. Defaults to DefaultFileMode.
	FileMode os.FileMode
}

func (o Options) withDefaults(component string) Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	o.Logger = o.Logger.With("component", component)
	if o.Policy == nil {
		o.Policy = Suppress
	}
	if o.FileMode == 0 {
		o.FileMode = DefaultFileMode
	}
	return o
}

// DelimitedWriter appends delimited lines to the single shared file of a
// format.
type DelimitedWriter struct {
	opts Options
}

// NewDelimitedWriter creates a delimited file writer.
func NewDelimitedWriter(opts Options) *DelimitedWriter {
	return &DelimitedWriter{opts: opts.withDefaults("format.writer.delimited")}
}

// DelimitedPath returns the shared output file of a delimited format.
func DelimitedPath(def *format.Definition) string {
	return outputFile(def.OutputPath, def.OutputFileName)
}

// outputFile joins the output directory and a file name with a single slash.
// Unlike filepath.Join the name is not cleaned, so it is used verbatim, and
// an empty directory yields "/name".
func outputFile(dir, name string) string {
	return strings.TrimSuffix(dir, "/") + "/" + name
}

// Write appends lines to the format's output file, creating it if needed.
//
// When the format includes a header and the file does not exist yet, the
// file is created and the header is written first. An existing file never
// receives the header again, so repeated exports grow a single file with one
// header. The header accompanies the first line of a run, so a run without
// lines creates the file but leaves it empty.
//
// Failures are logged and passed through the configured FailurePolicy.
func (w *DelimitedWriter) Write(def *format.Definition, header string, lines []string) (Result, error) {
	path := DelimitedPath(def)

	if w.opts.CreateDirs {
		if err := os.MkdirAll(def.OutputPath, 0o755); err != nil {
			return w.fail(def, path, err)
		}
	}

	if def.IncludeHeader && !isRegularFile(path) {
		var content []byte
		if len(lines) > 0 {
			content = []byte(header + LineTerminator)
		}
		if err := os.WriteFile(path, content, w.opts.FileMode); err != nil {
			return w.fail(def, path, err)
		}
	}

	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteString(LineTerminator)
	}

	if err := appendFile(path, buf.Bytes(), w.opts.FileMode); err != nil {
		return w.fail(def, path, err)
	}

	w.opts.Logger.Info("file written",
		"format", def.Name,
		"path", path,
		"lines", len(lines),
	)
	return Result{Path: path}, nil
}

func (w *DelimitedWriter) fail(def *format.Definition, path string, cause error) (Result, error) {
	err := format.NewWriteError(def.Name, path, cause)
	w.opts.Logger.Warn("failed to write file",
		"format", def.Name,
		"path", path,
		"error", cause,
		"failure_mode", w.opts.Policy.Name(),
	)
	return Result{Path: path, Failure: err}, w.opts.Policy.Handle(err)
}

// appendFile opens path in append mode and writes data in a single call.
func appendFile(path string, data []byte, mode os.FileMode) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, mode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = f.Write(data)
	return err
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
