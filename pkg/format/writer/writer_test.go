package writer

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/fileformat/pkg/format"
	"mercator-hq/fileformat/pkg/record"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func delimitedDef(dir string, header bool) *format.Definition {
	return &format.Definition{
		Name:           "test",
		Kind:           format.KindDelimited,
		OutputPath:     dir,
		OutputFileName: "out.csv",
		IncludeHeader:  header,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPolicyFor(t *testing.T) {
	p, err := PolicyFor("")
	require.NoError(t, err)
	assert.Equal(t, ModeSuppress, p.Name())

	p, err = PolicyFor("STRICT")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, p.Name())

	_, err = PolicyFor("retry")
	assert.Error(t, err)

	cause := errors.New("boom")
	assert.NoError(t, Suppress.Handle(cause))
	assert.Equal(t, cause, Strict.Handle(cause))
}

func TestDelimitedWriter_HeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()
	def := delimitedDef(dir, true)
	w := NewDelimitedWriter(Options{})

	res, err := w.Write(def, "h1,h2", []string{"a,b"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.csv"), res.Path)
	assert.False(t, res.Failed())
	path := res.Path

	_, err = w.Write(def, "h1,h2", []string{"c,d", "e,f"})
	require.NoError(t, err)

	assert.Equal(t, "h1,h2\r\na,b\r\nc,d\r\ne,f\r\n", readFile(t, path))
}

func TestDelimitedWriter_WithoutHeader(t *testing.T) {
	dir := t.TempDir()
	def := delimitedDef(dir, false)
	w := NewDelimitedWriter(Options{})

	res, err := w.Write(def, "h1,h2", []string{"a,b"})
	require.NoError(t, err)

	assert.Equal(t, "a,b\r\n", readFile(t, res.Path))
}

func TestDelimitedWriter_ExistingFileGetsNoHeader(t *testing.T) {
	dir := t.TempDir()
	def := delimitedDef(dir, true)
	path := DelimitedPath(def)
	require.NoError(t, os.WriteFile(path, []byte("existing\r\n"), 0o644))

	w := NewDelimitedWriter(Options{})
	_, err := w.Write(def, "h1,h2", []string{"a,b"})
	require.NoError(t, err)

	assert.Equal(t, "existing\r\na,b\r\n", readFile(t, path))
}

func TestDelimitedWriter_NoLinesCreatesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	def := delimitedDef(dir, true)
	w := NewDelimitedWriter(Options{})

	res, err := w.Write(def, "h1,h2", nil)
	require.NoError(t, err)
	path := res.Path

	assert.Equal(t, "", readFile(t, path))

	// The file now exists, so later runs never add the header.
	_, err = w.Write(def, "h1,h2", []string{"a,b"})
	require.NoError(t, err)
	assert.Equal(t, "a,b\r\n", readFile(t, path))
}

func TestDelimitedWriter_EmptySeparatorLines(t *testing.T) {
	dir := t.TempDir()
	def := delimitedDef(dir, false)
	w := NewDelimitedWriter(Options{})

	res, err := w.Write(def, "", []string{"", "0001ACME"})
	require.NoError(t, err)
	assert.Equal(t, "\r\n0001ACME\r\n", readFile(t, res.Path))
}

func TestDelimitedWriter_FailureSuppressed(t *testing.T) {
	var logs bytes.Buffer
	def := delimitedDef(filepath.Join(t.TempDir(), "missing"), true)
	w := NewDelimitedWriter(Options{Logger: testLogger(&logs)})

	res, err := w.Write(def, "h", []string{"a"})
	assert.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Contains(t, logs.String(), "failed to write file")
	assert.Contains(t, logs.String(), "format=test")
}

func TestDelimitedWriter_FailureStrict(t *testing.T) {
	var logs bytes.Buffer
	def := delimitedDef(filepath.Join(t.TempDir(), "missing"), false)
	w := NewDelimitedWriter(Options{Logger: testLogger(&logs), Policy: Strict})

	_, err := w.Write(def, "h", []string{"a"})
	require.Error(t, err)

	var writeErr *format.WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, "test", writeErr.Format)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, logs.String(), "failed to write file")
}

func TestDelimitedWriter_CreateDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	def := delimitedDef(dir, false)
	w := NewDelimitedWriter(Options{CreateDirs: true})

	res, err := w.Write(def, "", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "a\r\n", readFile(t, res.Path))
}

func templatedDef(dir, tpl string) *format.Definition {
	return &format.Definition{
		Name:           "xml",
		Kind:           format.KindTemplated,
		OutputPath:     dir,
		OutputFileName: "_invoice.xml",
		Template:       tpl,
	}
}

func invoiceRecord() record.Record {
	return record.NewMapRecord("17", map[string]any{
		"number": "INV-17",
		"party":  record.NewMapRecord("3", map[string]any{"name": "Acme"}),
		"lines": []record.Record{
			record.NewMapRecord("1", map[string]any{"product": "bolt", "quantity": 4}),
			record.NewMapRecord("2", map[string]any{"product": "nut", "quantity": 9}),
		},
	})
}

func TestTemplatedWriter_WritesOneFilePerRecord(t *testing.T) {
	dir := t.TempDir()
	def := templatedDef(dir, `<invoice number="{{ record.number }}" party="{{ record.party.name }}">`+
		`{% for line in record.lines %}<line product="{{ line.product }}" qty="{{ line.quantity }}"/>{% endfor %}`+
		`</invoice>`)
	w := NewTemplatedWriter(Options{})

	res, err := w.Write(def, invoiceRecord())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "17_invoice.xml"), res.Path)
	path := res.Path

	assert.Equal(t,
		`<invoice number="INV-17" party="Acme"><line product="bolt" qty="4"/><line product="nut" qty="9"/></invoice>`,
		readFile(t, path))
}

func TestTemplatedWriter_OverwritesIdempotently(t *testing.T) {
	dir := t.TempDir()
	def := templatedDef(dir, "<n>{{ record.number }}</n>")
	w := NewTemplatedWriter(Options{})

	path := TemplatedPath(def, "17")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the output"), 0o644))

	_, err := w.Write(def, invoiceRecord())
	require.NoError(t, err)
	first := readFile(t, path)

	_, err = w.Write(def, invoiceRecord())
	require.NoError(t, err)

	assert.Equal(t, "<n>INV-17</n>", first)
	assert.Equal(t, first, readFile(t, path))
	assert.Len(t, w.templates, 1)
}

func TestTemplatedWriter_DefaultTemplate(t *testing.T) {
	dir := t.TempDir()
	def := templatedDef(dir, format.DefaultTemplate)
	w := NewTemplatedWriter(Options{})

	res, err := w.Write(def, invoiceRecord())
	require.NoError(t, err)
	path := res.Path
	// Jinja2 semantics may drop the single trailing newline.
	assert.Equal(t, strings.TrimRight(format.DefaultTemplate, "\n"), strings.TrimRight(readFile(t, path), "\n"))
}

func TestTemplatedWriter_RenderFailure(t *testing.T) {
	dir := t.TempDir()
	def := templatedDef(dir, "{% for %}")

	var logs bytes.Buffer
	suppressing := NewTemplatedWriter(Options{Logger: testLogger(&logs)})
	res, err := suppressing.Write(def, invoiceRecord())
	assert.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Contains(t, logs.String(), "failed to write file")
	assert.Contains(t, logs.String(), "record_id=17")

	strict := NewTemplatedWriter(Options{Logger: testLogger(&logs), Policy: Strict})
	_, err = strict.Write(def, invoiceRecord())
	var writeErr *format.WriteError
	require.True(t, errors.As(err, &writeErr))

	_, statErr := os.Stat(TemplatedPath(def, "17"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTemplatedWriter_UnwritableDestination(t *testing.T) {
	def := templatedDef(filepath.Join(t.TempDir(), "missing"), "x")
	w := NewTemplatedWriter(Options{Policy: Strict})

	_, err := w.Write(def, invoiceRecord())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTemplatedWriter_Check(t *testing.T) {
	w := NewTemplatedWriter(Options{})

	assert.NoError(t, w.Check(`<party code="{{ record.code }}"/>`))
	assert.NoError(t, w.Check(format.DefaultTemplate))
	assert.Error(t, w.Check(`{% for line in record.lines %}<line/>`))
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		fileName string
		recordID string
		wantFlat string
		wantTpl  string
	}{
		{"plain directory", "/srv/out", "a.csv", "7", "/srv/out/a.csv", "/srv/out/7a.csv"},
		{"trailing slash is optional", "/srv/out/", "a.csv", "7", "/srv/out/a.csv", "/srv/out/7a.csv"},
		{"empty directory", "", "a.csv", "7", "/a.csv", "/7a.csv"},
		{"record id used verbatim", "/srv/out", "_x.xml", "../7", "/srv/out/_x.xml", "/srv/out/../7_x.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &format.Definition{OutputPath: tt.dir, OutputFileName: tt.fileName}
			assert.Equal(t, tt.wantFlat, DelimitedPath(def))
			assert.Equal(t, tt.wantTpl, TemplatedPath(def, tt.recordID))
		})
	}
}
