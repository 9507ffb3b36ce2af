package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"mercator-hq/fileformat/pkg/format"
)

// Source loads format definitions.
type Source interface {
	// Load returns every definition, with defaults applied and validated.
	Load(ctx context.Context) ([]*format.Definition, error)
}

// document is the on-disk layout: either a list under "formats" or a
// single definition at the top level.
type document struct {
	Formats []*format.Definition `yaml:"formats"`
}

// FileSource loads format definitions from YAML files on disk.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a new file-based format source.
// The path can be either a single file or a directory.
// If it's a directory, all .yaml and .yml files below it are loaded.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger.With("component", "format.source"),
	}
}

// Path returns the configured file or directory.
func (s *FileSource) Path() string {
	return s.path
}

// Load loads all definitions from the configured path.
//
// In a directory, files that cannot be read or parsed are logged and
// skipped. A single configured file that cannot be parsed is an error. An
// invalid definition or a duplicate name always fails the whole load.
func (s *FileSource) Load(ctx context.Context) ([]*format.Definition, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	files := []string{s.path}
	if info.IsDir() {
		files, err = s.yamlFiles()
		if err != nil {
			return nil, err
		}
	}

	var defs []*format.Definition
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loaded, err := s.loadFile(path)
		if err != nil {
			if !info.IsDir() {
				return nil, err
			}
			s.logger.Warn("failed to load format file, skipping",
				"path", path,
				"error", err,
			)
			continue
		}
		defs = append(defs, loaded...)
	}

	if err := checkDefinitions(defs); err != nil {
		return nil, err
	}

	s.logger.Info("loaded formats from source",
		"path", s.path,
		"file_count", len(files),
		"format_count", len(defs),
	)

	return defs, nil
}

// yamlFiles lists the YAML files below the source directory in lexical
// order, skipping hidden files and directories.
func (s *FileSource) yamlFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != s.path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if IsFormatFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}
	sort.Strings(files)
	return files, nil
}

// loadFile parses every YAML document of a file.
func (s *FileSource) loadFile(path string) ([]*format.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse format file %q: %w", path, err)
	}
	for _, def := range defs {
		def.SourceFile = path
	}

	s.logger.Debug("loaded format file",
		"path", path,
		"format_count", len(defs),
	)

	return defs, nil
}

// Parse decodes format definitions from YAML. Each document holds either a
// "formats" list or a single definition. Defaults are applied to every
// definition.
func Parse(data []byte) ([]*format.Definition, error) {
	var defs []*format.Definition

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		if isEmptyDocument(&node) {
			continue
		}

		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		if len(doc.Formats) > 0 {
			defs = append(defs, doc.Formats...)
			continue
		}

		var def format.Definition
		if err := node.Decode(&def); err != nil {
			return nil, err
		}
		defs = append(defs, &def)
	}

	for _, def := range defs {
		if def == nil {
			return nil, errors.New("empty format entry")
		}
		def.ApplyDefaults()
	}
	return defs, nil
}

func isEmptyDocument(node *yaml.Node) bool {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return true
		}
		node = node.Content[0]
	}
	return len(node.Content) == 0 && (node.Kind == yaml.MappingNode || node.Tag == "!!null")
}

// IsFormatFile reports whether path has a YAML extension.
func IsFormatFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// checkDefinitions validates every definition and rejects duplicate names.
func checkDefinitions(defs []*format.Definition) error {
	seen := make(map[string]string, len(defs))
	var errs []error
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, ok := seen[def.Name]; ok {
			errs = append(errs, fmt.Errorf("format %q defined twice (%s, %s)", def.Name, prev, def.SourceFile))
			continue
		}
		seen[def.Name] = def.SourceFile
	}
	return errors.Join(errs...)
}
