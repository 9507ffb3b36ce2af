package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/fileformat/pkg/cli"
	"mercator-hq/fileformat/pkg/config"
	"mercator-hq/fileformat/pkg/format"
	"mercator-hq/fileformat/pkg/format/expression"
	"mercator-hq/fileformat/pkg/format/writer"
)

var validateFlags struct {
	formats string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and format definitions",
	Long: `Validate the configuration file and every format definition without
exporting anything.

The following checks are made:
  - configuration syntax and values
  - format definition syntax, required attributes and duplicate names
  - field expressions compile
  - templates parse
  - formats reference a configured record model
  - scheduled jobs reference a loaded format

Examples:
  # Validate the default configuration
  fileformat validate

  # Validate a different formats directory
  fileformat validate --formats ./formats`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.formats, "formats", "", "format file or directory (overrides formats.path)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := newApp(cmd.Context(), cmd.ErrOrStderr(), appOptions{formatsPath: validateFlags.formats})
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(out, "✓ Configuration is valid")

	defs := a.registry.List()
	fmt.Fprintf(out, "✓ Loaded %d format definition(s) from %s\n", len(defs), a.cfg.Formats.Path)

	evaluator := expression.New()
	templates := writer.NewTemplatedWriter(writer.Options{Logger: a.logger.Slog()})

	var problems []string
	for _, def := range defs {
		problems = append(problems, checkDefinition(def, evaluator, templates, a.cfg.Records.Models)...)
	}
	for _, job := range a.cfg.Jobs {
		if _, err := a.registry.Get(job.Format); err != nil {
			problems = append(problems, fmt.Sprintf("job %q: format %q is not loaded", job.Name, job.Format))
		}
	}

	if len(problems) > 0 {
		printProblems(out, problems)
		return cli.NewConfigError("formats", fmt.Errorf("%d problem(s) found", len(problems)))
	}

	fmt.Fprintln(out, "✓ Expressions and templates compile")
	if len(a.cfg.Jobs) > 0 {
		fmt.Fprintf(out, "✓ %d scheduled job(s) reference loaded formats\n", len(a.cfg.Jobs))
	}
	return nil
}

// checkDefinition returns the problems of one loaded definition. Models are
// checked only when the configuration declares some.
func checkDefinition(def *format.Definition, evaluator *expression.Evaluator, templates *writer.TemplatedWriter, models map[string]config.ModelConfig) []string {
	var problems []string

	if len(models) > 0 {
		if _, ok := models[def.Model]; !ok {
			problems = append(problems, fmt.Sprintf("format %q: model %q is not configured under records.models", def.Name, def.Model))
		}
	}

	switch def.Kind.Normalize() {
	case format.KindDelimited:
		for _, f := range def.OrderedFields() {
			if err := evaluator.Check(f.Expression); err != nil {
				problems = append(problems, fmt.Sprintf("format %q field %q: %v", def.Name, f.Name, err))
			}
		}
	case format.KindTemplated:
		if err := templates.Check(def.Template); err != nil {
			problems = append(problems, fmt.Sprintf("format %q template: %v", def.Name, err))
		}
	}
	return problems
}

func printProblems(w io.Writer, problems []string) {
	fmt.Fprintf(w, "✗ %d problem(s) found:\n", len(problems))
	for _, p := range problems {
		fmt.Fprintf(w, "  - %s\n", p)
	}
}
