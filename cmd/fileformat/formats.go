package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mercator-hq/fileformat/pkg/cli"
)

var formatsFlags struct {
	formats string
	output  string
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Inspect format definitions",
}

var formatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the loaded format definitions",
	Long: `List every loaded format definition.

Examples:
  fileformat formats list
  fileformat formats list --output json`,
	Args: cobra.NoArgs,
	RunE: runFormatsList,
}

var formatsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a format definition as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormatsShow,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
	formatsCmd.AddCommand(formatsListCmd, formatsShowCmd)

	formatsCmd.PersistentFlags().StringVar(&formatsFlags.formats, "formats", "", "format file or directory (overrides formats.path)")
	formatsListCmd.Flags().StringVarP(&formatsFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func runFormatsList(cmd *cobra.Command, args []string) error {
	output, err := cli.ParseOutputFormat(formatsFlags.output)
	if err != nil {
		return cli.NewConfigError("output", err)
	}

	a, err := newApp(cmd.Context(), cmd.ErrOrStderr(), appOptions{formatsPath: formatsFlags.formats})
	if err != nil {
		return err
	}
	defer a.Close()

	defs := a.registry.List()
	table := &cli.Table{
		Headers: []string{"NAME", "MODEL", "KIND", "STATE", "FIELDS", "PATH"},
		Rows:    make([][]string, 0, len(defs)),
	}
	for _, def := range defs {
		table.Rows = append(table.Rows, []string{
			def.Name,
			def.Model,
			string(def.Kind),
			string(def.State),
			strconv.Itoa(len(def.Fields)),
			def.OutputPath,
		})
	}
	if output == cli.FormatJSON {
		table.Data = defs
	}
	return cli.NewFormatter(output).FormatTo(cmd.OutOrStdout(), table)
}

func runFormatsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cmd.ErrOrStderr(), appOptions{formatsPath: formatsFlags.formats})
	if err != nil {
		return err
	}
	defer a.Close()

	def, err := a.registry.Get(args[0])
	if err != nil {
		return cli.NewConfigError("name", err)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return err
	}
	return enc.Close()
}
