package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/fileformat/pkg/cli"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = "fileformat.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fileformat",
	Short: "Export business records to delimited and templated files",
	Long: `Fileformat renders records from a SQLite database into files described by
YAML format definitions.

Delimited formats write one line per record to a shared file, with ordered,
fixed-width, quoted and number-formatted fields computed by expressions.
Templated formats render a Jinja2 template into one file per record.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the command's status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default \"fileformat.yaml\" when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
