/*
Package cli provides helpers shared by the fileformat commands.

Output Formatting:

Commands print tables as aligned text, JSON or CSV depending on --output:

	format, err := cli.ParseOutputFormat(outputFlag)
	if err != nil {
		return err
	}
	table := &cli.Table{Headers: []string{"NAME", "KIND"}, Rows: rows}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, table); err != nil {
		return err
	}

Errors:

ConfigError marks problems found before any export ran; ExitCode maps it to
exit status 2 and every other error to 1.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
