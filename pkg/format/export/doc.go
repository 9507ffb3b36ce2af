// Package export runs file format exports.
//
// An Exporter resolves a list of record ids through a Resolver and hands the
// records to the writer matching the definition's kind:
//
//	exporter, err := export.New(export.Config{
//	    Resolver: resolver,
//	    Logger:   logger,
//	    Writer:   writer.Options{Policy: writer.Suppress},
//	})
//	if err != nil {
//	    return err
//	}
//
//	result, err := exporter.Export(ctx, def, []string{"12", "15"})
//	if err != nil {
//	    return err // configuration, resolver or strict write error
//	}
//	fmt.Println(result.RunID, result.Paths)
//
// # Delimited Output
//
// Each record becomes one line: the fields, in sequence order, are evaluated,
// formatted, quoted and joined with the separator. The header is built from
// the field names and written only when the output file does not exist yet.
//
// # Templated Output
//
// Each record is rendered through the definition's template into its own
// file named after the record id.
//
// # Failures
//
// An unknown kind returns a *format.ConfigurationError before anything is
// resolved or written. A failing field expression is logged, counted and the
// field renders from the empty string. Write failures follow the configured
// writer.FailurePolicy.
//
// Every run gets a random run id that is attached to its log lines and
// returned in the Result.
package export
