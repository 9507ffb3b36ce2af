// Package logging builds the service's slog logger.
//
// The logger writes JSON, text or console output to stderr, to a rotated
// file (via lumberjack) or to both:
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "both",
//	    File:   logging.FileConfig{Path: "logs/fileformat.log", MaxSizeMB: 10},
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
// Components take the embedded *slog.Logger. Export fields stored in the
// context with WithJob, WithFormat and WithRunID are added to every record
// logged through the *Context methods:
//
//	ctx = logging.WithJob(ctx, "nightly")
//	logger.InfoContext(ctx, "job started") // job=nightly
package logging
