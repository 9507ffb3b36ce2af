// Package watch reloads format definitions when their files change.
//
//	reloader := watch.NewReloader(registry, src, collector, logger)
//	w, err := watch.New(watch.Config{Path: cfg.Formats.Path, Debounce: cfg.Formats.Debounce})
//	if err != nil {
//	    return err
//	}
//	go w.Run(ctx, reloader.Reload)
//
// Bursts of file events, such as an editor writing a temporary file and
// renaming it, are debounced into a single reload. A reload that fails to
// parse or validate keeps the definitions already loaded.
package watch
