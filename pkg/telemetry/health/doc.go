// Package health serves the /healthz endpoint of "fileformat serve".
//
// Components register checks by name; the handler runs them all and answers
// 503 when any fails:
//
//	checker := health.New(2 * time.Second)
//	checker.Register("records", health.DatabaseCheck(resolver.DB()))
//	checker.Register("formats", health.FormatsCheck(registry))
//	mux.Handle("/healthz", checker.Handler())
package health
