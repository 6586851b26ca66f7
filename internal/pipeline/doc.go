// Package pipeline runs a link check as a sequence of steps over one
// model.RunReport.
//
// The default pipeline is fetch, fallback, classify, reconcile. Fetch
// probes every URL concurrently; fallback retries the ones that produced no
// status, one at a time over fresh connections; classify sorts the status
// codes into valid and dead; reconcile lists every input URL that ended up
// with neither verdict.
//
// Classify and reconcile are final steps: they still run after the context
// is canceled, so an interrupted run reports what it managed to check and
// lists the rest as unresolved instead of dropping them.
//
// CheckLinks builds the default pipeline from a config.Config and runs it.
package pipeline
