// Package probe issues the HTTP requests that decide whether a URL is live.
//
// A Prober performs one request: it waits on the Pacer, picks an identity
// profile, sends the request and records either the status code or a
// classified error. It never panics and never returns an error; every
// failure is captured in the returned model.ProbeOutcome.
//
// BatchFetcher runs a Prober over many URLs with bounded parallelism and
// FallbackRetrier re-probes the failures one at a time.
//
// Design decision: The concurrency cap is errgroup's SetLimit rather than a
// hand-rolled worker pool. Goroutines never return an error to the group,
// so one failing URL never cancels the others.
package probe
