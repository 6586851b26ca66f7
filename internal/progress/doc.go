// Package progress renders a terminal progress bar for the batch phase.
//
// Bar is a probe.Observer. It counts first-attempt outcomes only, so the
// bar reaches 100% when the concurrent batch is done and fallback retries
// do not move it.
package progress
