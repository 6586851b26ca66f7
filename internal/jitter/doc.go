// Package jitter spaces out requests so a batch does not hit target servers
// at a regular, easily recognized rate.
//
// Scheduler draws a random delay from [0, max) before each request. Pacer
// waits that delay and, when a rate is configured, also waits on a token
// bucket from golang.org/x/time/rate. Both are best-effort politeness:
// concurrent requests may still overlap up to the concurrency cap.
package jitter
