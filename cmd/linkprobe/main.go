// Package main provides the entry point for the linkprobe CLI.
//
// linkprobe checks a list of URLs concurrently and sorts them into live
// and dead links. URLs that fail on the first pass are retried once,
// sequentially, over fresh connections before anything is reported.
//
// Usage:
//
//	linkprobe check --input urls.json --valid-output valid.json --dead-output dead.json
//	linkprobe check https://example.com https://example.org
//	linkprobe history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
