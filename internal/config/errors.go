package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when neither an input file nor URLs are given.
	ErrNoTarget = errors.New("no URLs to check: use --input or pass URLs as arguments")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency cap is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxDelay is returned when the jitter upper bound is negative.
	// Use 0 to disable jitter.
	ErrInvalidMaxDelay = errors.New("invalid max delay: must be non-negative")

	// ErrInvalidMethod is returned for request methods other than GET and HEAD.
	ErrInvalidMethod = errors.New("invalid method: must be GET or HEAD")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	// Use 0 for no limit.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidBurst is returned when a rate limit is set with a burst below 1.
	ErrInvalidBurst = errors.New("invalid burst: must be at least 1")

	// ErrInvalidMaxRedirects is returned when the redirect limit is zero or
	// below -1.
	ErrInvalidMaxRedirects = errors.New("invalid max redirects: must be at least 1, or -1 to disable redirects")

	// ErrInvalidProxyAddress is returned when the proxy is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")

	// ErrInvalidProfile is returned when a configured identity profile has
	// no name or no headers.
	ErrInvalidProfile = errors.New("invalid identity profile: name and headers are required")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
