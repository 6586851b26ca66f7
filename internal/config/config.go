package config

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/linkprobe/internal/transport"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linkprobe"

	// DefaultConcurrency is the number of probes in flight at once.
	DefaultConcurrency = 5

	// DefaultMaxJitterDelay is the upper bound of the random delay before
	// each request. The actual delay is uniform in [0, DefaultMaxJitterDelay).
	DefaultMaxJitterDelay = 1 * time.Second

	// DefaultTimeout bounds one request, redirects included.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRedirects is the number of redirects followed per request.
	DefaultMaxRedirects = 10

	// DefaultRateBurst is the token bucket size used when a rate limit is set
	// without an explicit burst.
	DefaultRateBurst = 1
)

// Config holds everything a link check needs. It is built by NewConfig,
// populated from flags and the config file, and passed down explicitly.
type Config struct {
	// ConcurrencyCap is the maximum number of probes in flight.
	ConcurrencyCap int

	// MaxJitterDelay is the upper bound of the random pre-request delay.
	// Zero disables jitter.
	MaxJitterDelay time.Duration

	// PrintProgress renders a progress bar on stderr while the batch runs.
	PrintProgress bool

	// Timeout bounds a single request.
	Timeout time.Duration

	// Method is GET or HEAD. HEAD falls back to GET when the server rejects it.
	Method string

	// RateLimit caps requests per second across all workers. Zero means no cap.
	RateLimit float64

	// RateBurst is the token bucket size for RateLimit.
	RateBurst int

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// Insecure skips TLS certificate verification.
	Insecure bool

	// MaxRedirects is the redirect limit per request; -1 disables redirects
	// so a 3xx answer is classified as is. Zero is rejected.
	MaxRedirects int

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches log output to JSON.
	JSONLog bool

	// ConfigFilePath is the path to the configuration file. When empty,
	// .linkprobe is searched in the current and the home directory.
	ConfigFilePath string

	// File is the loaded configuration file, or nil.
	File *File

	// InputFile is the URL list to check.
	InputFile string

	// ValidOutput and DeadOutput receive the classified lists as JSON arrays.
	ValidOutput string
	DeadOutput  string

	// JSONReport and MarkdownReport select the report format; both false
	// means the colored text report. They are mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile receives the report instead of stdout.
	ReportFile string

	// Targets are URLs given directly, checked after the ones in InputFile.
	Targets []string

	// DBDir is where the run history database lives.
	DBDir string

	// SaveToDB records the run in the history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		ConcurrencyCap: DefaultConcurrency,
		MaxJitterDelay: DefaultMaxJitterDelay,
		PrintProgress:  true,
		Timeout:        DefaultTimeout,
		Method:         http.MethodGet,
		RateBurst:      DefaultRateBurst,
		MaxRedirects:   DefaultMaxRedirects,
		DBDir:          XDGDataDir(),
		SaveToDB:       true,
	}
}

// XDGDataDir returns the XDG data directory for linkprobe.
// On Linux: ~/.local/share/linkprobe
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs before any network activity.
func (c *Config) Validate() error {
	if c.InputFile == "" && len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.ConcurrencyCap <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxJitterDelay < 0 {
		return ErrInvalidMaxDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Method != http.MethodGet && c.Method != http.MethodHead {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, c.Method)
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return ErrInvalidBurst
	}
	if c.MaxRedirects < -1 || c.MaxRedirects == 0 {
		return ErrInvalidMaxRedirects
	}
	if c.ProxyAddress != "" && !transport.IsValidProxyAddress(c.ProxyAddress) {
		return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.ProxyAddress)
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.File != nil {
		for _, p := range c.File.Profiles {
			if p.Name == "" || len(p.Headers) == 0 {
				return ErrInvalidProfile
			}
		}
	}
	return nil
}
