package config

import (
	"maps"
	"strings"
	"time"
)

// HostConfig holds extra request data for one host.
type HostConfig struct {
	// Cookie is sent with every request. Format: "name=value" or
	// "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are added on top of the identity profile headers.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Defaults mirrors the check flags. Nil fields are unset and leave the
// built-in default alone.
type Defaults struct {
	Concurrency  *int           `yaml:"concurrency,omitempty"`
	MaxDelay     *time.Duration `yaml:"maxDelay,omitempty"`
	Timeout      *time.Duration `yaml:"timeout,omitempty"`
	Method       *string        `yaml:"method,omitempty"`
	Rate         *float64       `yaml:"rate,omitempty"`
	Burst        *int           `yaml:"burst,omitempty"`
	Proxy        *string        `yaml:"proxy,omitempty"`
	Insecure     *bool          `yaml:"insecure,omitempty"`
	MaxRedirects *int           `yaml:"maxRedirects,omitempty"`
	Progress     *bool          `yaml:"progress,omitempty"`

	HostConfig `yaml:",inline"`
}

// ProfileConfig is an identity profile declared in the config file.
type ProfileConfig struct {
	Name    string            `yaml:"name"`
	Headers map[string]string `yaml:"headers"`
}

// File represents the structure of the .linkprobe configuration file.
type File struct {
	// Defaults apply to every run unless overridden by a flag.
	Defaults Defaults `yaml:"defaults,omitempty"`

	// Hosts maps a host name (no scheme, no port) to extra request data.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Profiles are identity profiles added to the built-in browser set.
	Profiles []ProfileConfig `yaml:"profiles,omitempty"`

	// ReplaceProfiles drops the built-in profiles so only Profiles are used.
	ReplaceProfiles bool `yaml:"replaceProfiles,omitempty"`
}

// HostHeaders returns the cookie and headers for host, merging the
// host-specific entry over the defaults. Host matching is case-insensitive.
func (f *File) HostHeaders(host string) HostConfig {
	result := HostConfig{Cookie: f.Defaults.Cookie}
	if len(f.Defaults.Headers) > 0 {
		result.Headers = maps.Clone(f.Defaults.Headers)
	}

	hc, ok := f.Hosts[strings.ToLower(host)]
	if !ok {
		return result
	}
	if hc.Cookie != "" {
		result.Cookie = hc.Cookie
	}
	if len(hc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(hc.Headers))
		}
		maps.Copy(result.Headers, hc.Headers)
	}
	return result
}

// Flag names whose values the config file can supply.
const (
	FlagConcurrency  = "concurrency"
	FlagMaxDelay     = "max-delay"
	FlagTimeout      = "timeout"
	FlagHead         = "head"
	FlagRate         = "rate"
	FlagBurst        = "burst"
	FlagProxy        = "proxy"
	FlagInsecure     = "insecure"
	FlagMaxRedirects = "max-redirects"
	FlagProgress     = "progress"
)

// ApplyFile copies the file defaults into c. isSet reports whether the
// user gave a flag explicitly; those values are kept. A nil isSet treats
// every flag as unset.
func (c *Config) ApplyFile(f *File, isSet func(flag string) bool) {
	if f == nil {
		return
	}
	c.File = f
	if isSet == nil {
		isSet = func(string) bool { return false }
	}

	d := f.Defaults
	if d.Concurrency != nil && !isSet(FlagConcurrency) {
		c.ConcurrencyCap = *d.Concurrency
	}
	if d.MaxDelay != nil && !isSet(FlagMaxDelay) {
		c.MaxJitterDelay = *d.MaxDelay
	}
	if d.Timeout != nil && !isSet(FlagTimeout) {
		c.Timeout = *d.Timeout
	}
	if d.Method != nil && !isSet(FlagHead) {
		c.Method = strings.ToUpper(*d.Method)
	}
	if d.Rate != nil && !isSet(FlagRate) {
		c.RateLimit = *d.Rate
	}
	if d.Burst != nil && !isSet(FlagBurst) {
		c.RateBurst = *d.Burst
	}
	if d.Proxy != nil && !isSet(FlagProxy) {
		c.ProxyAddress = *d.Proxy
	}
	if d.Insecure != nil && !isSet(FlagInsecure) {
		c.Insecure = *d.Insecure
	}
	if d.MaxRedirects != nil && !isSet(FlagMaxRedirects) {
		c.MaxRedirects = *d.MaxRedirects
	}
	if d.Progress != nil && !isSet(FlagProgress) {
		c.PrintProgress = *d.Progress
	}
}
