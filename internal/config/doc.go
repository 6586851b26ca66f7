// Package config provides the configuration of a link check: probing
// behavior (concurrency cap, jitter, timeout, rate limit, proxy), identity
// profiles, report preferences and where run history is stored.
//
// Values come from three layers: built-in defaults (NewConfig), the YAML
// file (.linkprobe) and command line flags. Flags the user set explicitly
// always win over the file.
package config
