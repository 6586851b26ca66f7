// Package identity provides the pool of request header profiles presented
// to target servers.
//
// Each request carries one profile picked uniformly at random, so a batch
// of requests does not share a single fingerprint. Profiles are immutable
// once created: the pool hands out values and header clones, never the
// underlying maps.
package identity
