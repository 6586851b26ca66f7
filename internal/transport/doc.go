// Package transport builds the HTTP clients used to probe URLs.
//
// It handles timeouts, redirect limits, connection pool sizing, optional
// SOCKS5 egress through golang.org/x/net/proxy and static header injection.
// It also maps transport failures to model error kinds so the probe
// package never has to inspect net/http error types itself.
//
// Design decision: Two clients are built per run. The batch client keeps
// connections alive and sizes its pool to the concurrency cap. The fallback
// client disables keep-alives so a retry never reuses a connection that may
// have been the reason the first attempt failed.
package transport
