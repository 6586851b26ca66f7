package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultMaxRedirects is the redirect limit used when Options leaves it zero.
const DefaultMaxRedirects = 10

// Options controls how probe clients are built.
type Options struct {
	// Timeout bounds a single request including redirects and body drain.
	Timeout time.Duration

	// MaxRedirects is the number of redirects followed before the request
	// fails with ErrTooManyRedirects. Zero means DefaultMaxRedirects; a
	// negative value disables redirect following entirely.
	MaxRedirects int

	// PoolSize sizes the idle connection pool. It should match the
	// concurrency cap so parallel probes do not churn connections.
	PoolSize int

	// ProxyAddress routes every connection through a SOCKS5 proxy
	// ("host:port") when non-empty.
	ProxyAddress string

	// Insecure skips TLS certificate verification.
	Insecure bool

	// Cookie and Headers are added to every request on top of the
	// identity profile headers.
	Cookie  string
	Headers map[string]string

	// HeadersFor returns extra cookie and headers for a request host.
	// They are applied after Cookie and Headers.
	HeadersFor func(host string) (cookie string, headers map[string]string)
}

// NewHTTPClient creates the keep-alive client used by the batch phase.
func NewHTTPClient(opts Options) (*http.Client, error) {
	return newClient(opts, false)
}

// NewFallbackClient creates the client used by the sequential fallback
// phase. It never reuses connections.
func NewFallbackClient(opts Options) (*http.Client, error) {
	return newClient(opts, true)
}

func newClient(opts Options, disableKeepAlives bool) (*http.Client, error) {
	poolSize := opts.PoolSize
	if poolSize < 1 {
		poolSize = 1
	}

	transport := &http.Transport{
		MaxIdleConns:        poolSize * 2,
		MaxIdleConnsPerHost: poolSize,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableKeepAlives:   disableKeepAlives,
		ForceAttemptHTTP2:   true,
	}
	if opts.Insecure {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // opt-in via --insecure
		}
	}

	if opts.ProxyAddress != "" {
		dialer, err := NewSOCKS5Dialer(opts.ProxyAddress)
		if err != nil {
			return nil, err
		}
		transport.DialContext = dialer.DialContext
	} else {
		transport.DialContext = (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
	}

	var rt http.RoundTripper = transport
	if opts.Cookie != "" || len(opts.Headers) > 0 || opts.HeadersFor != nil {
		rt = &headerInjectingTransport{
			base:       transport,
			cookie:     opts.Cookie,
			headers:    opts.Headers,
			headersFor: opts.HeadersFor,
		}
	}

	return &http.Client{
		Transport:     rt,
		Timeout:       opts.Timeout,
		CheckRedirect: redirectPolicy(opts.MaxRedirects),
	}, nil
}

// redirectPolicy follows up to limit redirects and then fails the request.
// A 3xx is still a live answer when redirects are disabled.
func redirectPolicy(limit int) func(*http.Request, []*http.Request) error {
	if limit == 0 {
		limit = DefaultMaxRedirects
	}
	return func(_ *http.Request, via []*http.Request) error {
		if limit < 0 {
			return http.ErrUseLastResponse
		}
		if len(via) > limit {
			return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, limit)
		}
		return nil
	}
}

// NewSOCKS5Dialer returns a context-aware dialer that connects through the
// SOCKS5 proxy at address.
func NewSOCKS5Dialer(address string) (proxy.ContextDialer, error) {
	if !IsValidProxyAddress(address) {
		return nil, ErrInvalidProxyAddress
	}
	d, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd, nil
	}
	return &blockingDialer{dialer: d}, nil
}

// blockingDialer adds context support to a dialer that has none. If ctx
// ends first the dial keeps running in the background and its connection
// is closed when it arrives.
type blockingDialer struct {
	dialer proxy.Dialer
}

func (b *blockingDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := b.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		go func() {
			if r := <-resultCh; r.conn != nil {
				_ = r.conn.Close() //nolint:errcheck // abandoned connection
			}
		}()
		return nil, ctx.Err()
	}
}

// IsValidProxyAddress reports whether address is "host:port" with a
// non-empty host and a port in 1-65535. IPv6 hosts must be bracketed.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// headerInjectingTransport adds a static cookie and headers to every
// request, including the ones issued while following redirects.
type headerInjectingTransport struct {
	base       http.RoundTripper
	cookie     string
	headers    map[string]string
	headersFor func(host string) (string, map[string]string)
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	inject(clone.Header, t.cookie, t.headers)
	if t.headersFor != nil {
		cookie, headers := t.headersFor(clone.URL.Hostname())
		inject(clone.Header, cookie, headers)
	}

	return t.base.RoundTrip(clone)
}

func inject(h http.Header, cookie string, headers map[string]string) {
	if cookie != "" {
		if existing := h.Get("Cookie"); existing != "" {
			h.Set("Cookie", existing+"; "+cookie)
		} else {
			h.Set("Cookie", cookie)
		}
	}
	for key, value := range headers {
		h.Set(key, value)
	}
}
