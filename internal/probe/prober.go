package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/linkprobe/internal/identity"
	"github.com/nao1215/linkprobe/internal/jitter"
	"github.com/nao1215/linkprobe/internal/model"
	"github.com/nao1215/linkprobe/internal/transport"
)

// maxDrainBytes is how much of a response body is read before closing so
// the connection can be reused. Larger bodies are abandoned.
const maxDrainBytes = 64 << 10

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Prober performs single probes.
type Prober struct {
	client Doer
	pool   *identity.Pool
	pacer  *jitter.Pacer
	method string
	logger *slog.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithPool sets the identity pool. The default is identity.NewDefaultPool.
func WithPool(pool *identity.Pool) ProberOption {
	return func(p *Prober) {
		if pool != nil {
			p.pool = pool
		}
	}
}

// WithPacer sets the pacer waited on before every request.
// The default does not wait at all.
func WithPacer(pacer *jitter.Pacer) ProberOption {
	return func(p *Prober) {
		if pacer != nil {
			p.pacer = pacer
		}
	}
}

// WithMethod sets the request method. Only GET and HEAD are accepted;
// anything else is ignored.
func WithMethod(method string) ProberOption {
	return func(p *Prober) {
		if method == http.MethodGet || method == http.MethodHead {
			p.method = method
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a Prober that sends requests through client.
func NewProber(client Doer, opts ...ProberOption) *Prober {
	p := &Prober{
		client: client,
		method: http.MethodGet,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.pool == nil {
		p.pool = identity.NewDefaultPool()
	}
	if p.pacer == nil {
		p.pacer = jitter.NewPacer(nil)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// WithClient returns a copy of p that sends requests through client and
// shares everything else. The fallback phase uses it to swap in a
// non-keepalive client.
func (p *Prober) WithClient(client Doer) *Prober {
	clone := *p
	clone.client = client
	return &clone
}

// Probe checks rawURL once. attempt is recorded on the outcome
// (model.AttemptBatch or model.AttemptFallback).
func (p *Prober) Probe(ctx context.Context, rawURL string, attempt int) (outcome model.ProbeOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := model.NewProbeError(model.KindProtocol, rawURL, fmt.Errorf("probe panicked: %v", r))
			outcome = model.NewErrorOutcome(rawURL, err, attempt)
			outcome.Duration = time.Since(start)
		}
	}()

	if err := ctx.Err(); err != nil {
		return canceledOutcome(rawURL, err, attempt)
	}

	if _, err := p.pacer.Wait(ctx); err != nil {
		// The request was never sent.
		return canceledOutcome(rawURL, err, attempt)
	}

	profile := p.pool.Next()
	status, err := p.send(ctx, p.method, rawURL, profile)
	if err == nil && p.method == http.MethodHead &&
		(status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		p.logger.Debug("HEAD not supported, retrying with GET", "url", rawURL, "status", status)
		status, err = p.send(ctx, http.MethodGet, rawURL, profile)
	}

	if err != nil {
		outcome = model.NewErrorOutcome(rawURL, transport.ClassifyError(rawURL, err), attempt)
	} else {
		outcome = model.NewStatusOutcome(rawURL, status, attempt)
	}
	outcome.Profile = profile.Name()
	outcome.Duration = time.Since(start)
	return outcome
}

func (p *Prober) send(ctx context.Context, method, rawURL string, profile identity.Profile) (int, error) {
	if p.client == nil {
		return 0, errors.New("no HTTP client configured")
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	profile.Apply(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// The status is already known; a failed drain only costs the connection.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes)) //nolint:errcheck // status already known

	return resp.StatusCode, nil
}

// canceledOutcome records a URL that was never requested because the run
// ended first.
func canceledOutcome(rawURL string, err error, attempt int) model.ProbeOutcome {
	return model.NewErrorOutcome(rawURL, model.NewProbeError(model.KindCanceled, rawURL, err), attempt)
}
