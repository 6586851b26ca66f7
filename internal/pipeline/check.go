package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nao1215/linkprobe/internal/config"
	"github.com/nao1215/linkprobe/internal/identity"
	"github.com/nao1215/linkprobe/internal/jitter"
	"github.com/nao1215/linkprobe/internal/model"
	"github.com/nao1215/linkprobe/internal/probe"
	"github.com/nao1215/linkprobe/internal/transport"
	"github.com/nao1215/linkprobe/internal/urllist"
)

// Profiles returns the identity profiles for cfg: the built-in browser
// profiles plus the ones from the config file, or only the file's when it
// sets replaceProfiles.
func Profiles(cfg *config.Config) []identity.Profile {
	var profiles []identity.Profile
	if cfg.File == nil || !cfg.File.ReplaceProfiles {
		profiles = identity.DefaultProfiles()
	}
	if cfg.File != nil {
		for _, p := range cfg.File.Profiles {
			profiles = append(profiles, identity.NewProfile(p.Name, p.Headers))
		}
	}
	return profiles
}

// TransportOptions maps cfg to client options.
func TransportOptions(cfg *config.Config) transport.Options {
	opts := transport.Options{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		PoolSize:     cfg.ConcurrencyCap,
		ProxyAddress: cfg.ProxyAddress,
		Insecure:     cfg.Insecure,
	}
	if cfg.File != nil {
		file := cfg.File
		opts.HeadersFor = func(host string) (string, map[string]string) {
			hc := file.HostHeaders(host)
			return hc.Cookie, hc.Headers
		}
	}
	return opts
}

// Settings snapshots the engine settings of cfg for the run report.
func Settings(cfg *config.Config, profiles int) model.RunSettings {
	return model.RunSettings{
		Concurrency:    cfg.ConcurrencyCap,
		MaxJitterDelay: cfg.MaxJitterDelay,
		Timeout:        cfg.Timeout,
		Method:         requestMethod(cfg),
		RateLimit:      cfg.RateLimit,
		Profiles:       profiles,
	}
}

// requestMethod returns the configured method, GET when unset.
func requestMethod(cfg *config.Config) string {
	if cfg.Method == "" {
		return http.MethodGet
	}
	return cfg.Method
}

// DefaultPipeline builds the standard link check: concurrent fetch,
// sequential fallback, classification and reconciliation. Observers see
// every outcome of both probing phases.
func DefaultPipeline(cfg *config.Config, pipelineOpts []Option, observers ...probe.Observer) (*Pipeline, error) {
	p := New(pipelineOpts...)
	logger := p.logger

	pool, err := identity.NewPool(Profiles(cfg))
	if err != nil {
		return nil, err
	}

	pacer := jitter.NewPacer(
		jitter.NewScheduler(cfg.MaxJitterDelay),
		jitter.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	)

	opts := TransportOptions(cfg)
	batchClient, err := transport.NewHTTPClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP client: %w", err)
	}
	fallbackClient, err := transport.NewFallbackClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build fallback client: %w", err)
	}

	prober := probe.NewProber(batchClient,
		probe.WithPool(pool),
		probe.WithPacer(pacer),
		probe.WithMethod(requestMethod(cfg)),
		probe.WithLogger(logger),
	)

	p.AddSteps(
		NewFetchStep(probe.NewBatchFetcher(prober,
			probe.WithConcurrency(cfg.ConcurrencyCap),
			probe.WithBatchLogger(logger),
			probe.WithObservers(observers...),
		)),
		NewFallbackStep(probe.NewFallbackRetrier(prober.WithClient(fallbackClient),
			probe.WithFallbackLogger(logger),
			probe.WithFallbackObservers(observers...),
		)),
		NewClassifyStep(logger),
		NewReconcileStep(logger),
	)
	return p, nil
}

// CheckLinks runs a complete link check over urls.
//
// Duplicate URLs are dropped (first occurrence wins) before probing. The
// returned report is non-nil whenever the pipeline could be built, even
// when the run was canceled; in that case the error is the context error
// and URLs that were never probed end up unresolved.
func CheckLinks(ctx context.Context, urls []string, cfg *config.Config, logger *slog.Logger, observers ...probe.Observer) (*model.RunReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p, err := DefaultPipeline(cfg, []Option{WithLogger(logger)}, observers...)
	if err != nil {
		return nil, err
	}

	inputs, duplicates := urllist.Dedupe(urls)
	if duplicates > 0 {
		logger.Info("dropped duplicate URLs", "count", duplicates)
	}

	report := model.NewRunReport(inputs)
	report.Duplicates = duplicates
	report.Settings = Settings(cfg, len(Profiles(cfg)))

	err = p.Execute(ctx, report)
	return report, err
}
