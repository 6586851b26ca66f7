package pipeline

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/linkprobe/internal/config"
	"github.com/nao1215/linkprobe/internal/identity"
)

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.MaxJitterDelay = 0
	cfg.Timeout = 2 * time.Second
	cfg.PrintProgress = false
	cfg.SaveToDB = false
	return cfg
}

func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestCheckLinks(t *testing.T) {
	t.Parallel()

	t.Run("end to end against a live server", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
		mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/missing", http.NotFound)
		mux.HandleFunc("/error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		dead := "http://" + closedAddr(t) + "/"
		urls := []string{
			srv.URL + "/ok",
			srv.URL + "/missing",
			srv.URL + "/moved",
			dead,
			srv.URL + "/error",
			srv.URL + "/ok",
		}

		var observed atomic.Int32
		obs := observerFunc(func() { observed.Add(1) })

		report, err := CheckLinks(context.Background(), urls, testConfig(), quietLogger(), obs)
		if err != nil {
			t.Fatalf("CheckLinks() error: %v", err)
		}

		if report.Duplicates != 1 || len(report.Inputs) != 5 {
			t.Errorf("inputs = %v, duplicates = %d", report.Inputs, report.Duplicates)
		}
		if !slices.Equal(report.Result.Valid, []string{srv.URL + "/ok", srv.URL + "/moved"}) {
			t.Errorf("Valid = %v", report.Result.Valid)
		}
		if !slices.Equal(report.Result.Dead, []string{srv.URL + "/missing", srv.URL + "/error"}) {
			t.Errorf("Dead = %v", report.Result.Dead)
		}
		if !slices.Equal(report.Reconciliation.Unresolved, []string{dead}) {
			t.Errorf("Unresolved = %v", report.Reconciliation.Unresolved)
		}
		if !slices.Equal(report.Retried, []string{dead}) {
			t.Errorf("Retried = %v", report.Retried)
		}
		// five batch outcomes plus one fallback outcome
		if observed.Load() != 6 {
			t.Errorf("observer saw %d outcomes, want 6", observed.Load())
		}
		if report.Settings.Concurrency != config.DefaultConcurrency {
			t.Errorf("Settings = %+v", report.Settings)
		}
		if report.FinishedAt.IsZero() {
			t.Error("expected FinishedAt to be set")
		}
	})

	t.Run("C: slow first answer recovers in fallback", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
				return
			}
			w.Header().Set("Location", "/elsewhere")
			w.WriteHeader(http.StatusMovedPermanently)
		}))
		defer srv.Close()

		cfg := testConfig()
		cfg.Timeout = 200 * time.Millisecond
		cfg.MaxRedirects = -1

		report, err := CheckLinks(context.Background(), []string{srv.URL}, cfg, quietLogger())
		if err != nil {
			t.Fatalf("CheckLinks() error: %v", err)
		}
		if !slices.Equal(report.Result.Valid, []string{srv.URL}) {
			t.Errorf("Valid = %v, outcomes = %+v", report.Result.Valid, report.Outcomes)
		}
		if report.Outcomes[0].StatusCode != http.StatusMovedPermanently {
			t.Errorf("status = %d, want 301", report.Outcomes[0].StatusCode)
		}
	})

	t.Run("empty input is trivially resolved", func(t *testing.T) {
		t.Parallel()

		report, err := CheckLinks(context.Background(), nil, testConfig(), quietLogger())
		if err != nil {
			t.Fatalf("CheckLinks() error: %v", err)
		}
		if !report.Reconciliation.AllResolved || report.Result.Len() != 0 {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("unset method defaults without touching the config", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.Method = ""
		report, err := CheckLinks(context.Background(), nil, cfg, quietLogger())
		if err != nil {
			t.Fatalf("CheckLinks() error: %v", err)
		}
		if cfg.Method != "" {
			t.Errorf("cfg.Method = %q, caller's config was modified", cfg.Method)
		}
		if report.Settings.Method != http.MethodGet {
			t.Errorf("Settings.Method = %q, want GET", report.Settings.Method)
		}
	})

	t.Run("invalid proxy fails before probing", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.ProxyAddress = "not-an-address"
		if _, err := CheckLinks(context.Background(), []string{"http://a.test"}, cfg, quietLogger()); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("replaced profiles with none configured", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.File = &config.File{ReplaceProfiles: true}
		_, err := CheckLinks(context.Background(), []string{"http://a.test"}, cfg, quietLogger())
		if err == nil {
			t.Error("expected error for an empty identity pool")
		}
	})
}

func TestProfiles(t *testing.T) {
	t.Parallel()

	t.Run("defaults without a file", func(t *testing.T) {
		t.Parallel()
		if got := len(Profiles(testConfig())); got != len(identity.DefaultProfiles()) {
			t.Errorf("got %d profiles", got)
		}
	})

	t.Run("file profiles are appended", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.File = &config.File{Profiles: []config.ProfileConfig{
			{Name: "bot", Headers: map[string]string{"User-Agent": "bot/1"}},
		}}
		got := Profiles(cfg)
		if len(got) != len(identity.DefaultProfiles())+1 || got[len(got)-1].Name() != "bot" {
			t.Errorf("profiles = %d", len(got))
		}
	})

	t.Run("file profiles replace", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.File = &config.File{ReplaceProfiles: true, Profiles: []config.ProfileConfig{
			{Name: "bot", Headers: map[string]string{"User-Agent": "bot/1"}},
		}}
		if got := Profiles(cfg); len(got) != 1 {
			t.Errorf("profiles = %d, want 1", len(got))
		}
	})
}
