package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nao1215/linkprobe/internal/model"
)

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1:1080", true},
		{"localhost:9050", true},
		{"[::1]:1080", true},
		{"", false},
		{"127.0.0.1", false},
		{":1080", false},
		{"127.0.0.1:", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:65536", false},
		{"127.0.0.1:abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()
			if got := IsValidProxyAddress(tt.address); got != tt.want {
				t.Errorf("IsValidProxyAddress(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("invalid proxy address is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewHTTPClient(Options{ProxyAddress: "nope"})
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("injects cookie and headers", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client, err := NewHTTPClient(Options{
			Timeout: 5 * time.Second,
			Cookie:  "session=abc",
			Headers: map[string]string{"X-Probe": "1"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		req.Header.Set("Cookie", "lang=en")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		got := <-headers
		gotCookie, gotHeader := got.Get("Cookie"), got.Get("X-Probe")
		if gotCookie != "lang=en; session=abc" {
			t.Errorf("Cookie = %q", gotCookie)
		}
		if gotHeader != "1" {
			t.Errorf("X-Probe = %q", gotHeader)
		}
	})

	t.Run("per-host headers", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
		}))
		defer srv.Close()

		client, err := NewHTTPClient(Options{
			Timeout: 5 * time.Second,
			HeadersFor: func(host string) (string, map[string]string) {
				if host != "127.0.0.1" {
					return "", nil
				}
				return "host=1", map[string]string{"X-Host": host}
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		got := <-headers
		if got.Get("Cookie") != "host=1" || got.Get("X-Host") != "127.0.0.1" {
			t.Errorf("headers = %v", got)
		}
	})

	t.Run("redirect loop fails with ErrTooManyRedirects", func(t *testing.T) {
		t.Parallel()

		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, srv.URL+"/loop", http.StatusFound)
		}))
		defer srv.Close()

		client, err := NewHTTPClient(Options{Timeout: 5 * time.Second, MaxRedirects: 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp, err := client.Get(srv.URL)
		if err == nil {
			resp.Body.Close()
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, ErrTooManyRedirects) {
			t.Errorf("expected ErrTooManyRedirects, got %v", err)
		}
		if pe := ClassifyError(srv.URL, err); pe.Kind != model.KindProtocol {
			t.Errorf("kind = %v, want protocol", pe.Kind)
		}
	})

	t.Run("negative redirect limit returns the 3xx", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/elsewhere", http.StatusMovedPermanently)
		}))
		defer srv.Close()

		client, err := NewHTTPClient(Options{Timeout: 5 * time.Second, MaxRedirects: -1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMovedPermanently {
			t.Errorf("status = %d, want 301", resp.StatusCode)
		}
	})

	t.Run("fallback client disables keep-alives", func(t *testing.T) {
		t.Parallel()

		client, err := NewFallbackClient(Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tr, ok := client.Transport.(*http.Transport)
		if !ok {
			t.Fatalf("transport is %T", client.Transport)
		}
		if !tr.DisableKeepAlives {
			t.Error("expected keep-alives disabled")
		}
	})
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		if ClassifyError("u", nil) != nil {
			t.Error("expected nil")
		}
	})

	t.Run("connection refused is network", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		addr := ln.Addr().String()
		ln.Close()

		client, err := NewHTTPClient(Options{Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = client.Get("http://" + addr)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		pe := ClassifyError("http://"+addr, err)
		if pe.Kind != model.KindNetwork {
			t.Errorf("kind = %v, want network (%v)", pe.Kind, err)
		}
		if !errors.Is(pe, model.ErrNetwork) {
			t.Error("expected errors.Is(pe, ErrNetwork)")
		}
	})

	t.Run("slow server is timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			<-release
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()
		defer close(release)

		client, err := NewHTTPClient(Options{Timeout: 50 * time.Millisecond})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = client.Get(srv.URL)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if pe := ClassifyError(srv.URL, err); pe.Kind != model.KindTimeout {
			t.Errorf("kind = %v, want timeout (%v)", pe.Kind, err)
		}
	})

	t.Run("unsupported scheme is protocol", func(t *testing.T) {
		t.Parallel()

		client, err := NewHTTPClient(Options{Timeout: time.Second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = client.Get("ftp://example.invalid/file")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if pe := ClassifyError("ftp://example.invalid/file", err); pe.Kind != model.KindProtocol {
			t.Errorf("kind = %v, want protocol (%v)", pe.Kind, err)
		}
	})

	t.Run("context errors", func(t *testing.T) {
		t.Parallel()

		if k := ClassifyError("u", context.Canceled).Kind; k != model.KindCanceled {
			t.Errorf("canceled kind = %v", k)
		}
		if k := ClassifyError("u", context.DeadlineExceeded).Kind; k != model.KindTimeout {
			t.Errorf("deadline kind = %v", k)
		}
	})

	t.Run("probe errors pass through", func(t *testing.T) {
		t.Parallel()

		in := model.NewProbeError(model.KindTimeout, "u", errors.New("x"))
		if got := ClassifyError("u", in); got != in {
			t.Errorf("got %v, want the same ProbeError", got)
		}
	})
}
