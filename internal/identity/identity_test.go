package identity

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"
	"testing"
)

// TestNewProfile verifies that profiles are immutable copies.
func TestNewProfile(t *testing.T) {
	t.Parallel()

	t.Run("copies and canonicalizes headers", func(t *testing.T) {
		t.Parallel()

		headers := map[string]string{"user-agent": "test/1.0", "dnt": "1"}
		p := NewProfile("test", headers)
		headers["user-agent"] = "mutated"

		if p.UserAgent() != "test/1.0" {
			t.Errorf("expected original user agent, got %q", p.UserAgent())
		}
		if p.Header().Get("Dnt") != "1" {
			t.Errorf("expected DNT header, got %v", p.Header())
		}
	})

	t.Run("Header returns a clone", func(t *testing.T) {
		t.Parallel()

		p := NewProfile("test", map[string]string{"Accept": "*/*"})
		h := p.Header()
		h.Set("Accept", "changed")

		if p.Header().Get("Accept") != "*/*" {
			t.Error("modifying returned header must not change the profile")
		}
	})

	t.Run("Apply sets headers on request", func(t *testing.T) {
		t.Parallel()

		req, err := http.NewRequest(http.MethodGet, "http://a.test", nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Accept", "old")

		NewProfile("test", map[string]string{"Accept": "new", "X-Extra": "1"}).Apply(req)

		if req.Header.Get("Accept") != "new" || req.Header.Get("X-Extra") != "1" {
			t.Errorf("unexpected headers %v", req.Header)
		}
	})

	t.Run("Keys are sorted", func(t *testing.T) {
		t.Parallel()

		keys := NewProfile("test", map[string]string{"B": "1", "A": "2"}).Keys()
		if len(keys) != 2 || keys[0] != "A" || keys[1] != "B" {
			t.Errorf("unexpected keys %v", keys)
		}
	})
}

// TestDefaultProfiles checks the built-in profile set.
func TestDefaultProfiles(t *testing.T) {
	t.Parallel()

	profiles := DefaultProfiles()
	if len(profiles) != 4 {
		t.Fatalf("expected 4 default profiles, got %d", len(profiles))
	}

	names := make(map[string]bool)
	for _, p := range profiles {
		if p.UserAgent() == "" {
			t.Errorf("profile %s has no user agent", p.Name())
		}
		if names[p.Name()] {
			t.Errorf("duplicate profile name %s", p.Name())
		}
		names[p.Name()] = true
	}
}

// TestPool tests profile selection.
func TestPool(t *testing.T) {
	t.Parallel()

	t.Run("empty pool is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewPool(nil)
		if !errors.Is(err, ErrEmptyPool) {
			t.Errorf("expected ErrEmptyPool, got %v", err)
		}
	})

	t.Run("single profile is always returned", func(t *testing.T) {
		t.Parallel()

		p, err := NewPool([]Profile{NewProfile("only", nil)})
		if err != nil {
			t.Fatal(err)
		}
		for range 10 {
			if p.Next().Name() != "only" {
				t.Fatal("expected the only profile")
			}
		}
	})

	t.Run("every profile is eventually selected", func(t *testing.T) {
		t.Parallel()

		p := NewDefaultPool(WithRand(rand.New(rand.NewPCG(1, 2))))
		seen := make(map[string]int)
		for range 1000 {
			seen[p.Next().Name()]++
		}
		if len(seen) != p.Len() {
			t.Errorf("expected all %d profiles, saw %v", p.Len(), seen)
		}
		for name, n := range seen {
			// Uniform selection over 4 profiles gives ~250 each.
			if n < 150 {
				t.Errorf("profile %s selected only %d times", name, n)
			}
		}
	})

	t.Run("concurrent use is safe", func(t *testing.T) {
		t.Parallel()

		p := NewDefaultPool(WithRand(rand.New(rand.NewPCG(3, 4))))
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 100 {
					_ = p.Next()
				}
			}()
		}
		wg.Wait()
	})

	t.Run("Profiles returns a copy", func(t *testing.T) {
		t.Parallel()

		p := NewDefaultPool()
		list := p.Profiles()
		list[0] = NewProfile("changed", nil)
		if p.Profiles()[0].Name() == "changed" {
			t.Error("modifying returned slice must not change the pool")
		}
	})
}
