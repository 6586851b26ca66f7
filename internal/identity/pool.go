package identity

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// ErrEmptyPool is returned when a pool would contain no profiles.
var ErrEmptyPool = errors.New("identity pool must contain at least one profile")

// Pool selects profiles uniformly at random. It is safe for concurrent use.
type Pool struct {
	profiles []Profile

	// rng is nil unless WithRand was given; the global source is
	// already safe for concurrent use.
	rng *rand.Rand
	mu  sync.Mutex
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithRand makes the pool draw from r instead of the global source.
// Tests use this to get deterministic selections.
func WithRand(r *rand.Rand) PoolOption {
	return func(p *Pool) {
		p.rng = r
	}
}

// NewPool creates a pool over profiles. The slice is copied.
func NewPool(profiles []Profile, opts ...PoolOption) (*Pool, error) {
	if len(profiles) == 0 {
		return nil, ErrEmptyPool
	}

	p := &Pool{profiles: append([]Profile(nil), profiles...)}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewDefaultPool creates a pool over DefaultProfiles.
func NewDefaultPool(opts ...PoolOption) *Pool {
	p, _ := NewPool(DefaultProfiles(), opts...) //nolint:errcheck // DefaultProfiles is never empty
	return p
}

// Next returns a profile chosen uniformly at random.
func (p *Pool) Next() Profile {
	if len(p.profiles) == 1 {
		return p.profiles[0]
	}
	return p.profiles[p.intN(len(p.profiles))]
}

// Len returns the number of profiles.
func (p *Pool) Len() int {
	return len(p.profiles)
}

// Profiles returns a copy of the pool contents.
func (p *Pool) Profiles() []Profile {
	return append([]Profile(nil), p.profiles...)
}

func (p *Pool) intN(n int) int {
	if p.rng == nil {
		return rand.IntN(n) //nolint:gosec // not security sensitive
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}
