package model

import "fmt"

// ClassificationResult holds the valid and dead partitions of a run.
// Each URL is inserted into exactly one side; Add refuses a URL that is
// already present on either side.
type ClassificationResult struct {
	// Valid lists URLs classified as valid, in insertion order.
	Valid []string `json:"valid_links"`

	// Dead lists URLs classified as dead, in insertion order.
	Dead []string `json:"dead_links"`

	seen map[string]Verdict
}

// NewClassificationResult returns an empty result.
// Both slices are non-nil so they serialize as [] rather than null.
func NewClassificationResult() *ClassificationResult {
	return &ClassificationResult{
		Valid: make([]string, 0),
		Dead:  make([]string, 0),
		seen:  make(map[string]Verdict),
	}
}

// Add inserts rawURL on the side named by v.
func (r *ClassificationResult) Add(rawURL string, v Verdict) error {
	if r.seen == nil {
		r.rebuildIndex()
	}
	if prev, ok := r.seen[rawURL]; ok {
		return fmt.Errorf("url %s already classified as %s", rawURL, prev)
	}

	switch v {
	case VerdictValid:
		r.Valid = append(r.Valid, rawURL)
	case VerdictDead:
		r.Dead = append(r.Dead, rawURL)
	default:
		return fmt.Errorf("invalid verdict %d for %s", int(v), rawURL)
	}
	r.seen[rawURL] = v
	return nil
}

// Contains reports whether rawURL is on either side.
func (r *ClassificationResult) Contains(rawURL string) bool {
	_, ok := r.Lookup(rawURL)
	return ok
}

// Lookup returns the verdict recorded for rawURL.
func (r *ClassificationResult) Lookup(rawURL string) (Verdict, bool) {
	if r.seen == nil {
		r.rebuildIndex()
	}
	v, ok := r.seen[rawURL]
	return v, ok
}

// Len returns the number of classified URLs.
func (r *ClassificationResult) Len() int {
	return len(r.Valid) + len(r.Dead)
}

// rebuildIndex restores the lookup map, e.g. after JSON decoding.
func (r *ClassificationResult) rebuildIndex() {
	r.seen = make(map[string]Verdict, len(r.Valid)+len(r.Dead))
	for _, u := range r.Valid {
		r.seen[u] = VerdictValid
	}
	for _, u := range r.Dead {
		r.seen[u] = VerdictDead
	}
}

// ReconciliationReport tells whether every input URL was classified.
type ReconciliationReport struct {
	// AllResolved is true iff Unresolved is empty.
	AllResolved bool `json:"all_resolved"`

	// Unresolved lists input URLs with no verdict, in input order.
	Unresolved []string `json:"unresolved"`
}
