package model

import (
	"encoding/json"
	"time"
)

// Attempt numbers used in ProbeOutcome.Attempt.
const (
	// AttemptBatch is the concurrent first attempt.
	AttemptBatch = 1

	// AttemptFallback is the single sequential retry.
	AttemptFallback = 2
)

// ProbeOutcome is the result of probing one URL once.
// Exactly one of StatusCode and Err is meaningful: outcomes are only built
// through NewStatusOutcome and NewErrorOutcome, which enforce that.
//
// Design decision: We use a plain int plus a nil-able error instead of a
// pointer-to-int for the status code. Status 0 is never a real HTTP code, and
// HasStatus gives callers a single place to ask the question.
type ProbeOutcome struct {
	// URL is the probed URL exactly as given in the input.
	URL string

	// StatusCode is the HTTP status code. Zero when Err is set.
	StatusCode int

	// Err describes the failure. Nil when StatusCode is set.
	Err *ProbeError

	// Attempt is AttemptBatch or AttemptFallback.
	Attempt int

	// Profile is the name of the identity profile presented.
	Profile string

	// Duration is how long the request took, excluding the jitter wait.
	Duration time.Duration
}

// NewStatusOutcome creates an outcome carrying a status code.
func NewStatusOutcome(rawURL string, statusCode, attempt int) ProbeOutcome {
	return ProbeOutcome{URL: rawURL, StatusCode: statusCode, Attempt: attempt}
}

// NewErrorOutcome creates an outcome carrying an error.
// A nil err is recorded as a protocol error: a probe that neither produced
// a status nor an error did not get a usable response.
func NewErrorOutcome(rawURL string, err *ProbeError, attempt int) ProbeOutcome {
	if err == nil {
		err = NewProbeError(KindProtocol, rawURL, nil)
	}
	return ProbeOutcome{URL: rawURL, Err: err, Attempt: attempt}
}

// HasStatus reports whether the outcome carries a status code.
func (o ProbeOutcome) HasStatus() bool {
	return o.Err == nil && o.StatusCode != 0
}

// Failed reports whether the outcome carries an error.
func (o ProbeOutcome) Failed() bool {
	return !o.HasStatus()
}

// outcomeJSON is the wire form of ProbeOutcome.
type outcomeJSON struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
	Attempt    int    `json:"attempt"`
	Profile    string `json:"profile,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// MarshalJSON implements json.Marshaler.
func (o ProbeOutcome) MarshalJSON() ([]byte, error) {
	w := outcomeJSON{
		URL:        o.URL,
		StatusCode: o.StatusCode,
		Attempt:    o.Attempt,
		Profile:    o.Profile,
		DurationMs: o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		w.ErrorKind = o.Err.Kind.String()
		w.Error = o.Err.Message
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
// The original cause is not recoverable; only kind and message survive.
func (o *ProbeOutcome) UnmarshalJSON(data []byte) error {
	var w outcomeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*o = ProbeOutcome{
		URL:        w.URL,
		StatusCode: w.StatusCode,
		Attempt:    w.Attempt,
		Profile:    w.Profile,
		Duration:   time.Duration(w.DurationMs) * time.Millisecond,
	}
	if w.ErrorKind != "" {
		kind, err := ParseErrorKind(w.ErrorKind)
		if err != nil {
			return err
		}
		o.StatusCode = 0
		o.Err = &ProbeError{Kind: kind, URL: w.URL, Message: w.Error}
	}
	return nil
}
