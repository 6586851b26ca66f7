package model

import "fmt"

// Verdict is the classification of a status code.
type Verdict int

const (
	// VerdictValid means the URL answered with a success or redirect code.
	VerdictValid Verdict = iota

	// VerdictDead means the URL answered with any other code.
	VerdictDead
)

// String returns "valid" or "dead".
func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictDead:
		return "dead"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so verdicts serialize as names.
func (v Verdict) MarshalText() ([]byte, error) {
	switch v {
	case VerdictValid, VerdictDead:
		return []byte(v.String()), nil
	default:
		return nil, fmt.Errorf("invalid verdict %d", int(v))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(text []byte) error {
	switch string(text) {
	case "valid":
		*v = VerdictValid
	case "dead":
		*v = VerdictDead
	default:
		return fmt.Errorf("invalid verdict %q", string(text))
	}
	return nil
}
