// Package resolver implements the jurisdiction resolution pipeline: the
// ordered-fallback decision procedure that turns untrusted location signals
// into one canonical jurisdiction code, locked per session.
package resolver

import (
	"fmt"
	"strings"

	"schemegate/internal/jurisdiction"
	"schemegate/internal/signal"
)

// Request carries every optional signal input for one resolution attempt.
// Absent inputs are simply skipped by the pipeline.
type Request struct {
	// SessionID is the opaque session token, empty for sessionless calls.
	SessionID string

	// Point is the device-reported GPS coordinate, nil when the client
	// captured none.
	Point *signal.GeoPoint

	// ClientAddr is the client network address recovered by the transport
	// layer, empty when unavailable.
	ClientAddr string

	// ManualCode is the caller-supplied code text, accepted only as the
	// lowest-priority signal and never trusted verbatim.
	ManualCode string
}

// Outcome is the result of one resolution attempt. It is never partially
// resolved: either Resolved is true and Code is a registry-backed
// jurisdiction, or Resolved is false and Code is empty.
type Outcome struct {
	Code     jurisdiction.Code
	Resolved bool

	// Source names the signal that produced the code. Empty when
	// unresolved or when the code came from the configured default.
	Source signal.Source

	// Defaulted marks outcomes produced by the unresolved-policy default
	// rather than an actual signal.
	Defaulted bool
}

// PolicyMode selects how an exhausted pipeline maps to a caller-visible
// outcome. The choice differs across deployments and must be explicit
// configuration, never silent behavior.
type PolicyMode string

const (
	// PolicyReject surfaces Unresolved to the caller as a not-found outcome.
	PolicyReject PolicyMode = "reject"

	// PolicyDefault substitutes a fixed jurisdiction code. The default is
	// served but not locked, so a later request with better signals can
	// still resolve properly.
	PolicyDefault PolicyMode = "default"
)

// UnresolvedPolicy is the configured mapping for exhausted resolutions.
type UnresolvedPolicy struct {
	Mode        PolicyMode
	DefaultCode jurisdiction.Code
}

// ParsePolicy parses the configuration string form: "reject" or
// "default:<code>".
func ParsePolicy(s string) (UnresolvedPolicy, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == string(PolicyReject):
		return UnresolvedPolicy{Mode: PolicyReject}, nil
	case strings.HasPrefix(s, string(PolicyDefault)+":"):
		code := jurisdiction.Code(strings.TrimPrefix(s, string(PolicyDefault)+":"))
		if !code.Valid() {
			return UnresolvedPolicy{}, fmt.Errorf("unknown default jurisdiction %q", code)
		}
		return UnresolvedPolicy{Mode: PolicyDefault, DefaultCode: code}, nil
	default:
		return UnresolvedPolicy{}, fmt.Errorf("invalid unresolved policy %q", s)
	}
}
