// Package audit records every resolution decision: which signal won, what
// code was locked, and enough client metadata to investigate disputes about
// why a visitor was shown a particular jurisdiction's content.
package audit

import (
	"strings"
	"time"

	"github.com/mssola/useragent"
)

// Event is emitted from the resolution pipeline to capture one decision.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	RequestID string    `json:"request_id"`
	ClientIP  string    `json:"client_ip"`
	Device    string    `json:"device"`
	Source    string    `json:"source"`
	Code      string    `json:"code"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
}

// Outcome values recorded in events.
const (
	OutcomeResolved   = "resolved"
	OutcomeUnresolved = "unresolved"
	OutcomeDefaulted  = "defaulted"
	OutcomeDenied     = "denied"
)

// DescribeDevice condenses a User-Agent header into a short browser/OS
// description for event records. Unparseable agents fall back to the raw
// string, truncated.
func DescribeDevice(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	if name == "" {
		if len(rawUA) > 64 {
			return rawUA[:64]
		}
		return rawUA
	}
	parts := []string{name}
	if version != "" {
		parts = append(parts, version)
	}
	if os := ua.OS(); os != "" {
		parts = append(parts, "on", os)
	}
	return strings.Join(parts, " ")
}
