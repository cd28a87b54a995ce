package resolver

import (
	"schemegate/internal/jurisdiction"
	"schemegate/internal/signal"
)

// signalPriority is the fixed consultation order. A manually supplied code is
// the last resort; a previously locked decision beats everything.
var signalPriority = []signal.Source{
	signal.SourceLock,
	signal.SourceGPS,
	signal.SourceAddress,
	signal.SourceManual,
}

// Decide applies the priority rule to a set of gathered signals. This is pure
// domain logic - no I/O, no side effects. Signals may arrive in any order
// (for example from parallel gathering); priority is decided here, never by
// completion order.
//
// The first signal that normalizes to a code the registry can serve wins.
// Codes without registry content are treated as unknown, preserving the
// invariant that every resolved code has content.
func Decide(signals []signal.RawSignal, known func(jurisdiction.Code) bool) Outcome {
	for _, source := range signalPriority {
		for _, s := range signals {
			if s.Source != source {
				continue
			}
			code := s.Normalize()
			if code == jurisdiction.Unknown || !known(code) {
				continue
			}
			return Outcome{Code: code, Resolved: true, Source: source}
		}
	}
	return Outcome{}
}
