package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"schemegate/internal/jurisdiction"
	"schemegate/internal/signal"
)

func allKnown(jurisdiction.Code) bool { return true }

func TestDecide(t *testing.T) {
	t.Run("lock beats every other signal", func(t *testing.T) {
		out := Decide([]signal.RawSignal{
			signal.ManualCode("karnataka"),
			signal.GpsPlace("Rajasthan"),
			signal.LockedDecision(jurisdiction.Delhi),
		}, allKnown)

		assert.True(t, out.Resolved)
		assert.Equal(t, jurisdiction.Delhi, out.Code)
		assert.Equal(t, signal.SourceLock, out.Source)
	})

	t.Run("gps beats address even when both resolve", func(t *testing.T) {
		out := Decide([]signal.RawSignal{
			signal.AddressPlace("Karnataka", "Bengaluru"),
			signal.GpsPlace("Rajasthan"),
		}, allKnown)

		assert.Equal(t, jurisdiction.Rajasthan, out.Code)
		assert.Equal(t, signal.SourceGPS, out.Source)
	})

	t.Run("unknown gps place falls through to address", func(t *testing.T) {
		out := Decide([]signal.RawSignal{
			signal.GpsPlace("Somewhere Else"),
			signal.AddressPlace("Tamil Nadu", "Chennai"),
		}, allKnown)

		assert.Equal(t, jurisdiction.TamilNadu, out.Code)
		assert.Equal(t, signal.SourceAddress, out.Source)
	})

	t.Run("manual code is last resort and is normalized", func(t *testing.T) {
		out := Decide([]signal.RawSignal{
			signal.ManualCode("  State of Kerala  "),
		}, allKnown)

		assert.Equal(t, jurisdiction.Kerala, out.Code)
		assert.Equal(t, signal.SourceManual, out.Source)
	})

	t.Run("signal order in the slice does not matter", func(t *testing.T) {
		a := Decide([]signal.RawSignal{
			signal.AddressPlace("Karnataka", ""),
			signal.GpsPlace("Rajasthan"),
		}, allKnown)
		b := Decide([]signal.RawSignal{
			signal.GpsPlace("Rajasthan"),
			signal.AddressPlace("Karnataka", ""),
		}, allKnown)

		assert.Equal(t, a, b)
		assert.Equal(t, jurisdiction.Rajasthan, a.Code)
	})

	t.Run("codes without registry content are treated as unknown", func(t *testing.T) {
		onlyDelhi := func(c jurisdiction.Code) bool { return c == jurisdiction.Delhi }

		out := Decide([]signal.RawSignal{
			signal.GpsPlace("Rajasthan"),
			signal.AddressPlace("Delhi", "New Delhi"),
		}, onlyDelhi)

		assert.Equal(t, jurisdiction.Delhi, out.Code)
		assert.Equal(t, signal.SourceAddress, out.Source)
	})

	t.Run("all signals exhausted yields unresolved", func(t *testing.T) {
		out := Decide([]signal.RawSignal{
			signal.GpsPlace("Nowhere"),
			signal.ManualCode("also nowhere"),
		}, allKnown)

		assert.False(t, out.Resolved)
		assert.Equal(t, jurisdiction.Unknown, out.Code)
	})

	t.Run("no signals at all yields unresolved", func(t *testing.T) {
		out := Decide(nil, allKnown)
		assert.False(t, out.Resolved)
	})
}

func TestParsePolicy(t *testing.T) {
	t.Run("reject", func(t *testing.T) {
		p, err := ParsePolicy("reject")
		assert.NoError(t, err)
		assert.Equal(t, PolicyReject, p.Mode)
	})

	t.Run("empty defaults to reject", func(t *testing.T) {
		p, err := ParsePolicy("")
		assert.NoError(t, err)
		assert.Equal(t, PolicyReject, p.Mode)
	})

	t.Run("default with valid code", func(t *testing.T) {
		p, err := ParsePolicy("default:rajasthan")
		assert.NoError(t, err)
		assert.Equal(t, PolicyDefault, p.Mode)
		assert.Equal(t, jurisdiction.Rajasthan, p.DefaultCode)
	})

	t.Run("default with unknown code fails", func(t *testing.T) {
		_, err := ParsePolicy("default:mordor")
		assert.Error(t, err)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := ParsePolicy("maybe")
		assert.Error(t, err)
	})
}
