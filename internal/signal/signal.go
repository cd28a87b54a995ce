// Package signal defines the evidence the resolution pipeline consumes: the
// tagged signal variants, the contracts external location providers must
// satisfy, and the normalized failure taxonomy for provider errors.
package signal

import (
	"context"

	"schemegate/internal/jurisdiction"
)

// Source identifies where a signal came from. Sources are consulted in a
// fixed priority order; see the resolver package.
type Source string

const (
	SourceLock    Source = "lock"
	SourceGPS     Source = "gps"
	SourceAddress Source = "address"
	SourceManual  Source = "manual"
)

// RawSignal is one piece of untrusted location evidence. All variants carry
// free text except the lock, which carries an already-validated code.
type RawSignal struct {
	Source Source

	// Code is set only for SourceLock.
	Code jurisdiction.Code

	// Place is the free-text place name for GPS and manual signals.
	Place string

	// Region and City carry the geolocated pair for address signals. The
	// region doubles as disambiguation context for capital-belt satellite
	// cities.
	Region string
	City   string
}

// LockedDecision wraps a previously locked code as the highest-priority signal.
func LockedDecision(code jurisdiction.Code) RawSignal {
	return RawSignal{Source: SourceLock, Code: code}
}

// GpsPlace wraps a reverse-geocoded place name.
func GpsPlace(place string) RawSignal {
	return RawSignal{Source: SourceGPS, Place: place}
}

// AddressPlace wraps a geolocated region/city pair.
func AddressPlace(region, city string) RawSignal {
	return RawSignal{Source: SourceAddress, Region: region, City: city}
}

// ManualCode wraps a caller-supplied code. It is free text and goes through
// the same normalization as any other signal.
func ManualCode(text string) RawSignal {
	return RawSignal{Source: SourceManual, Place: text}
}

// Normalize runs the signal through jurisdiction normalization. Lock signals
// pass their code straight through. Address signals try the region first and
// fall back to the city with the region as disambiguation context.
func (s RawSignal) Normalize() jurisdiction.Code {
	switch s.Source {
	case SourceLock:
		return s.Code
	case SourceAddress:
		if code := jurisdiction.Normalize(s.Region); code != jurisdiction.Unknown {
			return code
		}
		return jurisdiction.NormalizeIn(s.City, s.Region)
	default:
		return jurisdiction.Normalize(s.Place)
	}
}

// GeoPoint is a device-reported GPS coordinate.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Geolocation is the region/city pair an address-geolocation provider returns.
type Geolocation struct {
	Region string
	City   string
}

// ReverseGeocoder turns a coordinate into a free-text place name.
// Implementations must bound the call with their configured timeout and
// return a *ProviderError on any failure.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, point GeoPoint) (string, error)
}

// AddressLocator geolocates a client network address. Private or unroutable
// addresses are still attempted in best-effort form (the provider geolocates
// the requester's own egress address).
type AddressLocator interface {
	Locate(ctx context.Context, addr string) (Geolocation, error)
}
