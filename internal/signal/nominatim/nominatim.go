// Package nominatim adapts an OpenStreetMap-compatible reverse geocoding
// service to the signal.ReverseGeocoder contract.
package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"schemegate/internal/signal"
)

// DefaultBaseURL points at the public Nominatim instance. Deployments should
// run their own mirror; the public one rate-limits aggressively.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

const providerID = "nominatim"

// Client calls the reverse geocoding endpoint with a bounded timeout.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New constructs a reverse geocoding client. The userAgent identifies this
// deployment to the provider, which Nominatim's usage policy requires.
func New(baseURL, userAgent string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReverseGeocode resolves a coordinate to a free-text state name. Any failure
// is returned as a *signal.ProviderError so the pipeline can treat it as
// signal absence.
func (c *Client) ReverseGeocode(ctx context.Context, point signal.GeoPoint) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(point.Lon, 'f', -1, 64))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", signal.NewProviderError(signal.ErrorInternal, providerID, "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", signal.NewProviderError(signal.ErrorBadData, providerID, "read response body", err)
	}

	return parseReverseResponse(resp.StatusCode, body)
}

// reverseResponse is the subset of the Nominatim payload the engine needs.
type reverseResponse struct {
	Address struct {
		State string `json:"state"`
		City  string `json:"city"`
	} `json:"address"`
	Error string `json:"error"`
}

func parseReverseResponse(status int, body []byte) (string, error) {
	if status != http.StatusOK {
		return "", signal.NewProviderError(signal.ErrorProviderOutage, providerID,
			fmt.Sprintf("unexpected status %d", status), nil)
	}

	var parsed reverseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", signal.NewProviderError(signal.ErrorBadData, providerID, "decode response", err)
	}
	if parsed.Error != "" {
		return "", signal.NewProviderError(signal.ErrorNotFound, providerID, parsed.Error, nil)
	}

	// Delhi reports itself as a city rather than a state in some payloads.
	place := parsed.Address.State
	if place == "" {
		place = parsed.Address.City
	}
	if place == "" {
		return "", signal.NewProviderError(signal.ErrorNotFound, providerID, "no state in response", nil)
	}
	return place, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return signal.NewProviderError(signal.ErrorTimeout, providerID, "request timed out", err)
	}
	return signal.NewProviderError(signal.ErrorProviderOutage, providerID, "request failed", err)
}
