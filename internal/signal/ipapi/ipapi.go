// Package ipapi adapts an ipapi.co-style network-address geolocation service
// to the signal.AddressLocator contract.
package ipapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"schemegate/internal/signal"
)

// DefaultBaseURL points at the hosted ipapi.co service.
const DefaultBaseURL = "https://ipapi.co"

const providerID = "ipapi"

// Client geolocates client addresses with a bounded timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New constructs a geolocation client.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locate geolocates addr to a region/city pair. Private or unroutable
// addresses fall back to the provider's self-lookup endpoint, which
// geolocates the requester's own egress address; this recovers a usable
// answer when the service runs behind infrastructure that hides the client.
func (c *Client) Locate(ctx context.Context, addr string) (signal.Geolocation, error) {
	target := c.baseURL + "/" + addr + "/json/"
	if !routable(addr) {
		target = c.baseURL + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return signal.Geolocation{}, signal.NewProviderError(signal.ErrorInternal, providerID, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return signal.Geolocation{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return signal.Geolocation{}, signal.NewProviderError(signal.ErrorBadData, providerID, "read response body", err)
	}

	return parseLocateResponse(resp.StatusCode, body)
}

// locateResponse is the subset of the ipapi.co payload the engine needs.
type locateResponse struct {
	Region string `json:"region"`
	City   string `json:"city"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func parseLocateResponse(status int, body []byte) (signal.Geolocation, error) {
	if status != http.StatusOK {
		return signal.Geolocation{}, signal.NewProviderError(signal.ErrorProviderOutage, providerID,
			fmt.Sprintf("unexpected status %d", status), nil)
	}

	var parsed locateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return signal.Geolocation{}, signal.NewProviderError(signal.ErrorBadData, providerID, "decode response", err)
	}
	if parsed.Error {
		return signal.Geolocation{}, signal.NewProviderError(signal.ErrorNotFound, providerID, parsed.Reason, nil)
	}
	if parsed.Region == "" && parsed.City == "" {
		return signal.Geolocation{}, signal.NewProviderError(signal.ErrorNotFound, providerID, "no region in response", nil)
	}

	return signal.Geolocation{Region: parsed.Region, City: parsed.City}, nil
}

// routable reports whether addr is a public address worth querying directly.
func routable(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	return !(ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast())
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return signal.NewProviderError(signal.ErrorTimeout, providerID, "request timed out", err)
	}
	return signal.NewProviderError(signal.ErrorProviderOutage, providerID, "request failed", err)
}
