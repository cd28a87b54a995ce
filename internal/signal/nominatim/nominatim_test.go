package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemegate/internal/signal"
)

func TestReverseGeocode(t *testing.T) {
	t.Run("returns state from payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/reverse", r.URL.Path)
			assert.Equal(t, "26.9", r.URL.Query().Get("lat"))
			assert.Equal(t, "75.8", r.URL.Query().Get("lon"))
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			assert.Equal(t, "schemegate-test/1.0", r.Header.Get("User-Agent"))
			w.Write([]byte(`{"address":{"state":"Rajasthan","city":"Jaipur"}}`))
		}))
		defer srv.Close()

		c := New(srv.URL, "schemegate-test/1.0", time.Second)
		place, err := c.ReverseGeocode(context.Background(), signal.GeoPoint{Lat: 26.9, Lon: 75.8})
		require.NoError(t, err)
		assert.Equal(t, "Rajasthan", place)
	})

	t.Run("falls back to city when state is absent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"address":{"city":"New Delhi"}}`))
		}))
		defer srv.Close()

		c := New(srv.URL, "ua", time.Second)
		place, err := c.ReverseGeocode(context.Background(), signal.GeoPoint{Lat: 28.6, Lon: 77.2})
		require.NoError(t, err)
		assert.Equal(t, "New Delhi", place)
	})

	t.Run("non-success status is a provider outage", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c := New(srv.URL, "ua", time.Second)
		_, err := c.ReverseGeocode(context.Background(), signal.GeoPoint{Lat: 26.9, Lon: 75.8})
		require.Error(t, err)
		assert.Equal(t, signal.ErrorProviderOutage, signal.Category(err))
	})

	t.Run("malformed payload is bad data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>not json</html>`))
		}))
		defer srv.Close()

		c := New(srv.URL, "ua", time.Second)
		_, err := c.ReverseGeocode(context.Background(), signal.GeoPoint{Lat: 26.9, Lon: 75.8})
		require.Error(t, err)
		assert.Equal(t, signal.ErrorBadData, signal.Category(err))
	})

	t.Run("provider error field maps to not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"Unable to geocode"}`))
		}))
		defer srv.Close()

		c := New(srv.URL, "ua", time.Second)
		_, err := c.ReverseGeocode(context.Background(), signal.GeoPoint{Lat: 0, Lon: 0})
		require.Error(t, err)
		assert.Equal(t, signal.ErrorNotFound, signal.Category(err))
	})

	t.Run("slow provider times out", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(250 * time.Millisecond)
			w.Write([]byte(`{"address":{"state":"Rajasthan"}}`))
		}))
		defer srv.Close()

		c := New(srv.URL, "ua", 50*time.Millisecond)
		_, err := c.ReverseGeocode(context.Background(), signal.GeoPoint{Lat: 26.9, Lon: 75.8})
		require.Error(t, err)
		assert.Equal(t, signal.ErrorTimeout, signal.Category(err))
	})
}
