package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemegate/internal/content"
	"schemegate/internal/guard"
	"schemegate/internal/resolver"
	resolverhandler "schemegate/internal/resolver/handler"
	"schemegate/internal/resolver/store"
	"schemegate/internal/session"
	"schemegate/internal/signal/ipapi"
	"schemegate/internal/signal/nominatim"
)

// testStack is the fully wired HTTP surface against stub provider servers.
type testStack struct {
	router   http.Handler
	geoCalls *atomic.Int64
}

func newTestStack(t *testing.T, policy resolver.UnresolvedPolicy) *testStack {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var geoCalls atomic.Int64
	geoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		geoCalls.Add(1)
		_, _ = w.Write([]byte(`{"address": {"state": "Rajasthan", "city": "Jaipur"}}`))
	}))
	t.Cleanup(geoServer.Close)

	ipServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"region": "Karnataka", "city": "Bengaluru"}`))
	}))
	t.Cleanup(ipServer.Close)

	registry := content.Default()
	locks := store.NewInMemory()
	svc := resolver.NewService(
		locks,
		nominatim.New(geoServer.URL, "schemegate-test", time.Second),
		ipapi.New(ipServer.URL, time.Second),
		registry,
		policy,
		logger,
	)

	g := guard.New(locks, logger)
	router := NewRouter(Deps{
		Sessions: session.NewManager("test-signing-key", time.Hour, logger),
		Resolver: resolverhandler.New(svc, registry, g, logger),
	})
	return &testStack{router: router, geoCalls: &geoCalls}
}

func (s *testStack) do(t *testing.T, req *http.Request, cookies []*http.Cookie) (*httptest.ResponseRecorder, []*http.Cookie) {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		cookies = set
	}
	return rec, cookies
}

func TestResolutionFlow(t *testing.T) {
	t.Run("gps resolves and the lock wins on repeat requests", func(t *testing.T) {
		stack := newTestStack(t, resolver.UnresolvedPolicy{Mode: resolver.PolicyReject})

		req := httptest.NewRequest(http.MethodPost, "/gps-detect",
			strings.NewReader(`{"lat": 26.9124, "lon": 75.7873}`))
		req.RemoteAddr = "203.0.113.7:41234"
		rec, cookies := stack.do(t, req, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp resolverhandler.ResolveResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "gps", resp.Source)
		assert.Equal(t, "rajasthan", resp.Scheme.Code)
		require.NotEmpty(t, cookies)

		// Same session again: served from the lock, no provider call.
		before := stack.geoCalls.Load()
		req = httptest.NewRequest(http.MethodPost, "/gps-detect",
			strings.NewReader(`{"lat": 12.9716, "lon": 77.5946}`))
		req.RemoteAddr = "203.0.113.7:41234"
		rec, _ = stack.do(t, req, cookies)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "lock", resp.Source)
		assert.Equal(t, "rajasthan", resp.Scheme.Code)
		assert.Equal(t, before, stack.geoCalls.Load())
	})

	t.Run("locked session can read its scheme but not another", func(t *testing.T) {
		stack := newTestStack(t, resolver.UnresolvedPolicy{Mode: resolver.PolicyReject})

		req := httptest.NewRequest(http.MethodPost, "/gps-detect",
			strings.NewReader(`{"lat": 26.9124, "lon": 75.7873}`))
		req.RemoteAddr = "203.0.113.7:41234"
		rec, cookies := stack.do(t, req, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, cookies = stack.do(t, httptest.NewRequest(http.MethodGet, "/scheme/rajasthan", nil), cookies)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, _ = stack.do(t, httptest.NewRequest(http.MethodGet, "/scheme/karnataka", nil), cookies)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("scheme endpoint falls back to the client address", func(t *testing.T) {
		stack := newTestStack(t, resolver.UnresolvedPolicy{Mode: resolver.PolicyReject})

		req := httptest.NewRequest(http.MethodGet, "/scheme", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
		rec, _ := stack.do(t, req, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp resolverhandler.ResolveResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "address", resp.Source)
		assert.Equal(t, "karnataka", resp.Scheme.Code)
	})

	t.Run("health and metrics endpoints respond", func(t *testing.T) {
		stack := newTestStack(t, resolver.UnresolvedPolicy{Mode: resolver.PolicyReject})

		rec, _ := stack.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, _ = stack.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
