package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"schemegate/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	newReq := func(remoteAddr string, headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remoteAddr
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}

	t.Run("prefers first X-Forwarded-For entry", func(t *testing.T) {
		r := newReq("10.0.0.1:4321", map[string]string{
			"X-Forwarded-For": "203.0.113.9, 10.0.0.2, 10.0.0.3",
			"X-Real-IP":       "198.51.100.1",
		})
		assert.Equal(t, "203.0.113.9", ClientIPFromRequest(r))
	})

	t.Run("single X-Forwarded-For entry is trimmed", func(t *testing.T) {
		r := newReq("10.0.0.1:4321", map[string]string{
			"X-Forwarded-For": "  203.0.113.9  ",
		})
		assert.Equal(t, "203.0.113.9", ClientIPFromRequest(r))
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		r := newReq("10.0.0.1:4321", map[string]string{
			"X-Real-IP": "198.51.100.1",
		})
		assert.Equal(t, "198.51.100.1", ClientIPFromRequest(r))
	})

	t.Run("falls back to peer address without port", func(t *testing.T) {
		r := newReq("192.0.2.7:4321", nil)
		assert.Equal(t, "192.0.2.7", ClientIPFromRequest(r))
	})
}

func TestClientMetadata(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:4321"
	r.Header.Set("User-Agent", "schemegate-test/1.0")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.7", gotIP)
	assert.Equal(t, "schemegate-test/1.0", gotUA)
}
