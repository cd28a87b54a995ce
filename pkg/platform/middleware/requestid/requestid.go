// Package requestid assigns a unique ID to every request for log correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"schemegate/pkg/requestcontext"
)

// Header carries the request ID back to the caller.
const Header = "X-Request-ID"

// RequestID injects a request ID into the context and echoes it in the
// response. An inbound X-Request-ID is honored so IDs stay stable across
// internal hops.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
