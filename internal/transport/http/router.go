// Package httptransport assembles the HTTP surface: middleware chain, public
// resolution endpoints, the admin surface, and operational endpoints.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "schemegate/internal/admin"
	resolverhandler "schemegate/internal/resolver/handler"
	"schemegate/internal/session"
	"schemegate/pkg/platform/middleware/metadata"
	"schemegate/pkg/platform/middleware/requestid"
	"schemegate/pkg/platform/middleware/requesttime"
)

// Deps carries the handler groups the router mounts. Admin may be nil when
// the admin surface is disabled.
type Deps struct {
	Sessions *session.Manager
	Resolver *resolverhandler.Handler
	Admin    *adminhandler.Handler
}

// NewRouter wires the middleware chain and all endpoints. Request ID and
// client metadata run first so every downstream log line can carry them; the
// session middleware runs before any resolution endpoint so locks attach to a
// stable session.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(deps.Sessions.Attach)
		deps.Resolver.Register(r)
	})

	if deps.Admin != nil {
		deps.Admin.Register(r)
	}

	return r
}
