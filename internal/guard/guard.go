// Package guard enforces the anti-tampering state machine around the
// resolution lock. A session is either Unresolved (no lock) or Locked(code),
// and Locked is terminal: clients can never assert a jurisdiction directly or
// switch away from a locked decision. Denials are surfaced, never silently
// corrected.
package guard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"schemegate/internal/audit"
	"schemegate/internal/jurisdiction"
	"schemegate/internal/resolver"
	dErrors "schemegate/pkg/domain-errors"
	"schemegate/pkg/platform/httputil"
	"schemegate/pkg/requestcontext"
)

// Guard verifies direct jurisdiction addressing against the session lock.
type Guard struct {
	locks  resolver.LockStore
	logger *slog.Logger
	audit  *audit.Publisher
}

// Option configures a Guard.
type Option func(*Guard)

// WithAudit attaches the audit publisher so denials are recorded.
func WithAudit(p *audit.Publisher) Option {
	return func(g *Guard) { g.audit = p }
}

// New builds an access guard over the lock store.
func New(locks resolver.LockStore, logger *slog.Logger, opts ...Option) *Guard {
	g := &Guard{locks: locks, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// VerifyCodePath guards routes carrying an explicit {code} URL segment.
// Asserting a code without having gone through the pipeline, or addressing a
// code different from the locked one, is rejected with access denied.
func (g *Guard) VerifyCodePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requested := jurisdiction.Code(chi.URLParam(r, "code"))
		if !requested.Valid() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown jurisdiction"))
			return
		}

		sessionID := requestcontext.SessionID(ctx)
		if sessionID == "" {
			g.deny(w, r, requested, "no session")
			return
		}

		lock, err := g.locks.Get(ctx, sessionID)
		if err != nil {
			// Covers both a missing lock and a store failure: without a
			// verified lock the assertion cannot be trusted.
			g.deny(w, r, requested, "no locked decision")
			return
		}
		if lock.Code != requested {
			g.deny(w, r, requested, "locked to a different jurisdiction")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, requested jurisdiction.Code, reason string) {
	ctx := r.Context()
	sessionID := requestcontext.SessionID(ctx)

	g.logger.WarnContext(ctx, "rejected direct jurisdiction assertion",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sessionID,
		"requested", requested,
		"reason", reason,
	)
	g.audit.Emit(ctx, audit.Event{
		SessionID: sessionID,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    audit.DescribeDevice(requestcontext.UserAgent(ctx)),
		Code:      requested.String(),
		Outcome:   audit.OutcomeDenied,
		Reason:    reason,
	})

	httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "jurisdiction cannot be asserted directly"))
}
