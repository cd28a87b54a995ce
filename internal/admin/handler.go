// Package admin exposes the explicit lock-override operation. Overriding is
// the only sanctioned way to change a locked decision: it is authenticated,
// audited, and never reachable from the client-facing pipeline.
package admin

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"schemegate/internal/audit"
	"schemegate/internal/jurisdiction"
	"schemegate/internal/resolver"
	dErrors "schemegate/pkg/domain-errors"
	"schemegate/pkg/platform/httputil"
	adminmw "schemegate/pkg/platform/middleware/admin"
	"schemegate/pkg/requestcontext"
)

// Handler wires the admin override endpoint to the lock store.
type Handler struct {
	overrider resolver.LockOverrider
	keyHash   string
	logger    *slog.Logger
	audit     *audit.Publisher
}

// New constructs the admin handler. keyHash is the bcrypt hash of the shared
// admin key; empty disables the surface.
func New(overrider resolver.LockOverrider, keyHash string, logger *slog.Logger, auditor *audit.Publisher) *Handler {
	return &Handler{
		overrider: overrider,
		keyHash:   keyHash,
		logger:    logger,
		audit:     auditor,
	}
}

// Register mounts the admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.With(adminmw.RequireAdminKey(h.keyHash, h.logger)).
		Post("/admin/override", h.HandleOverride)
}

// OverrideRequest is the HTTP request body for POST /admin/override.
type OverrideRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`

	parsedCode jurisdiction.Code
}

// Validate validates and parses the request.
func (r *OverrideRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.SessionID = strings.TrimSpace(r.SessionID)
	if r.SessionID == "" {
		return dErrors.New(dErrors.CodeValidation, "session_id is required")
	}
	code := jurisdiction.Normalize(r.Code)
	if code == jurisdiction.Unknown {
		return dErrors.New(dErrors.CodeValidation, "unknown jurisdiction code")
	}
	r.parsedCode = code
	return nil
}

// HandleOverride handles POST /admin/override: an unconditional replacement
// of a session's locked decision.
func (h *Handler) HandleOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OverrideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	lock := resolver.Lock{
		SessionID: req.SessionID,
		Code:      req.parsedCode,
		CreatedAt: time.Now(),
	}
	if err := h.overrider.Override(ctx, lock); err != nil {
		h.logger.ErrorContext(ctx, "lock override failed",
			"request_id", requestID,
			"session_id", req.SessionID,
			"code", req.parsedCode,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeUnavailable, "override failed", err))
		return
	}

	h.logger.InfoContext(ctx, "session lock overridden",
		"request_id", requestID,
		"session_id", req.SessionID,
		"code", req.parsedCode,
	)
	h.audit.Emit(ctx, audit.Event{
		SessionID: req.SessionID,
		RequestID: requestID,
		ClientIP:  requestcontext.ClientIP(ctx),
		Source:    "override",
		Code:      req.parsedCode.String(),
		Outcome:   audit.OutcomeResolved,
		Reason:    "administrative override",
	})

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"session_id": req.SessionID,
		"code":       req.parsedCode.String(),
	})
}
