package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"schemegate/internal/content"
	"schemegate/internal/guard"
	"schemegate/internal/jurisdiction"
	"schemegate/internal/resolver"
	dErrors "schemegate/pkg/domain-errors"
	"schemegate/pkg/platform/httputil"
	"schemegate/pkg/requestcontext"
)

// Service defines the interface for resolution operations.
type Service interface {
	Resolve(ctx context.Context, req resolver.Request) (resolver.Outcome, error)
}

// Handler wires resolution endpoints to the resolver service.
type Handler struct {
	service  Service
	registry *content.Registry
	guard    *guard.Guard
	logger   *slog.Logger
}

// New constructs a resolution handler with its dependencies.
func New(service Service, registry *content.Registry, g *guard.Guard, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		registry: registry,
		guard:    g,
		logger:   logger,
	}
}

// Register mounts resolution endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/gps-detect", h.HandleGpsDetect)
	r.Get("/scheme", h.HandleScheme)
	r.With(h.guard.VerifyCodePath).Get("/scheme/{code}", h.HandleSchemeByCode)
}

// HandleGpsDetect handles POST /gps-detect requests. The device-reported
// coordinate is the strongest live signal; the client address still rides
// along as the fallback.
func (h *Handler) HandleGpsDetect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[GpsDetectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	out, err := h.service.Resolve(ctx, resolver.Request{
		SessionID:  requestcontext.SessionID(ctx),
		Point:      req.ParsedPoint(),
		ClientAddr: requestcontext.ClientIP(ctx),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "gps resolution failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "gps resolution completed",
		"request_id", requestID,
		"resolved", out.Resolved,
		"source", out.Source,
		"code", out.Code,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	h.respond(w, out)
}

// HandleScheme handles GET /scheme requests: resolution from the client
// address alone, plus an optional manual code hint in the query string.
func (h *Handler) HandleScheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	out, err := h.service.Resolve(ctx, resolver.Request{
		SessionID:  requestcontext.SessionID(ctx),
		ClientAddr: requestcontext.ClientIP(ctx),
		ManualCode: r.URL.Query().Get("code"),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "scheme resolution failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.respond(w, out)
}

// HandleSchemeByCode handles GET /scheme/{code}. The guard middleware has
// already verified the code against the session lock, so this only serves the
// registry entry.
func (h *Handler) HandleSchemeByCode(w http.ResponseWriter, r *http.Request) {
	code := jurisdiction.Code(chi.URLParam(r, "code"))
	scheme, err := h.registry.Lookup(code)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "scheme not available"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromScheme(scheme))
}

// respond translates a pipeline outcome into the HTTP surface. Unresolved
// outcomes are a not-found error; the registry lookup cannot miss for
// resolved outcomes because the pipeline only resolves registry-backed codes.
func (h *Handler) respond(w http.ResponseWriter, out resolver.Outcome) {
	if !out.Resolved {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "jurisdiction could not be determined"))
		return
	}
	scheme, err := h.registry.Lookup(out.Code)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "scheme not available"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(out, scheme))
}
