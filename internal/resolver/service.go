package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"schemegate/internal/audit"
	"schemegate/internal/jurisdiction"
	"schemegate/internal/resolver/metrics"
	"schemegate/internal/signal"
	"schemegate/pkg/platform/sentinel"
	"schemegate/pkg/requestcontext"
)

// defaultGatherTimeout bounds the whole signal-gathering phase. Individual
// providers carry their own per-call timeouts; this is the backstop.
const defaultGatherTimeout = 5 * time.Second

// Registry is the slice of the content registry the pipeline needs: a
// membership check that upholds the "every resolved code has content"
// invariant.
type Registry interface {
	Has(code jurisdiction.Code) bool
}

// Service orchestrates one resolution: lock check, signal gathering in
// priority order, normalization, and write-once persistence.
type Service struct {
	locks    LockStore
	geocoder signal.ReverseGeocoder
	locator  signal.AddressLocator
	registry Registry
	policy   UnresolvedPolicy

	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
	tracer  trace.Tracer

	gatherTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit attaches the audit publisher.
func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// WithTracer attaches an OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithGatherTimeout overrides the signal-gathering backstop timeout.
func WithGatherTimeout(d time.Duration) Option {
	return func(s *Service) { s.gatherTimeout = d }
}

// NewService wires the pipeline dependencies.
func NewService(
	locks LockStore,
	geocoder signal.ReverseGeocoder,
	locator signal.AddressLocator,
	registry Registry,
	policy UnresolvedPolicy,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		locks:         locks,
		geocoder:      geocoder,
		locator:       locator,
		registry:      registry,
		policy:        policy,
		logger:        logger,
		tracer:        noop.NewTracerProvider().Tracer("resolver"),
		gatherTimeout: defaultGatherTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve runs one resolution attempt. A locked session returns immediately
// without touching either provider; otherwise signals are gathered, the
// priority rule decides, and a successful decision is locked write-once.
func (s *Service) Resolve(ctx context.Context, req Request) (Outcome, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveResolveLatency(time.Since(start))
	}()

	ctx, span := s.tracer.Start(ctx, "resolver.Resolve")
	defer span.End()

	if lock, ok := s.existingLock(ctx, req.SessionID); ok {
		span.SetAttributes(attribute.String("resolution.source", string(signal.SourceLock)))
		s.metrics.IncrementOutcome(string(signal.SourceLock))
		return Outcome{Code: lock.Code, Resolved: true, Source: signal.SourceLock}, nil
	}

	signals := s.gatherSignals(ctx, req)
	if req.ManualCode != "" {
		signals = append(signals, signal.ManualCode(req.ManualCode))
	}

	out := Decide(signals, s.registry.Has)
	if out.Resolved {
		out = s.lockDecision(ctx, req.SessionID, out)
		span.SetAttributes(
			attribute.String("resolution.source", string(out.Source)),
			attribute.String("resolution.code", out.Code.String()),
		)
		s.metrics.IncrementOutcome(string(out.Source))
		s.emit(ctx, req.SessionID, audit.OutcomeResolved, string(out.Source), out.Code.String(), "")
		return out, nil
	}

	// Every candidate was absent, provider-failed, or unknown.
	if s.policy.Mode == PolicyDefault {
		span.SetAttributes(attribute.String("resolution.source", "default"))
		s.metrics.IncrementOutcome("default")
		s.emit(ctx, req.SessionID, audit.OutcomeDefaulted, "default", s.policy.DefaultCode.String(), "all signals exhausted")
		// The default is served, never locked: a later request with real
		// signals must still be able to resolve properly.
		return Outcome{Code: s.policy.DefaultCode, Resolved: true, Defaulted: true}, nil
	}

	s.metrics.IncrementOutcome("unresolved")
	s.emit(ctx, req.SessionID, audit.OutcomeUnresolved, "", "", "all signals exhausted")
	return Outcome{}, nil
}

// existingLock looks up a session lock. A store failure degrades to running
// the pipeline rather than failing the request.
func (s *Service) existingLock(ctx context.Context, sessionID string) (Lock, bool) {
	if sessionID == "" {
		return Lock{}, false
	}
	lock, err := s.locks.Get(ctx, sessionID)
	if err == nil {
		return lock, true
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "lock store lookup failed, falling back to pipeline",
			"session_id", sessionID,
			"error", err,
		)
	}
	return Lock{}, false
}

// gatherSignals consults the GPS and address providers concurrently. The
// priority rule is applied afterwards over completed results, so parallelism
// never changes which signal wins. Provider failures degrade to absence.
func (s *Service) gatherSignals(ctx context.Context, req Request) []signal.RawSignal {
	ctx, cancel := context.WithTimeout(ctx, s.gatherTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var gps, addr *signal.RawSignal

	if req.Point != nil {
		point := *req.Point
		g.Go(func() error {
			callStart := time.Now()
			ctx, span := s.tracer.Start(ctx, "signal.gps")
			defer span.End()

			place, err := s.geocoder.ReverseGeocode(ctx, point)
			s.metrics.ObserveSignalLatency(string(signal.SourceGPS), time.Since(callStart))
			if err != nil {
				s.recordProviderFailure(ctx, signal.SourceGPS, err)
				return nil
			}
			sig := signal.GpsPlace(place)
			gps = &sig
			return nil
		})
	}

	if req.ClientAddr != "" {
		g.Go(func() error {
			callStart := time.Now()
			ctx, span := s.tracer.Start(ctx, "signal.address")
			defer span.End()

			loc, err := s.locator.Locate(ctx, req.ClientAddr)
			s.metrics.ObserveSignalLatency(string(signal.SourceAddress), time.Since(callStart))
			if err != nil {
				s.recordProviderFailure(ctx, signal.SourceAddress, err)
				return nil
			}
			sig := signal.AddressPlace(loc.Region, loc.City)
			addr = &sig
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	var signals []signal.RawSignal
	if gps != nil {
		signals = append(signals, *gps)
	}
	if addr != nil {
		signals = append(signals, *addr)
	}
	return signals
}

// lockDecision persists a resolved code write-once. When a concurrent first
// request won the race, the stored decision wins and this attempt's result is
// discarded without error.
func (s *Service) lockDecision(ctx context.Context, sessionID string, out Outcome) Outcome {
	if sessionID == "" {
		return out
	}

	err := s.locks.PutOnce(ctx, Lock{
		SessionID: sessionID,
		Code:      out.Code,
		CreatedAt: requestcontext.Now(ctx),
	})
	if err == nil {
		return out
	}
	if errors.Is(err, sentinel.ErrConflict) {
		if stored, getErr := s.locks.Get(ctx, sessionID); getErr == nil {
			return Outcome{Code: stored.Code, Resolved: true, Source: signal.SourceLock}
		}
		return out
	}

	s.logger.WarnContext(ctx, "failed to persist jurisdiction lock",
		"session_id", sessionID,
		"code", out.Code,
		"error", err,
	)
	return out
}

func (s *Service) recordProviderFailure(ctx context.Context, source signal.Source, err error) {
	category := string(signal.Category(err))
	s.metrics.IncrementProviderFailure(string(source), category)
	s.logger.WarnContext(ctx, "signal provider failed, advancing to next signal",
		"source", source,
		"category", category,
		"error", err,
	)
}

func (s *Service) emit(ctx context.Context, sessionID, outcome, source, code, reason string) {
	s.audit.Emit(ctx, audit.Event{
		SessionID: sessionID,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    audit.DescribeDevice(requestcontext.UserAgent(ctx)),
		Source:    source,
		Code:      code,
		Outcome:   outcome,
		Reason:    reason,
	})
}
