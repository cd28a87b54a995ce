// Command server wires high-level dependencies and runs the HTTP server.
// Business logic lives in the internal packages; main only selects backends
// from configuration and manages the process lifecycle.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	adminhandler "schemegate/internal/admin"
	"schemegate/internal/audit"
	"schemegate/internal/content"
	"schemegate/internal/guard"
	"schemegate/internal/platform/config"
	"schemegate/internal/platform/httpserver"
	"schemegate/internal/platform/logger"
	platformredis "schemegate/internal/platform/redis"
	"schemegate/internal/resolver"
	resolverhandler "schemegate/internal/resolver/handler"
	"schemegate/internal/resolver/metrics"
	"schemegate/internal/resolver/store"
	"schemegate/internal/session"
	"schemegate/internal/signal/ipapi"
	"schemegate/internal/signal/nominatim"
	httptransport "schemegate/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	policy, err := resolver.ParsePolicy(cfg.UnresolvedPolicy)
	if err != nil {
		log.Error("invalid unresolved policy", "policy", cfg.UnresolvedPolicy, "error", err)
		os.Exit(1)
	}

	pool, err := buildPgxPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	locks, overrider, cleanup, err := buildLockStore(ctx, cfg, pool)
	if err != nil {
		log.Error("failed to initialize lock store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	auditor, auditCleanup, err := buildAuditor(cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize audit pipeline", "error", err)
		os.Exit(1)
	}
	defer auditCleanup()

	registry := content.Default()
	svc := resolver.NewService(
		locks,
		nominatim.New(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.ProviderTimeout),
		ipapi.New(cfg.IPAPIBaseURL, cfg.ProviderTimeout),
		registry,
		policy,
		log,
		resolver.WithMetrics(metrics.New()),
		resolver.WithAudit(auditor),
	)

	g := guard.New(locks, log, guard.WithAudit(auditor))

	var admin *adminhandler.Handler
	if cfg.AdminKeyHash != "" {
		admin = adminhandler.New(overrider, cfg.AdminKeyHash, log, auditor)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Sessions: session.NewManager(cfg.JWTSigningKey, cfg.SessionTTL, log),
		Resolver: resolverhandler.New(svc, registry, g, log),
		Admin:    admin,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting schemegate",
		"addr", cfg.Addr,
		"policy", cfg.UnresolvedPolicy,
		"admin_enabled", admin != nil,
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildPgxPool connects to Postgres when a DSN is configured, verifying
// connectivity up front. The pool is shared by the lock and audit stores.
func buildPgxPool(ctx context.Context, cfg config.Server) (*pgxpool.Pool, error) {
	if cfg.PostgresDSN == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// buildLockStore selects the lock store backend: Redis when configured,
// Postgres otherwise, in-memory as the single-instance fallback.
func buildLockStore(ctx context.Context, cfg config.Server, pool *pgxpool.Pool) (resolver.LockStore, resolver.LockOverrider, func(), error) {
	if cfg.RedisURL != "" {
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		s := store.NewRedis(client.Client)
		return s, s, func() { _ = client.Close() }, nil
	}

	if pool != nil {
		s := store.NewPostgres(pool)
		return s, s, func() {}, nil
	}

	s := store.NewInMemory()
	return s, s, func() {}, nil
}

// buildAuditor assembles the audit publisher: Postgres store when a pool is
// available, in-process otherwise, plus the Kafka sink when brokers are
// configured.
func buildAuditor(cfg config.Server, pool *pgxpool.Pool, log *slog.Logger) (*audit.Publisher, func(), error) {
	var eventStore audit.Store = audit.NewInMemoryStore()
	if pool != nil {
		eventStore = audit.NewPostgresStore(pool)
	}

	if len(cfg.KafkaBrokers) == 0 {
		return audit.NewPublisher(eventStore, nil, log), func() {}, nil
	}
	sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, nil, err
	}
	return audit.NewPublisher(eventStore, sink, log), sink.Close, nil
}
