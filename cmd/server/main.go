package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"certpay/internal/application"
	apphandler "certpay/internal/application/handler"
	appmetrics "certpay/internal/application/metrics"
	"certpay/internal/audit"
	audithandler "certpay/internal/audit/handler"
	"certpay/internal/certificate"
	certhandler "certpay/internal/certificate/handler"
	"certpay/internal/payment"
	payhandler "certpay/internal/payment/handler"
	paymetrics "certpay/internal/payment/metrics"
	"certpay/internal/payment/store/reference"
	"certpay/internal/platform/config"
	"certpay/internal/platform/httpserver"
	"certpay/internal/platform/logger"
	"certpay/internal/platform/postgres"
	platformredis "certpay/internal/platform/redis"
	"certpay/pkg/platform/middleware/requestid"
	"certpay/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		log.Error("store setup failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	auditInbox := make(chan audit.Entry, 256)
	auditor := audit.NewPublisher(auditInbox)
	auditWorker := audit.NewWorker(stores.audit, auditInbox, log)

	appService, err := application.NewService(stores.applications,
		application.WithLogger(log),
		application.WithMetrics(appmetrics.New()),
		application.WithAuditPublisher(auditor),
	)
	if err != nil {
		log.Error("application service setup failed", "error", err)
		os.Exit(1)
	}

	payService, err := payment.NewService(stores.references,
		payment.WithLogger(log),
		payment.WithMetrics(paymetrics.New()),
		payment.WithAuditPublisher(auditor),
	)
	if err != nil {
		log.Error("payment service setup failed", "error", err)
		os.Exit(1)
	}

	certService, err := certificate.NewService(stores.certificates, appService,
		certificate.WithLogger(log),
		certificate.WithAuditPublisher(auditor),
	)
	if err != nil {
		log.Error("certificate service setup failed", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	apphandler.New(appService, log).Register(r)
	payhandler.New(payService, appService, log).Register(r)
	certhandler.New(certService, log).Register(r)
	audithandler.New(stores.audit, log).Register(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting certpay", "addr", cfg.Addr, "store", string(cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := auditWorker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// stores bundles every persistence dependency main needs to wire.
type stores struct {
	references   reference.Registry
	applications application.Store
	certificates certificate.Store
	audit        audit.Store
}

// buildStores selects backends from configuration. Record stores follow
// CERTPAY_STORE; the reference registry may be pinned to Redis on top of any
// record backend for multi-instance deployments.
func buildStores(ctx context.Context, cfg config.Server) (*stores, func(), error) {
	cleanups := make([]func(), 0, 2)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	s := &stores{}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, func() { _ = db.Close() })
		s.references = reference.NewPostgres(db)
		s.applications = application.NewPostgresStore(db)
		s.certificates = certificate.NewPostgresStore(db)
		s.audit = audit.NewPostgresStore(db)

	case config.BackendBolt:
		registry, err := reference.NewBolt(cfg.BoltPath)
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, func() { _ = registry.Close() })
		s.references = registry
		s.applications = application.NewInMemoryStore()
		s.certificates = certificate.NewInMemoryStore()
		s.audit = audit.NewInMemoryStore()

	default:
		s.references = reference.NewInMemory()
		s.applications = application.NewInMemoryStore()
		s.certificates = certificate.NewInMemoryStore()
		s.audit = audit.NewInMemoryStore()
	}

	if cfg.UseRedisRegistry {
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, cleanup, err
		}
		if client != nil {
			cleanups = append(cleanups, func() { _ = client.Close() })
			s.references = reference.NewRedis(client.Client)
		}
	}

	return s, cleanup, nil
}
