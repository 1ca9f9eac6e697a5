// Command server runs the course sales backend: identity, payment intake,
// and processor webhook reconciliation.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"coursegate/internal/audit"
	identityhandler "coursegate/internal/identity/handler"
	identityservice "coursegate/internal/identity/service"
	identitystore "coursegate/internal/identity/store"
	"coursegate/internal/payment/dedup"
	paymenthandler "coursegate/internal/payment/handler"
	"coursegate/internal/payment/processor"
	paymentservice "coursegate/internal/payment/service"
	paymentstore "coursegate/internal/payment/store"
	"coursegate/internal/platform/config"
	"coursegate/internal/platform/httpserver"
	"coursegate/internal/platform/logger"
	"coursegate/internal/platform/metrics"
	"coursegate/internal/platform/postgres"
	"coursegate/internal/platform/redis"
	"coursegate/internal/token"
	"coursegate/internal/transport/http/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New()

	// Stores fall back to memory when no database is configured so the
	// service can run locally without infrastructure.
	var (
		userStore   identityservice.UserStore
		ledger      paymentstore.Ledger
		auditStore  audit.Store
		healthCheck func(ctx context.Context) error
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		userStore = identitystore.NewPostgres(db)
		ledger = paymentstore.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
		healthCheck = db.PingContext
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		userStore = identitystore.NewMemory()
		ledger = paymentstore.NewMemory()
		auditStore = audit.NewMemoryStore()
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	kafkaSink, err := audit.NewKafkaSink(cfg.Kafka, log)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	defer kafkaSink.Close()

	publisher := audit.NewPublisher(256, log)
	worker := audit.NewWorker(auditStore, kafkaSink, publisher.Inbox(), log)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	tokens, err := token.New(cfg.JWTSigningKey, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	identitySvc, err := identityservice.New(userStore, tokens, publisher, m, log)
	if err != nil {
		return fmt.Errorf("identity service: %w", err)
	}

	var processorClient paymentservice.Processor
	if cfg.Processor.BaseURL != "" {
		processorClient = processor.NewHTTPClient(cfg.Processor.BaseURL, cfg.Processor.AccessToken, cfg.Processor.Timeout)
	} else {
		log.Warn("PROCESSOR_BASE_URL not set, using stub processor client")
		processorClient = processor.NewStub()
	}
	paymentSvc, err := paymentservice.New(ledger, processorClient, publisher, m, log,
		paymentservice.WithDeduper(dedup.NewRedis(redisClient, log)),
	)
	if err != nil {
		return fmt.Errorf("payment service: %w", err)
	}

	mux := router.New(router.Deps{
		Logger:         log,
		Metrics:        m,
		Registry:       registry,
		TokenValidator: tokens,
		Identity:       identityhandler.New(identitySvc, cfg.TokenTTL, log),
		Payment:        paymenthandler.New(paymentSvc, log),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Health:         healthCheck,
	})
	server := httpserver.New(cfg.Addr, mux)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("audit worker: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
