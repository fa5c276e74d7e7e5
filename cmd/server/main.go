package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"finvoice/internal/audit"
	auditkafka "finvoice/internal/audit/kafka"
	auditpg "finvoice/internal/audit/postgres"
	"finvoice/internal/chain"
	"finvoice/internal/invoice"
	invoicecache "finvoice/internal/invoice/cache"
	invoicehandler "finvoice/internal/invoice/handler"
	invoicemetrics "finvoice/internal/invoice/metrics"
	jwttoken "finvoice/internal/jwt_token"
	"finvoice/internal/ledger"
	"finvoice/internal/oracle"
	oraclehandler "finvoice/internal/oracle/handler"
	oraclemetrics "finvoice/internal/oracle/metrics"
	"finvoice/internal/platform/config"
	"finvoice/internal/platform/httpserver"
	"finvoice/internal/platform/logger"
	platformmetrics "finvoice/internal/platform/metrics"
	platformredis "finvoice/internal/platform/redis"
	"finvoice/internal/pool"
	poolhandler "finvoice/internal/pool/handler"
	poolmetrics "finvoice/internal/pool/metrics"
	"finvoice/internal/title"
	httptransport "finvoice/internal/transport/http"
	"finvoice/pkg/domain"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	heights := chain.NewCounter()
	funds := ledger.NewInMemoryLedger()
	titles := title.NewInMemoryRegistry()

	// Audit trail: in-memory store by default, Postgres outbox and Kafka sink
	// when configured.
	var auditStore audit.Store = audit.NewInMemoryStore()
	if cfg.Postgres.DSN != "" {
		pg, err := auditpg.Open(cfg.Postgres.DSN)
		if err != nil {
			log.Error("postgres audit store unavailable", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		auditStore = pg
	}
	auditOpts := []audit.Option{audit.WithLogger(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := auditkafka.NewSink(context.Background(), cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka audit sink unavailable", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink))
	}
	trail := audit.NewPublisher(auditStore, auditOpts...)

	var invoiceStore invoice.Store = invoice.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		invoiceStore = invoicecache.New(invoiceStore, redisClient.Client, invoicecache.WithLogger(log))
	}

	invoices := invoice.NewService(invoiceStore, funds, titles, heights,
		invoice.WithAudit(trail),
		invoice.WithMetrics(invoicemetrics.New()),
	)
	listings := pool.NewService(pool.NewInMemoryStore(), funds, titles, heights,
		pool.WithAudit(trail),
		pool.WithMetrics(poolmetrics.New()),
	)
	oracles := oracle.NewService(oracle.NewInMemoryStore(), funds, heights,
		domain.Principal(cfg.OracleAdmin),
		oracle.WithAudit(trail),
		oracle.WithMetrics(oraclemetrics.New()),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "finvoice")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)
	transportMetrics := platformmetrics.New()

	router := httptransport.NewRouter(
		invoicehandler.New(invoices, log, transportMetrics, validator),
		poolhandler.New(listings, log, transportMetrics, validator),
		oraclehandler.New(oracles, log, transportMetrics, validator),
	)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting finvoice", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("finvoice stopped")
}
