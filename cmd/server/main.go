// Command server runs the NIL deal clearing service: platform-facing deal
// lifecycle endpoints, the admin compliance surface, and the audit relay.
//
// Stores degrade gracefully: with no Postgres/Redis/Kafka configured the
// process runs entirely in memory, which is the mode integration-light
// environments and the test suite use.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"nilclear/internal/audit"
	"nilclear/internal/compliance"
	"nilclear/internal/deal"
	jwttoken "nilclear/internal/jwt_token"
	"nilclear/internal/kyc"
	"nilclear/internal/platform/config"
	"nilclear/internal/platform/httpserver"
	"nilclear/internal/platform/kafka"
	"nilclear/internal/platform/logger"
	"nilclear/internal/platform/postgres"
	"nilclear/internal/platform/redis"
	"nilclear/internal/platforms"
	"nilclear/internal/sanctions"
	"nilclear/internal/settlement"
	httptransport "nilclear/internal/transport/http"
	"nilclear/internal/volume"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var readiness []httptransport.ReadinessCheck

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		readiness = append(readiness, httptransport.ReadinessCheck{
			Name:  "postgres",
			Check: db.PingContext,
		})
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		readiness = append(readiness, httptransport.ReadinessCheck{
			Name:  "redis",
			Check: redisClient.Health,
		})
	}

	// Audit store doubles as the relay outbox.
	var (
		auditStore  audit.Store
		auditOutbox audit.Outbox
	)
	if db != nil {
		pgAudit := audit.NewPostgres(db)
		auditStore, auditOutbox = pgAudit, pgAudit
	} else {
		memAudit := audit.NewInMemoryStore()
		auditStore, auditOutbox = memAudit, memAudit
	}
	auditor := audit.NewPublisher(auditStore, audit.WithLogger(log))

	var sanctionsStore sanctions.Store = sanctions.NewInMemoryStore()
	var kycStore kyc.Store = kyc.NewInMemoryStore()
	var policyStore compliance.PolicyStore = compliance.NewInMemoryPolicyStore()
	var dealStore deal.Store = deal.NewInMemoryStore()
	var platformStore platforms.Store = platforms.NewInMemoryStore()
	var volumeStore volume.Store = volume.NewInMemoryStore()
	if db != nil {
		sanctionsStore = sanctions.NewPostgres(db)
		kycStore = kyc.NewPostgres(db)
		policyStore = compliance.NewPostgresPolicyStore(db)
		dealStore = deal.NewPostgres(db)
		platformStore = platforms.NewPostgres(db)
	}
	// Volume counters prefer Redis; Postgres via pgx is the fallback when
	// only a database is configured.
	switch {
	case redisClient != nil:
		volumeStore = volume.NewRedisStore(redisClient.Client)
	case db != nil:
		pool, err := postgres.OpenPool(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		volumeStore = volume.NewPostgres(pool)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	policy, err := compliance.NewPolicyService(policyStore, auditor, compliance.WithPolicyLogger(log))
	if err != nil {
		fatal(log, "policy service", err)
	}
	sanctionsSvc, err := sanctions.New(sanctionsStore,
		sanctions.WithLogger(log),
		sanctions.WithAuditPublisher(auditor),
	)
	if err != nil {
		fatal(log, "sanctions service", err)
	}
	kycSvc, err := kyc.New(kycStore, policy,
		kyc.WithLogger(log),
		kyc.WithAuditPublisher(auditor),
	)
	if err != nil {
		fatal(log, "kyc service", err)
	}
	ledger, err := volume.NewLedger(volumeStore, volume.WithLogger(log))
	if err != nil {
		fatal(log, "volume ledger", err)
	}
	gate, err := compliance.NewService(sanctionsSvc, kycSvc, ledger, policy, policy, auditor,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(registry)),
	)
	if err != nil {
		fatal(log, "compliance gate", err)
	}

	vault := settlement.NewInMemoryVault()
	engine, err := settlement.NewEngine(vault, auditor, settlement.WithLogger(log))
	if err != nil {
		fatal(log, "settlement engine", err)
	}

	platformSvc, err := platforms.New(platformStore, auditor, platforms.WithLogger(log))
	if err != nil {
		fatal(log, "platform service", err)
	}

	dealSvc, err := deal.NewService(dealStore, gate, engine, ledger, platformSvc, auditor,
		deal.WithLogger(log),
		deal.WithMetrics(deal.NewMetrics(registry)),
	)
	if err != nil {
		fatal(log, "deal service", err)
	}

	tokens := jwttoken.NewManager(cfg.JWTSigningKey, 15*time.Minute)

	handler := httptransport.NewHandler(httptransport.Config{
		Deals:      dealSvc,
		Sanctions:  sanctionsSvc,
		KYC:        kycSvc,
		Policy:     policy,
		Platforms:  platformSvc,
		Settlement: engine,
		Vault:      vault,
		Volume:     ledger,
		Tokens:     tokens,
		AuditLog:   auditor,
		Readiness:  readiness,
		Logger:     log,
	})
	router := httptransport.NewRouter(handler, tokens, cfg.AdminToken, registry)

	// The relay drains the audit outbox to Kafka when brokers are configured.
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
		if err != nil {
			log.Error("failed to start kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		relay := audit.NewRelay(auditOutbox, producer, log)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit relay stopped", "error", err)
			}
		}()
	}

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func fatal(log *slog.Logger, component string, err error) {
	log.Error("failed to construct "+component, "error", err)
	os.Exit(1)
}
