package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"raffle/internal/ledger"
	"raffle/internal/platform/config"
	"raffle/internal/platform/httpserver"
	"raffle/internal/platform/kafka"
	"raffle/internal/platform/logger"
	platformmetrics "raffle/internal/platform/metrics"
	"raffle/internal/platform/otel"
	"raffle/internal/platform/postgres"
	platformredis "raffle/internal/platform/redis"
	"raffle/internal/raffle/events"
	"raffle/internal/raffle/handler"
	rafflemetrics "raffle/internal/raffle/metrics"
	"raffle/internal/raffle/service"
	"raffle/internal/raffle/store"
	"raffle/internal/ratelimit"
	"raffle/internal/signing"
	httptransport "raffle/internal/transport/http"
	audit "raffle/pkg/platform/audit"
	auditpublisher "raffle/pkg/platform/audit/publisher"
	auditmemory "raffle/pkg/platform/audit/store/memory"
	auditpostgres "raffle/pkg/platform/audit/store/postgres"
	authmw "raffle/pkg/platform/middleware/auth"
)

const serviceName = "raffle"

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// backends holds the handles main must release on shutdown.
type backends struct {
	db     *sql.DB
	redis  *platformredis.Client
	kafka  *kgo.Client
	health map[string]httptransport.HealthCheck
}

func (b *backends) close() {
	if b.kafka != nil {
		b.kafka.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	shutdownTracing, err := otel.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	b := &backends{health: map[string]httptransport.HealthCheck{}}
	defer b.close()

	st, auditStore, err := buildStore(ctx, cfg, b)
	if err != nil {
		return err
	}
	l, clock, err := buildLedger(ctx, cfg, b)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	publisher, err := buildEvents(gctx, cfg, b, g, log)
	if err != nil {
		return err
	}

	auditor := auditpublisher.NewPublisher(auditStore,
		auditpublisher.WithAsyncBuffer(cfg.AuditBuffer),
		auditpublisher.WithLogger(log),
	)
	defer auditor.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.New(st, l, clock,
		service.WithLogger(log),
		service.WithMetrics(rafflemetrics.New(reg)),
		service.WithAuditPublisher(auditor),
		service.WithEventPublisher(publisher),
	)

	var replay authmw.ReplayGuard = signing.NewMemoryReplayGuard()
	if b.redis != nil {
		replay = signing.NewRedisReplayGuard(b.redis.Client)
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Logger:    log,
		Metrics:   platformmetrics.New(reg),
		Gatherer:  reg,
		Verifier:  signing.NewVerifierAdapter(signing.NewVerifier(signing.WithMaxSkew(cfg.Signer.MaxSkew))),
		Replay:    replay,
		RateLimit: ratelimit.New(ratelimit.NewSlidingWindow(), cfg.Limits.Limit, cfg.Limits.Window, log).Handler,
		Health:    b.health,
		Modules:   []httptransport.RouteRegistrar{handler.New(svc, log)},
	})
	srv := httpserver.New(cfg.Addr, router)

	g.Go(func() error {
		log.Info("starting raffle server",
			"addr", cfg.Addr,
			"store", cfg.Store,
			"ledger", cfg.Ledger,
			"kafka", len(cfg.Kafka.Brokers) > 0,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down raffle server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func buildStore(ctx context.Context, cfg config.Server, b *backends) (service.Store, audit.Store, error) {
	if cfg.Store != config.BackendPostgres {
		return store.NewMemory(store.WithTxTimeout(cfg.TxTimeout)), auditmemory.NewInMemoryStore(), nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	b.db = db
	b.health["postgres"] = db.PingContext
	if err := store.Migrate(ctx, db); err != nil {
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return store.NewPostgres(db), auditpostgres.New(db), nil
}

func buildLedger(ctx context.Context, cfg config.Server, b *backends) (ledger.Ledger, ledger.Clock, error) {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	if client != nil {
		b.redis = client
		b.health["redis"] = client.Health
	}

	if cfg.Ledger != config.BackendRedis {
		m := ledger.NewMemory(ledger.WithMinimumBalance(cfg.MinimumBalance))
		return m, m, nil
	}
	r := ledger.NewRedis(client.Client, cfg.MinimumBalance)
	return r, r, nil
}

// buildEvents returns the Kafka publisher when brokers are configured and an
// in-process channel otherwise. The channel is drained into the log so
// publishers never block on a missing consumer.
func buildEvents(ctx context.Context, cfg config.Server, b *backends, g *errgroup.Group, log *slog.Logger) (service.EventPublisher, error) {
	client, err := kafka.NewClient(ctx, cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	if client != nil {
		b.kafka = client
		b.health["kafka"] = client.Ping
		if err := events.EnsureTopic(ctx, kafka.NewAdmin(client), cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return nil, fmt.Errorf("ensure events topic: %w", err)
		}
		return events.NewKafka(client, cfg.Kafka.Topic), nil
	}

	ch := events.NewChannel(cfg.AuditBuffer)
	g.Go(func() error {
		for ev := range ch.Events() {
			log.Info("winner selected",
				"raffle_id", ev.RaffleID,
				"winner", ev.Winner,
			)
		}
		return nil
	})
	go func() {
		<-ctx.Done()
		_ = ch.Close()
	}()
	return ch, nil
}
