// Command server runs the farm certification registry: the HTTP API, the
// audit mirror pipeline and the snapshot cache. Business logic lives in
// the internal service packages; main only wires dependencies and owns
// the process lifecycle.
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

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"cultiva/internal/audit"
	auditkafka "cultiva/internal/audit/kafka"
	auditmemory "cultiva/internal/audit/store/memory"
	auditpostgres "cultiva/internal/audit/store/postgres"
	jwttoken "cultiva/internal/jwt_token"
	"cultiva/internal/platform/config"
	"cultiva/internal/platform/httpserver"
	"cultiva/internal/platform/logger"
	platformmetrics "cultiva/internal/platform/metrics"
	platformredis "cultiva/internal/platform/redis"
	"cultiva/internal/registry/cache"
	"cultiva/internal/registry/handler"
	registrymetrics "cultiva/internal/registry/metrics"
	"cultiva/internal/registry/service"
	"cultiva/internal/registry/store"
	memorystore "cultiva/internal/registry/store/memory"
	postgresstore "cultiva/internal/registry/store/postgres"
	"cultiva/pkg/domain"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	admin, ok := domain.ParseActor(cfg.InitialAdmin)
	if !ok {
		return errors.New("CULTIVA_ADMIN must name the initial admin actor")
	}

	st, cleanup, err := buildStore(ctx, cfg, admin, log)
	if err != nil {
		return err
	}
	defer cleanup()

	mirror, mirrorCleanup, relay, err := buildMirror(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer mirrorCleanup()

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMirror(mirror),
		service.WithMetrics(registrymetrics.New()),
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		svcOpts = append(svcOpts, service.WithCache(cache.New(redisClient.Client)))
	}

	registry := service.New(st, svcOpts...)
	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := chi.NewRouter()
	handler.New(registry, log, platformmetrics.New(), tokens).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting cultiva registry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildStore picks postgres when a database URL is configured, otherwise
// the in-memory store.
func buildStore(ctx context.Context, cfg config.Config, admin domain.Actor, log *slog.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("no database configured, registry state is in-memory and volatile")
		return memorystore.New(admin), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	st, err := postgresstore.New(ctx, pool, admin)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return st, pool.Close, nil
}

// buildMirror assembles the audit mirror path. With both a database and
// brokers configured events are staged in the outbox and relayed to
// Kafka; with only brokers they go straight to Kafka; with neither they
// stay on the in-process sink.
func buildMirror(ctx context.Context, cfg config.Config, log *slog.Logger) (*audit.Publisher, func(), *audit.Relay, error) {
	var (
		sink     audit.Sink = auditmemory.NewInMemoryStore()
		relay    *audit.Relay
		cleanups []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var producer *auditkafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		opts := []auditkafka.Option{auditkafka.WithLogger(log)}
		if cfg.Kafka.Topic != "" {
			opts = append(opts, auditkafka.WithTopic(cfg.Kafka.Topic))
		}
		var err error
		producer, err = auditkafka.NewProducer(ctx, cfg.Kafka.Brokers, opts...)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect kafka: %w", err)
		}
		cleanups = append(cleanups, producer.Close)
		sink = producer
	}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("open outbox database: %w", err)
		}
		cleanups = append(cleanups, func() { _ = db.Close() })
		if _, err := db.ExecContext(ctx, auditpostgres.Schema); err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("apply outbox schema: %w", err)
		}
		outbox := auditpostgres.New(db)
		if producer != nil {
			relay = audit.NewRelay(outbox, producer, audit.WithRelayLogger(log))
		}
		sink = outbox
	}

	publisher := audit.NewPublisher(sink,
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithPublisherLogger(log),
	)
	// Reverse-order cleanup: flush the publisher before its sink closes.
	cleanups = append(cleanups, publisher.Close)
	return publisher, cleanup, relay, nil
}
