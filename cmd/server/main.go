package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/securebank-ledger/internal/adapter/http"
	"github.com/iho/securebank-ledger/internal/adapter/http/handler"
	"github.com/iho/securebank-ledger/internal/adapter/http/middleware"
	redisRepo "github.com/iho/securebank-ledger/internal/adapter/repository/redis"
	"github.com/iho/securebank-ledger/internal/app"
	"github.com/iho/securebank-ledger/internal/infrastructure/config"
	"github.com/iho/securebank-ledger/internal/infrastructure/eventpublisher"
	"github.com/iho/securebank-ledger/internal/infrastructure/logger"
	"github.com/iho/securebank-ledger/internal/infrastructure/metrics"
	"github.com/iho/securebank-ledger/internal/infrastructure/redis"
	"github.com/iho/securebank-ledger/internal/jobs"
	"github.com/iho/securebank-ledger/internal/usecase"
)

const rateLimiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "ledger-server"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx = log.WithContext(ctx)

	storage, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	m := metrics.New()
	services := app.NewServices(storage, app.PolicyFromConfig(cfg), m)

	checks := map[string]handler.Pinger{}
	if storage.Ping != nil {
		checks["database"] = handler.PingFunc(storage.Ping)
	}

	var (
		redisClient      *goredis.Client
		idempotencyStore usecase.IdempotencyStore
		enqueuer         handler.TaskEnqueuer
		publisher        eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
	)

	if cfg.RedisEnabled() {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		queueOpt, err := redis.QueueConnOpt(cfg.RedisURL)
		if err != nil {
			return err
		}
		queue := jobs.NewClient(queueOpt)
		defer queue.Close()

		checks["redis"] = handler.RedisPinger(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		enqueuer = queue
		publisher = eventpublisher.NewRedisPublisher(redisClient, cfg.OutboxChannel)
	} else {
		log.Warn().Msg("REDIS_URL not set; idempotency keys and async submission are disabled")
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m.RateLimitHits)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(services.Accounts, services.Query, services.Policy.Scale),
		TransactionHandler: handler.NewTransactionHandler(services.Ledger, services.Query, enqueuer, services.Policy),
		LedgerHandler:      handler.NewLedgerHandler(services.Reconciliation, services.Policy.Scale),
		HealthHandler:      handler.NewHealthHandler(checks),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		Metrics:            m,
		Logger:             log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	outbox := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: storage.Outbox,
		Publisher:  publisher,
		Logger:     log,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", storage.Driver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return ignoreCanceled(outbox.Start(gctx))
	})

	if rateLimiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(rateLimiterIdle)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					rateLimiter.Cleanup(rateLimiterIdle)
				}
			}
		})
	}

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
