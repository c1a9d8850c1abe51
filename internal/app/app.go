package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/marketplace/internal/auth"
	healthcheck "github.com/vladislavdragonenkov/marketplace/internal/health"
	"github.com/vladislavdragonenkov/marketplace/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/marketplace/internal/metrics"
	"github.com/vladislavdragonenkov/marketplace/internal/service/catalog"
	"github.com/vladislavdragonenkov/marketplace/internal/service/idempotency"
	"github.com/vladislavdragonenkov/marketplace/internal/service/orders"
	"github.com/vladislavdragonenkov/marketplace/internal/service/outbox"
	"github.com/vladislavdragonenkov/marketplace/internal/transport/rest"
	"github.com/vladislavdragonenkov/marketplace/internal/version"
)

// Run собирает зависимости и запускает HTTP API, метрики и фоновые воркеры.
// Блокируется до отмены ctx или фатальной ошибки одного из компонентов.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt secret is not configured (MKT_JWT_SECRET)")
	}

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer func() {
		if closeErr := deps.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close storage")
		}
	}()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("init token manager: %w", err)
	}

	orderMetrics := metrics.NewOrderMetrics()
	orderService := orders.NewService(
		deps.Orders,
		deps.Products,
		deps.History,
		deps.Outbox,
		orders.WithLogger(logger.WithField("layer", "orders")),
		orders.WithMetrics(orderMetrics),
	)
	catalogService := catalog.NewService(deps.Products)

	server := rest.NewServer(orderService, catalogService, deps.Accounts, deps.Idempotency, tokens)

	// Kafka опционален: без брокеров outbox копится, но API работает.
	var kafkaProducer *kafka.Producer
	var outboxWorker *outbox.Worker
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			kafkaProducer = producer
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")

			outboxWorker = outbox.NewWorker(
				deps.Outbox,
				kafka.NewOutboxPublisher(producer, cfg.OrderTopic),
				outbox.WithLogger(logger.WithField("layer", "outbox")),
				outbox.WithDLQPublisher(kafka.NewDLQPublisher(producer, cfg.DLQTopic)),
				outbox.WithPollInterval(cfg.OutboxPollInterval),
				outbox.WithBatchSize(cfg.OutboxBatchSize),
				outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
				outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
			)
		}
	} else {
		logger.Warn("kafka brokers are not configured, outbox events will stay pending")
	}

	cleanupWorker := idempotency.NewCleanupWorker(
		deps.Idempotency,
		idempotency.WithLogger(logger.WithField("layer", "idempotency")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.Store != nil {
		store := deps.Store
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
	}

	metricsSrv := startMetricsServer(cfg.MetricsAddr, logger, healthHandler)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		if err := server.Listen(cfg.HTTPAddr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		if err := server.Shutdown(); err != nil {
			logger.WithError(err).Warn("http shutdown with error")
		}
		return nil
	})

	if outboxWorker != nil {
		group.Go(func() error {
			outboxWorker.Run(groupCtx)
			return nil
		})
	}

	group.Go(func() error {
		cleanupWorker.Run(groupCtx)
		return nil
	})

	err = group.Wait()

	shutdownHTTP(metricsSrv, logger)

	if kafkaProducer != nil {
		if closeErr := kafkaProducer.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close kafka producer")
		} else {
			logger.Info("kafka producer closed")
		}
	}

	if err != nil {
		return err
	}
	return ctx.Err()
}

// startMetricsServer запускает HTTP-обработчики /metrics и health probes.
func startMetricsServer(addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
