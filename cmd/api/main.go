package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/support-hub/support-hub/internal/api/http"
	"github.com/support-hub/support-hub/internal/api/http/handlers"
	"github.com/support-hub/support-hub/internal/auth"
	"github.com/support-hub/support-hub/internal/config"
	"github.com/support-hub/support-hub/internal/events"
	"github.com/support-hub/support-hub/internal/observability"
	"github.com/support-hub/support-hub/internal/persistence"
	"github.com/support-hub/support-hub/internal/repository"
	"github.com/support-hub/support-hub/internal/service"
	"github.com/support-hub/support-hub/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	customerRepo := repository.NewCustomerRepository(pg.PoolHandle())
	ticketRepo := repository.NewTicketRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()
	if cfg.AMQP.URL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			logger.Fatal("failed to connect rabbitmq", zap.Error(err))
		}
		defer publisher.Close()
		publisher.SubscribeAll(dispatcher)
	}

	retry := service.RetryConfig{
		MaxAttempts: cfg.Saga.RetryMaxAttempts,
		BaseDelay:   cfg.Saga.RetryBaseDelay(),
	}
	customerService := service.NewCustomerService(customerRepo, retry, logger)
	ticketService := service.NewTicketService(ticketRepo, dispatcher, retry, logger)
	orchestrator := service.NewTicketCreationOrchestrator(ticketRepo, customerService, dispatcher, metrics, logger)

	recoveryWorker := worker.NewRecoveryWorker(ticketRepo, orchestrator, cfg.Sweeper.Interval(), metrics, logger)
	go recoveryWorker.Run(ctx)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(tokens),
		Tickets:        handlers.NewTicketsHandler(orchestrator, ticketService),
		Customers:      handlers.NewCustomersHandler(customerService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
