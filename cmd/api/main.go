package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/facility-helpdesk/internal/api/http"
	"github.com/spec-kit/facility-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/facility-helpdesk/internal/auth"
	"github.com/spec-kit/facility-helpdesk/internal/config"
	"github.com/spec-kit/facility-helpdesk/internal/events"
	"github.com/spec-kit/facility-helpdesk/internal/notify"
	"github.com/spec-kit/facility-helpdesk/internal/observability"
	"github.com/spec-kit/facility-helpdesk/internal/persistence"
	"github.com/spec-kit/facility-helpdesk/internal/repository"
	"github.com/spec-kit/facility-helpdesk/internal/rowstore"
	"github.com/spec-kit/facility-helpdesk/internal/scheduler"
	"github.com/spec-kit/facility-helpdesk/internal/service"
	"github.com/spec-kit/facility-helpdesk/internal/worker"
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

	metrics := observability.NewMetrics()

	var (
		store rowstore.Store
		pg    *persistence.Postgres
		rd    *persistence.Redis
	)
	switch cfg.Store.Backend {
	case "postgres":
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		pgStore := rowstore.NewPostgresStore(pg.PoolHandle())
		if cfg.Postgres.RunBootstrap {
			if err := pgStore.Bootstrap(ctx); err != nil {
				logger.Fatal("failed to bootstrap row store", zap.Error(err))
			}
		}
		store = pgStore
	case "redis":
		rd = persistence.NewRedis(cfg.Redis, logger)
		defer rd.Close()
		store = rowstore.NewRedisStore(rd.Client)
	default:
		logger.Warn("using in-memory row store; data will not survive restarts")
		store = rowstore.NewMemoryStore()
	}

	ticketRepo := repository.NewTicketRepository(store)
	ratingRepo := repository.NewRatingRepository(store)
	auditRepo := repository.NewAuditRepository(store)
	contactRepo := repository.NewContactRepository(store)
	staffRepo := repository.NewStaffRepository(store)

	dispatcher := events.NewInMemoryDispatcher()

	var sink notify.Sink
	if cfg.Notification.WebhookURL != "" {
		sink = notify.NewWebhookSink(cfg.Notification.WebhookURL, time.Duration(cfg.Notification.SendTimeoutSec)*time.Second)
	} else {
		sink = notify.NewLogSink(logger)
	}

	notificationService := service.NewNotificationService(dispatcher, sink, staffRepo, contactRepo, logger, metrics, cfg.Notification, cfg.Store.Location())
	worker.StartNotificationWorker(notificationService)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		RatingRepo: ratingRepo,
		AuditRepo:  auditRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
		IDPrefix:   cfg.Store.TicketPrefix,
		Location:   cfg.Store.Location(),
	})

	scanner := scheduler.NewScanner(ticketRepo, dispatcher, logger, metrics, cfg.Escalation, nil)
	worker.StartEscalationWorker(ctx, scanner, cfg.Escalation.ScanInterval(), logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, staffRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rd),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Auth:           handlers.NewAuthHandler(tokenManager, staffRepo),
		Escalation:     handlers.NewEscalationHandler(contactRepo),
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
