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

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/notify"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
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
	defer pg.Close(logger)

	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		applied, err := persistence.RunMigrations(ctx, pool, os.DirFS(cfg.Postgres.MigrationsDir), logger)
		if err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("migrations complete", zap.Int("applied", applied))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)

	templates, err := notify.NewTemplates()
	if err != nil {
		logger.Fatal("failed to compile mail templates", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger, metrics)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		UserRepo:   userRepo,
		Mailer:     newMailer(cfg, logger),
		Templates:  templates,
		Config:     cfg.Notification,
		CodeTTL:    cfg.Auth.VerificationTTL,
		Recorder:   metrics,
		Logger:     logger,
	})
	worker.StartNotificationWorker(logger, notificationService, worker.NewLifecycleCounter(dispatcher, metrics))

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	sessions := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	authDeps := service.AuthDependencies{
		UserRepo:      userRepo,
		Hasher:        hasher,
		Sessions:      sessions,
		Verifications: auth.NewVerificationTokens(cfg.Auth.VerificationSecret, cfg.Auth.VerificationTTL, hasher),
		Codes:         notificationService,
		Recorder:      metrics,
		Logger:        logger,
	}
	var redisPinger handlers.Pinger
	if redis.Client != nil {
		redisPinger = redis
		if cfg.Auth.LoginThrottleEnabled {
			authDeps.Throttle = service.NewRedisLoginThrottle(redis.Client, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)
		}
	}
	authService := service.NewAuthService(authDeps)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
		ReadTimeout:  cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisPinger),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, service.NewReportService(ticketRepo)),
		Admin:          handlers.NewAdminHandler(service.NewAdminService(userRepo), authService),
		AuthMiddleware: auth.NewAuthMiddleware(sessions),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

// newMailer sends through SMTP when a host is configured and logs otherwise.
func newMailer(cfg *config.Config, logger *zap.Logger) notify.Mailer {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not provided; notifications will be logged, not sent")
		return notify.NewLogMailer(logger)
	}
	return notify.NewSMTPMailer(cfg.SMTP, cfg.Notification)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
