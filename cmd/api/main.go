package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-crm/internal/api/http"
	"github.com/spec-kit/support-crm/internal/api/http/handlers"
	"github.com/spec-kit/support-crm/internal/auth"
	"github.com/spec-kit/support-crm/internal/config"
	"github.com/spec-kit/support-crm/internal/events"
	"github.com/spec-kit/support-crm/internal/observability"
	"github.com/spec-kit/support-crm/internal/persistence"
	"github.com/spec-kit/support-crm/internal/repository"
	"github.com/spec-kit/support-crm/internal/repository/memory"
	"github.com/spec-kit/support-crm/internal/service"
	"github.com/spec-kit/support-crm/internal/worker"
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

	var (
		userRepo     repository.UserRepository
		customerRepo repository.CustomerRepository
		ticketRepo   repository.TicketRepository
		logRepo      repository.LogRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		userRepo = repository.NewUserRepository(pool)
		customerRepo = repository.NewCustomerRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
		logRepo = repository.NewLogRepository(pool)
	} else {
		store := memory.NewStore()
		userRepo = store.Users()
		customerRepo = store.Customers()
		ticketRepo = store.Tickets()
		logRepo = store.Logs()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, userRepo)
	customerService := service.NewCustomerService(customerRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		CustomerRepo: customerRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
	})
	logService := service.NewLogService(service.LogDependencies{
		LogRepo:      logRepo,
		TicketRepo:   ticketRepo,
		CustomerRepo: customerRepo,
		Dispatcher:   dispatcher,
	})
	reportService := service.NewReportService(ticketRepo, logRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, redis.Client, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.App.Env == "production"})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Customers:      handlers.NewCustomersHandler(customerService, logService),
		Tickets:        handlers.NewTicketsHandler(ticketService, logService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
