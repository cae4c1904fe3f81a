package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fernsky/digital-profile/profile-api/config"
	"github.com/fernsky/digital-profile/profile-api/internal/application"
	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/infrastructure/api"
	"github.com/fernsky/digital-profile/profile-api/internal/infrastructure/cache"
	"github.com/fernsky/digital-profile/profile-api/internal/infrastructure/chart"
	"github.com/fernsky/digital-profile/profile-api/internal/infrastructure/database"
	"github.com/fernsky/digital-profile/profile-api/internal/infrastructure/excel"
	"github.com/fernsky/digital-profile/profile-api/internal/infrastructure/messaging"
	"github.com/fernsky/digital-profile/profile-api/internal/infrastructure/scheduler"
	"github.com/fernsky/digital-profile/profile-api/internal/infrastructure/storage"
	"github.com/fernsky/digital-profile/profile-api/internal/labels"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

const Version = "1.0.0"

const (
	jobReportRegeneration = "report_regeneration"
	jobCleanup            = "cleanup"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	recordRepo     ports.RecordRepository
	reportRepo     ports.ReportRepository
	cache          ports.Cache
	cacheService   *application.CacheService
	summaryService *application.SummaryService
	reportService  *application.ReportService
	recordProc     *application.RecordProcessor
	kafkaConsumer  ports.Consumer
	scheduler      ports.Scheduler
	apiServer      ports.APIServer
	cancel         context.CancelFunc
}

func Bootstrap() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.App.LogLevel, cfg.App.Env).WithField("service", cfg.App.Name)
	appLogger.Infof("Starting %s %s in %s mode", cfg.App.Name, Version, cfg.App.Env)

	app := &App{
		config: cfg,
		logger: appLogger,
	}

	if err := app.initComponents(); err != nil {
		appLogger.Fatalf("Failed to initialize components: %v", err)
	}

	if err := app.start(); err != nil {
		appLogger.Fatalf("Failed to start application: %v", err)
	}

	app.waitForShutdown()
}

func (a *App) initComponents() error {
	a.logger.Info("Initializing components...")
	ctx, cancel := context.WithTimeout(context.Background(), a.config.Postgres.ConnectionTimeout)
	defer cancel()

	catalog, err := labels.Load(a.config.Labels.OverridePath)
	if err != nil {
		return fmt.Errorf("failed to load labels: %w", err)
	}

	a.logger.Info("Initializing PostgreSQL repositories...")
	pool, err := database.NewPool(ctx, database.Options{
		Host:     a.config.Postgres.Host,
		Port:     a.config.Postgres.Port,
		User:     a.config.Postgres.User,
		Password: a.config.Postgres.Password,
		Database: a.config.Postgres.Database,
		SSLMode:  a.config.Postgres.SSLMode,
		MaxConns: a.config.Postgres.MaxConnections,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	a.recordRepo = database.NewPostgresRecordRepository(pool, a.logger)
	a.reportRepo = database.NewPostgresReportRepository(pool, a.logger)

	a.logger.Info("Initializing Redis cache...")
	redisCache, err := cache.NewRedisCache(
		a.config.Redis.Host,
		a.config.Redis.Port,
		a.config.Redis.Password,
		a.config.Redis.DB,
		a.config.Redis.PoolSize,
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	a.cache = cache.NewTieredCache(redisCache, a.config.Cache.LocalTTL, a.logger)
	a.cacheService = application.NewCacheService(a.cache, a.config.Cache.SummaryTTL, a.config.Cache.ReportTTL, a.logger)

	a.logger.Info("Initializing Minio storage...")
	minioStorage, err := storage.NewMinioStorage(
		a.config.Minio.Endpoint,
		a.config.Minio.AccessKey,
		a.config.Minio.SecretKey,
		a.config.Minio.UseSSL,
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	if err := minioStorage.EnsureBucket(ctx, a.config.Minio.Bucket); err != nil {
		return fmt.Errorf("failed to prepare bucket: %w", err)
	}
	reportStorage := storage.NewMinioReportStorage(minioStorage, a.config.Minio.Bucket, a.logger)

	a.logger.Info("Initializing application services...")
	a.summaryService = application.NewSummaryService(
		a.recordRepo,
		a.cacheService,
		chart.NewBarRenderer(a.config.Chart.WidthInches, a.config.Chart.HeightInches, a.logger),
		catalog,
		a.logger,
	)
	a.reportService = application.NewReportService(
		a.summaryService,
		a.reportRepo,
		excel.NewExcelGeneratorImpl(a.config.Reports.Creator, a.logger),
		reportStorage,
		a.cacheService,
		catalog,
		application.ReportOptions{
			Retention:   a.config.Reports.Retention,
			Parallelism: a.config.Reports.Parallelism,
		},
		a.logger,
	)
	a.recordProc = application.NewRecordProcessor(a.recordRepo, a.summaryService, a.logger)

	if a.config.Kafka.Enabled {
		a.logger.Info("Initializing Kafka consumer...")
		kafkaConsumer, err := messaging.NewKafkaConsumer(
			a.config.Kafka.Brokers,
			a.config.Kafka.Topic,
			a.config.Kafka.GroupID,
			a.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create Kafka consumer: %w", err)
		}
		a.kafkaConsumer = kafkaConsumer
	}

	a.scheduler = scheduler.NewCronScheduler(a.config.Scheduler.Timeout, a.logger)

	a.logger.Info("Initializing API server...")
	middleware := api.NewMiddleware(api.MiddlewareOptions{
		AllowedOrigins:  a.config.API.CorsAllowedOrigins,
		RateLimit:       a.config.API.RateLimit,
		RateLimitWindow: a.config.API.RateLimitWindow,
		CacheMaxAge:     a.config.API.CacheMaxAge,
		AdminToken:      a.config.API.AdminToken,
	}, a.logger)
	handler := api.NewAPIHandler(a.summaryService, a.reportService, a.recordProc, catalog, Version, a.logger)
	a.apiServer = api.NewAPIServer(handler, middleware, api.ServerOptions{
		Env:             a.config.App.Env,
		Port:            a.config.App.Port,
		BasePath:        a.config.API.BasePath,
		EnableSwagger:   a.config.API.EnableSwagger,
		ShutdownTimeout: a.config.App.ShutdownTimeout,
	}, a.logger)

	a.logger.Info("All components initialized successfully")
	return nil
}

func (a *App) start() error {
	a.logger.Info("Starting application...")

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.kafkaConsumer != nil {
		if err := a.kafkaConsumer.Consume(ctx, a.recordProc.Process); err != nil {
			return fmt.Errorf("failed to start Kafka consumer: %w", err)
		}
	}

	if err := a.setupScheduler(ctx); err != nil {
		return fmt.Errorf("failed to setup scheduler: %w", err)
	}

	if err := a.apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	if a.config.Reports.RegenerateOnStart {
		go func() {
			if err := a.scheduler.RunNow(ctx, jobReportRegeneration); err != nil {
				a.logger.Warnf("Initial report regeneration finished with errors: %v", err)
			}
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.config.HealthCheck.StartupDelay):
		}
		a.runHealthChecks(ctx)
	}()

	a.logger.Info("Application started successfully")
	return nil
}

func (a *App) setupScheduler(ctx context.Context) error {
	if err := a.scheduler.Schedule(ctx, jobReportRegeneration,
		a.config.Scheduler.ReportGenerationInterval,
		func(ctx context.Context) error {
			a.logger.Info("Running scheduled report regeneration")
			return a.reportService.RegenerateAll(ctx)
		}); err != nil {
		return fmt.Errorf("failed to schedule report regeneration: %w", err)
	}

	if err := a.scheduler.Schedule(ctx, jobCleanup,
		a.config.Scheduler.CleanupInterval,
		func(ctx context.Context) error {
			a.logger.Info("Running scheduled cleanup")
			removed, err := a.reportService.CleanupExpiredReports(ctx)
			if err != nil {
				return err
			}
			a.logger.Infof("Cleanup completed, %d expired reports removed", removed)
			return nil
		}); err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	return nil
}

func (a *App) runHealthChecks(ctx context.Context) {
	ticker := time.NewTicker(a.config.HealthCheck.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.performHealthChecks(ctx)
		}
	}
}

func (a *App) performHealthChecks(ctx context.Context) {
	a.logger.Debug("Running health checks...")

	checks := []struct {
		name  string
		check func(context.Context) error
	}{
		{"record_repository", a.recordRepo.HealthCheck},
		{"report_repository", a.reportRepo.HealthCheck},
		{"cache", a.cache.HealthCheck},
		{"scheduler", a.scheduler.HealthCheck},
		{"report_service", a.reportService.HealthCheck},
	}
	if a.kafkaConsumer != nil {
		checks = append(checks, struct {
			name  string
			check func(context.Context) error
		}{"kafka_consumer", a.kafkaConsumer.HealthCheck})
	}

	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, a.config.HealthCheck.Timeout)
		if err := check.check(checkCtx); err != nil {
			a.logger.Errorf("Health check failed for %s: %v", check.name, err)
		} else {
			a.logger.Debugf("Health check passed for %s", check.name)
		}
		cancel()
	}
}

func (a *App) waitForShutdown() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signalChan
	a.logger.Infof("Received signal: %v. Shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), a.config.App.ShutdownTimeout)
	defer cancel()

	a.shutdownComponents(ctx)

	a.logger.Info("Application shutdown completed")
}

func (a *App) shutdownComponents(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if a.apiServer != nil {
		if err := a.apiServer.Stop(ctx); err != nil {
			a.logger.Errorf("Failed to stop API server: %v", err)
		}
	}

	if a.scheduler != nil {
		a.logger.Info("Stopping scheduler...")
		a.scheduler.Stop()
	}

	if a.kafkaConsumer != nil {
		if err := a.kafkaConsumer.Close(); err != nil {
			a.logger.Errorf("Failed to close Kafka consumer: %v", err)
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Errorf("Failed to close cache: %v", err)
		}
	}

	if a.recordRepo != nil {
		if err := a.recordRepo.Close(); err != nil {
			a.logger.Errorf("Failed to close postgres pool: %v", err)
		}
	}
}
