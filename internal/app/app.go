package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/vitalcosmeticos/catalog/internal/auth"
	"github.com/vitalcosmeticos/catalog/internal/config"
	"github.com/vitalcosmeticos/catalog/internal/delivery"
	"github.com/vitalcosmeticos/catalog/internal/event"
	"github.com/vitalcosmeticos/catalog/internal/export"
	handler "github.com/vitalcosmeticos/catalog/internal/handler/http"
	"github.com/vitalcosmeticos/catalog/internal/jobs"
	"github.com/vitalcosmeticos/catalog/internal/realtime"
	"github.com/vitalcosmeticos/catalog/internal/repository/postgres"
	redisrepo "github.com/vitalcosmeticos/catalog/internal/repository/redis"
	"github.com/vitalcosmeticos/catalog/internal/service"
	"github.com/vitalcosmeticos/catalog/migrations"
	"github.com/vitalcosmeticos/catalog/pkg/database"
	"github.com/vitalcosmeticos/catalog/pkg/health"
	"github.com/vitalcosmeticos/catalog/pkg/httpclient"
	pkgkafka "github.com/vitalcosmeticos/catalog/pkg/kafka"
	"github.com/vitalcosmeticos/catalog/pkg/middleware"
	"github.com/vitalcosmeticos/catalog/pkg/tracing"
)

const (
	serviceName = "catalog"

	// Contact events are redelivered at most within this window.
	dedupWindow = 10 * time.Minute
	// Rate limiter entries idle for longer are dropped.
	limiterIdle   = 15 * time.Minute
	sweepInterval = 5 * time.Minute
	catalogMaxAge = 60
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	consumer       *pkgkafka.Consumer
	deadLetter     *pkgkafka.DeadLetterWriter
	scheduler      *jobs.Scheduler
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	shutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	// PostgreSQL
	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	pgCfg := cfg.Postgres()
	a.pool, err = database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RunMigrations(ctx, a.pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := prometheus.Register(database.NewPoolStatsCollector(a.pool, serviceName)); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
	}

	// Redis
	a.redis, err = database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))

	// Repositories
	productRepo := postgres.NewProductRepository(a.pool)
	categoryRepo := postgres.NewCategoryRepository(a.pool)
	favoriteRepo := postgres.NewFavoriteRepository(a.pool)
	contactRepo := postgres.NewContactRepository(a.pool)
	folderRepo := postgres.NewFolderRepository(a.pool)
	userRepo := postgres.NewUserRepository(a.pool)
	dashboardRepo := postgres.NewDashboardRepository(a.pool)
	favoriteCache := redisrepo.NewFavoriteCache(a.redis, cfg.FavoriteCacheTTL)
	visitorStore := redisrepo.NewVisitorStore(a.redis)

	// Realtime notifications. Contact events reach the feed either through
	// Kafka or in-process; both paths drop duplicate deliveries.
	feed := realtime.NewFeed(contactRepo, realtime.Config{
		LatestSize: cfg.LatestContacts,
		ToastTTL:   cfg.ToastTTL,
	}, logger)
	seen := pkgkafka.NewMemorySeenStore(dedupWindow)
	contactHandler := pkgkafka.Deduplicate(seen, event.NewContactHandler(feed, logger), logger)

	var publisher event.Publisher
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.deadLetter = pkgkafka.NewDeadLetterWriter(cfg.KafkaBrokers, logger)
		a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaGroupID,
			Topics:  event.ContactTopics(),
		}, contactHandler, logger).WithDeadLetter(a.deadLetter)
		publisher = event.NewProducer(a.producer, logger)
		logger.Info("kafka enabled", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		publisher = event.NewLocalPublisher(contactHandler)
		logger.Info("kafka disabled, contact events are applied in-process")
	}

	// Folder export
	imageClient := httpclient.NewHostBreakers(httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("image-fetch"), logger)
	exporter, err := export.NewExporter(imageClient, export.Config{
		Scale: cfg.ExportScale,
		Images: export.ImageConfig{
			MaxBytes:    cfg.MaxImageBytes,
			Concurrency: cfg.ImageConcurrency,
			Timeout:     cfg.ImageFetchTimeout,
			ProxyOrigin: cfg.ImageProxyOrigin,
			ProxyPrefix: cfg.ImageProxyPrefix,
		},
		Store: export.StoreContact{
			Email: cfg.StoreEmail,
			Phone: cfg.StoreDisplayPhone,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	// Services
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	pages := service.PageConfig{DefaultLimit: cfg.DefaultPageSize, MaxLimit: cfg.MaxPageSize}
	productService := service.NewProductService(productRepo, categoryRepo, pages, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	favoriteService := service.NewFavoriteService(favoriteRepo, favoriteCache, logger)
	contactService := service.NewContactService(contactRepo, publisher, logger)
	folderService := service.NewFolderService(folderRepo, productRepo, exporter, logger)
	visitorService := service.NewVisitorService(visitorStore, cfg.PromoFlagTTL)
	dashboardService := service.NewDashboardService(dashboardRepo)
	authService := service.NewAuthService(userRepo, jwtManager, logger)

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			return nil, fmt.Errorf("ensure admin account: %w", err)
		}
	}

	links := delivery.NewBuilder(delivery.Config{
		StorePhone:  cfg.StorePhone,
		CountryCode: cfg.DefaultCountryCode,
	})
	contactLimiter := middleware.NewRateLimiter(cfg.ContactRateLimit, cfg.ContactRateLimit, logger)
	exportLimiter := middleware.NewRateLimiter(cfg.ExportRateLimit, cfg.ExportRateLimit, logger)

	// Background jobs
	a.scheduler, err = jobs.NewScheduler(logger)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	maintenance := jobs.Maintenance{
		Feed:              feed,
		ReconcileInterval: cfg.ReconcileInterval,
		Limiters:          []jobs.Limiter{contactLimiter, exportLimiter},
		LimiterIdle:       limiterIdle,
		SeenEvents:        seen,
		SweepInterval:     sweepInterval,
	}
	if err := maintenance.Register(a.scheduler, logger); err != nil {
		return nil, fmt.Errorf("register jobs: %w", err)
	}

	// Health checks
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return a.pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return a.redis.Ping(ctx).Err()
	})
	if a.producer != nil {
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
	}

	// HTTP router
	handlers := handler.Handlers{
		Products:      handler.NewProductHandler(productService, links, logger),
		Categories:    handler.NewCategoryHandler(categoryService, logger),
		Favorites:     handler.NewFavoriteHandler(favoriteService, logger),
		Contacts:      handler.NewContactHandler(contactService, links, logger),
		Folders:       handler.NewFolderHandler(folderService, links, logger),
		Notifications: handler.NewNotificationHandler(feed, logger),
		ImageProxy:    handler.NewImageProxyHandler(imageClient, cfg.ImageProxyOrigin, cfg.MaxImageBytes, logger),
		Visitors:      handler.NewVisitorHandler(visitorService, logger),
		Dashboard:     handler.NewDashboardHandler(dashboardService, logger),
		Auth:          handler.NewAuthHandler(authService, logger),
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins
	router := handler.NewRouter(handlers, handler.RouterConfig{
		ServiceName:       serviceName,
		CORS:              cors,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		Tokens:            jwtManager.Validator(),
		ContactLimiter:    contactLimiter,
		ExportLimiter:     exportLimiter,
		CatalogMaxAge:     catalogMaxAge,
	}, healthHandler, logger)

	a.httpServer = newHTTPServer(cfg, router, feed)

	ok = true
	return a, nil
}

// newHTTPServer builds the API server. Shutdown disables the feed first:
// open notification streams are never idle and would otherwise hold the
// server until the shutdown deadline.
func newHTTPServer(cfg *config.Config, handler http.Handler, feed *realtime.Feed) *http.Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
	srv.RegisterOnShutdown(feed.Disable)
	return srv
}

// Run starts the HTTP server, the Kafka consumer and the scheduler, then
// blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("kafka consumer error", slog.String("error", err.Error()))
			}
		}()
	}

	a.scheduler.Start()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.scheduler.Shutdown(); err != nil {
		a.logger.Error("scheduler shutdown error", slog.String("error", err.Error()))
	}

	a.close()
	a.logger.Info("application shutdown complete")
	return nil
}

// close releases connections. It tolerates a partially built App.
func (a *App) close() {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}
	if a.deadLetter != nil {
		if err := a.deadLetter.Close(); err != nil {
			a.logger.Error("dead letter writer close error", slog.String("error", err.Error()))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
