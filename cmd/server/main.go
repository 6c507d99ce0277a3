package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	escrowapp "github.com/Goutham009/tradewave-sub005/internal/application/escrow"
	eventapp "github.com/Goutham009/tradewave-sub005/internal/application/event"
	notificationapp "github.com/Goutham009/tradewave-sub005/internal/application/notification"
	riskapp "github.com/Goutham009/tradewave-sub005/internal/application/risk"
	tradeapp "github.com/Goutham009/tradewave-sub005/internal/application/trade"
	verificationapp "github.com/Goutham009/tradewave-sub005/internal/application/verification"
	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/notification"
	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/auth"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/cache"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/config"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/event"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/httpclient"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/lock"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/logger"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/migration"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/notify"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/telemetry"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/tracking"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/handler"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/middleware"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/router"
	"github.com/Goutham009/tradewave-sub005/migrations"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Goutham009/tradewave-sub005/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Tradewave Admission API
//	@version		1.0
//	@description	Compliance-gated transaction admission for the Tradewave B2B marketplace:
//	@description	business verification, buyer standing, transaction admission and escrow.

//	@contact.name	Tradewave Platform Team
//	@contact.url	https://github.com/Goutham009/tradewave-sub005

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token issued by the identity service. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry providers, then route logs through the OTLP bridge when enabled
	providers, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		LogExportEnabled:  cfg.Telemetry.LogExportEnabled,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := providers.BridgeLogger(baseLog, zapcore.InfoLevel)
	defer func() { _ = log.Sync() }()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log.Info("Starting Tradewave admission service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Metrics registry shared by business, HTTP and database collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	businessMetrics := telemetry.NewBusinessMetrics(registry)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold),
		logger.WithFullSQL(cfg.Database.LogFullSQL),
	)
	db, err := persistence.Open(context.Background(), &cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		TraceEnabled:       cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
		DBName:             cfg.Database.DBName,
	}, registry, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Redis is optional outside production; without it locks, revocations and
	// idempotency keys live in process memory
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	locker, revocations := newCoordination(cfg, redisClient, log)

	idempotencyStore, err := cache.NewIdempotencyStore(context.Background(), cfg.Redis, redisClient,
		cfg.App.Env == "production", log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = idempotencyStore.Close() }()

	// Initialize repositories
	verificationRepo := persistence.NewGormVerificationCaseRepository(db.DB)
	profileRepo := persistence.NewGormBuyerTrustProfileRepository(db.DB)
	offerRepo := persistence.NewGormOfferRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	escrowRepo := persistence.NewGormEscrowRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	// Domain events are written to the outbox in the same transaction as the aggregate
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	outboxPublisher.SetMaxRetries(cfg.Outbox.MaxRetries)
	verificationRepo.SetOutboxEventSaver(outboxPublisher)
	profileRepo.SetOutboxEventSaver(outboxPublisher)
	transactionRepo.SetOutboxEventSaver(outboxPublisher)
	escrowRepo.SetOutboxEventSaver(outboxPublisher)

	// Policy from configuration
	standing, err := standingPolicy(cfg.Admission)
	if err != nil {
		log.Fatal("Invalid admission configuration", zap.Error(err))
	}
	escrow.DefaultAdvancePercentage = decimal.NewFromFloat(cfg.Escrow.DefaultAdvancePercentage)
	retry := shared.RetryPolicy{MaxRetries: cfg.Concurrency.MaxRetries, BaseDelay: cfg.Concurrency.BaseDelay}

	// Carrier tracking behind the resilient client and a two-level cache
	var trackingProvider trade.TrackingProvider
	if cfg.Tracking.Enabled {
		client := httpclient.New(httpclient.Config{
			Name:           "carrier-tracking",
			Timeout:        cfg.Tracking.Timeout,
			RatePerSecond:  cfg.Tracking.RatePerSecond,
			Burst:          cfg.Tracking.Burst,
			BreakerTimeout: cfg.Tracking.BreakerTimeout,
		}, log)
		var shipmentCache cache.ShipmentCache = cache.NewInMemoryShipmentCache()
		if redisClient != nil {
			shipmentCache = cache.NewTieredShipmentCache(shipmentCache, cache.NewRedisShipmentCache(redisClient, log), time.Minute, log)
		}
		trackingProvider = tracking.NewCachedProvider(
			tracking.NewHTTPProvider(cfg.Tracking.BaseURL, cfg.Tracking.APIKey, client),
			shipmentCache, cfg.Tracking.CacheTTL, businessMetrics, log,
		)
		log.Info("Carrier tracking enabled", zap.String("base_url", cfg.Tracking.BaseURL))
	}

	// Initialize application services
	verificationService := verificationapp.NewService(verificationRepo, auditRepo, txManager, log)
	verificationService.SetBusinessMetrics(businessMetrics)
	verificationService.SetRetryPolicy(retry)

	riskService := riskapp.NewService(profileRepo, auditRepo, txManager, standing, log)
	riskService.SetRetryPolicy(retry)

	admissionService := tradeapp.NewAdmissionService(tradeapp.AdmissionRepositories{
		Offers:        offerRepo,
		Transactions:  transactionRepo,
		Verifications: verificationRepo,
		Profiles:      profileRepo,
		Escrows:       escrowRepo,
		Audit:         auditRepo,
	}, txManager, locker, tradeapp.AdmissionConfig{
		Standing:               standing,
		AllowBlacklistOverride: cfg.Admission.AllowBlacklistOverride,
		Retry:                  retry,
	}, log)
	admissionService.SetBusinessMetrics(businessMetrics)

	fulfillmentService := tradeapp.NewFulfillmentService(transactionRepo, escrowRepo, auditRepo, trackingProvider, txManager, log)
	fulfillmentService.SetBusinessMetrics(businessMetrics)
	fulfillmentService.SetRetryPolicy(retry)

	escrowService := escrowapp.NewService(escrowRepo, transactionRepo, auditRepo, txManager, log)
	escrowService.SetBusinessMetrics(businessMetrics)
	escrowService.SetRetryPolicy(retry)

	outboxService := eventapp.NewOutboxService(outboxRepo, auditRepo, log)

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	dedup := []event.IdempotentHandlerOption{
		event.WithKeyTTL(cfg.Outbox.IdempotencyTTL),
		event.WithDeliveryMetrics(businessMetrics),
	}

	deliveryHandler := escrowapp.NewDeliveryConfirmedHandler(escrowService, log)
	eventBus.Subscribe(event.NewIdempotentHandler("escrow-delivery", deliveryHandler, idempotencyStore, log, dedup...))

	notificationHandler := notificationapp.NewHandler(newNotifier(cfg.Notification, log), transactionRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler("notifications", notificationHandler, idempotencyStore, log, dedup...))

	log.Info("Event handlers registered",
		zap.Strings("subscribed_events", eventBus.Subscribed()),
		zap.Int("replayable_events", len(eventSerializer.Types())),
	)

	if cfg.Outbox.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		processorConfig.BatchSize = cfg.Outbox.BatchSize
		processorConfig.PollInterval = cfg.Outbox.PollInterval
		processorConfig.Delivery = shared.DeliveryPolicy{
			MaxAttempts: cfg.Outbox.MaxRetries,
			BaseBackoff: cfg.Outbox.RetryBaseDelay,
			MaxBackoff:  cfg.Outbox.RetryMaxDelay,
		}
		processorConfig.CleanupEnabled = cfg.Outbox.CleanupEnabled
		processorConfig.CleanupRetention = cfg.Outbox.CleanupRetention

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		outboxProcessor.SetBusinessMetrics(businessMetrics)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Readiness probes
	checks := []handler.ReadinessCheck{
		{Name: "database", Check: db.Ping},
	}
	if redisClient != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Verification: handler.NewVerificationHandler(verificationService),
		Risk:         handler.NewRiskHandler(riskService),
		Transaction:  handler.NewTransactionHandler(admissionService, fulfillmentService),
		Escrow:       handler.NewEscrowHandler(escrowService),
		Outbox:       handler.NewOutboxHandler(outboxService),
		Auth:         handler.NewAuthHandler(revocations, cfg.JWT.MaxTokenTTL),
		System:       handler.NewSystemHandler(cfg.App.Name, version, checks...),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id first so every later layer can log it,
	// tracing before metrics so the span covers the whole request
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName)...)
	engine.Use(middleware.NewHTTPMetrics(registry).Middleware())
	engine.Use(middleware.SecureHeaders())
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		MaxAge:       12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Probes and tooling outside API versioning
	engine.GET("/health", handlers.System.Health)
	engine.GET("/ready", handlers.System.Ready)
	if cfg.Telemetry.MetricsEnabled {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	}
	if cfg.HTTP.SwaggerEnabled {
		docs.SwaggerInfo.Version = version
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// API routes: authentication, then per-caller rate limiting
	apiMiddleware := []gin.HandlerFunc{middleware.Authenticate(auth.NewVerifier(cfg.JWT), revocations)}
	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	defer stopLimiter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		})
		go limiter.Cleanup(limiterCtx, time.Minute)
		apiMiddleware = append(apiMiddleware, limiter.Middleware())
		log.Info("Rate limiting enabled",
			zap.Float64("requests_per_second", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
	}

	router.Mount(engine, "v1", middleware.RequireRoles, apiMiddleware, router.APIResources(handlers)...)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// newCoordination picks the admission lock and the token revocation store
func newCoordination(cfg *config.Config, client *redis.Client, log *zap.Logger) (shared.Locker, auth.RevocationStore) {
	if client == nil {
		log.Warn("Redis not configured, admission locks and token revocations are process-local")
		return lock.NewMemoryLocker(), auth.NewMemoryRevocationStore()
	}
	opts := lock.DefaultOptions()
	opts.Expiry = cfg.Admission.LockTTL
	locker, err := lock.NewRedisLocker(client, opts, log)
	if err != nil {
		log.Fatal("Failed to create Redis locker", zap.Error(err))
	}
	return locker, auth.NewRedisRevocationStore(client)
}

// newNotifier posts to the configured webhook, or logs notifications when none is set
func newNotifier(cfg config.NotificationConfig, log *zap.Logger) notification.Notifier {
	if cfg.WebhookURL == "" {
		return notify.NewLogNotifier(log)
	}
	client := httpclient.New(httpclient.Config{
		Name:           "notification-webhook",
		Timeout:        cfg.Timeout,
		BreakerTimeout: cfg.BreakerTimeout,
	}, log)
	return notify.NewWebhookNotifier(cfg.WebhookURL, client)
}

func standingPolicy(cfg config.AdmissionConfig) (risk.StandingPolicy, error) {
	weights, err := risk.NewWeights(
		cfg.WeightPaymentReliability,
		cfg.WeightDisputeHistory,
		cfg.WeightBehavioral,
		cfg.WeightCompliance,
	)
	if err != nil {
		return risk.StandingPolicy{}, err
	}
	return risk.StandingPolicy{
		Weights:                         weights,
		PaymentOnTimeFloor:              decimal.NewFromFloat(cfg.PaymentOnTimeFloor),
		RejectOnCriticalFlag:            cfg.RejectOnCriticalFlag,
		RejectOnHighRiskWithLatePayment: cfg.RejectOnHighRiskWithLatePayment,
	}, nil
}

// applyMigrations runs the embedded schema. The migrator is not closed:
// closing it would also close the pool shared with gorm.
func applyMigrations(db *persistence.Database, log *zap.Logger) error {
	m, err := migration.NewEmbedded(db.SQL(), migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}
