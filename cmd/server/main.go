package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/wms/backend/docs"
	billingapp "github.com/wms/backend/internal/application/billing"
	financeapp "github.com/wms/backend/internal/application/finance"
	identityapp "github.com/wms/backend/internal/application/identity"
	printingapp "github.com/wms/backend/internal/application/printing"
	reportapp "github.com/wms/backend/internal/application/report"
	shippingapp "github.com/wms/backend/internal/application/shipping"
	"github.com/wms/backend/internal/domain/report"
	"github.com/wms/backend/internal/infrastructure/archive"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/migration"
	"github.com/wms/backend/internal/infrastructure/notification"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/printing"
	"github.com/wms/backend/internal/infrastructure/storage"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			WMS Backend API
//	@version		1.0
//	@description	Parcel dispatch, branch ledger and daily reporting API for the warehouse network

//	@contact.name	API Support
//	@contact.email	support@wms.example.co.ke

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry starts before the main logger so logs can be teed to OTLP
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Version, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	log, err := logger.New(logCfg, providers.Logs.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting WMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
		zap.Bool("profiling", providers.Profiler.IsEnabled()),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	migrator, err := migration.New(sqlDB, log)
	if err != nil {
		log.Fatal("Failed to initialize migrations", zap.Error(err))
	}
	if err := migrator.Up(); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	dbMetrics, err := telemetry.InstrumentDB(db.DB, providers.Meter.Meter("wms.db"), telemetry.DBConfig{
		Tracing:    cfg.Telemetry.Enabled,
		LogFullSQL: !cfg.App.IsProduction(),
	}, log)
	if err != nil {
		log.Warn("Database instrumentation disabled", zap.Error(err))
	} else if providers.Meter.IsEnabled() {
		dbMetrics.StartPoolStats(ctx)
	}

	// Cache-backed stores
	stores := cache.NewStores(ctx, cfg.Redis, log)
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if stores.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(stores.Client)
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	parcelRepo := persistence.NewGormParcelRepository(db.DB)
	dispatchRepo := persistence.NewGormDispatchRepository(db.DB)
	customerRepo := persistence.NewGormContractCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	branchDepositRepo := persistence.NewGormBranchDepositRepository(db.DB)
	parcelDepositRepo := persistence.NewGormParcelDepositRepository(db.DB)
	expenseRepo := persistence.NewGormDailyExpenseRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	codRepo := persistence.NewGormCODCollectionRepository(db.DB)
	chequeRepo := persistence.NewGormChequeDepositRepository(db.DB)
	tx := persistence.NewGormTransactor(db.DB)

	// Optional backends
	objects := newObjectStorage(ctx, cfg.Storage, log)
	renderer, closeRenderer := newRenderer(cfg.Printing, log)
	reportArchive, closeArchive := newReportArchive(ctx, cfg.Archive, log)

	templates, err := printing.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to load document templates", zap.Error(err))
	}
	documents := printingapp.NewDocumentService(templates, renderer, printing.Company{
		Name:    cfg.Company.Name,
		Address: cfg.Company.Address,
		Phone:   cfg.Company.Phone,
		Email:   cfg.Company.Email,
	}, log)

	// Event bus
	bus := event.NewInMemoryEventBus(log)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, branchRepo, log)
	branchService := identityapp.NewBranchService(branchRepo, userRepo, log)
	parcelService := shippingapp.NewParcelService(parcelRepo, branchRepo, bus, log)
	dispatchService := shippingapp.NewDispatchService(dispatchRepo, parcelRepo, tx, documents, bus, log)
	customerService := billingapp.NewContractCustomerService(customerRepo, invoiceRepo, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, customerRepo, parcelRepo, tx, documents, objects, cfg.Storage.PresignExpiration, log)
	ledgerService := financeapp.NewLedgerService(branchDepositRepo, tx, bus, log)
	branchDepositService := financeapp.NewBranchDepositService(branchDepositRepo, ledgerService, tx, log)
	parcelDepositService := financeapp.NewParcelDepositService(parcelDepositRepo, parcelRepo, log)
	paymentService := financeapp.NewPaymentService(codRepo, chequeRepo, dispatchRepo, branchRepo, invoiceRepo, log)
	expenseService := financeapp.NewExpenseService(expenseRepo, userRepo, branchRepo, objects, cfg.Storage.PresignExpiration, bus, log)
	reportService := reportapp.NewDailyReportService(parcelRepo, dispatchRepo, codRepo, reportRepo, stores.Reports, reportArchive, log)

	// Event handlers
	sms := notification.NewSMSSender(cfg.SMS, log)
	bus.Subscribe(event.NewIdempotentHandler(
		notification.NewParcelNotificationHandler(sms, parcelRepo, log),
		stores.Idempotency, 0, log,
	))
	bus.Subscribe(reportapp.NewCacheInvalidationHandler(reportService, log))
	if providers.Meter.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(providers.Meter.Meter("wms.business"))
		if err != nil {
			log.Warn("Business metrics disabled", zap.Error(err))
		} else {
			bus.Subscribe(businessMetrics)
		}
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	if created, err := userService.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		log.Fatal("Failed to bootstrap admin account", zap.Error(err))
	} else if created {
		log.Info("Bootstrap admin account created", zap.String("username", cfg.Bootstrap.AdminUsername))
	}

	// Scheduled jobs
	sched, err := newScheduler(cfg.Scheduler, ledgerService, reportService, log)
	if err != nil {
		log.Fatal("Failed to register job", zap.Error(err))
	}

	// Handlers
	reportHandler := newReportHandler(reportService, sched)
	systemHandler := handler.NewSystemHandler(cfg.App.Version, db)
	handlers := router.Handlers{
		Auth:             handler.NewAuthHandler(authService),
		User:             handler.NewUserHandler(userService),
		Branch:           handler.NewBranchHandler(branchService),
		Parcel:           handler.NewParcelHandler(parcelService),
		Dispatch:         handler.NewDispatchHandler(dispatchService),
		ContractCustomer: handler.NewContractCustomerHandler(customerService),
		Invoice:          handler.NewInvoiceHandler(invoiceService),
		BranchDeposit:    handler.NewBranchDepositHandler(branchDepositService),
		ParcelDeposit:    handler.NewParcelDepositHandler(parcelDepositService),
		Payment:          handler.NewPaymentHandler(paymentService),
		Expense:          handler.NewExpenseHandler(expenseService),
		Report:           reportHandler,
		System:           systemHandler,
	}

	// HTTP engine
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Profiling(providers.Profiler.IsEnabled()))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(providers.Meter, log))
	engine.Use(middleware.Secure(cfg.App.IsProduction()))
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.HTTP.CORSAllowOrigins)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// Liveness probe outside the API prefix
	engine.GET("/health", systemHandler.Health)

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger, jwtAuth),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
		log.Info("Swagger UI enabled", zap.Bool("require_auth", cfg.Swagger.RequireAuth))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(jwtAuth, middleware.TracingAttributeInjector())
	r.Register(router.APIGroups(handlers)...)
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("api", r.BasePath()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	// queued events may still need the database and the SMS gateway
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus did not drain", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := closeRenderer(); err != nil {
		log.Warn("Error closing PDF renderer", zap.Error(err))
	}
	closeArchive(shutdownCtx)
	if err := stores.Close(); err != nil {
		log.Warn("Error closing cache stores", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newObjectStorage returns S3 storage when enabled and nil otherwise, so
// receipt uploads and invoice archiving report themselves unavailable.
func newObjectStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) storage.ObjectStorage {
	if !cfg.Enabled {
		log.Info("Object storage disabled")
		return nil
	}
	s3, err := storage.NewS3ObjectStorage(ctx, cfg, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Fatal("Object storage bucket unavailable", zap.String("bucket", cfg.Bucket), zap.Error(err))
	}
	log.Info("Object storage ready", zap.String("bucket", s3.Bucket()))
	return s3
}

// newRenderer starts headless Chrome when printing is enabled. Without a
// renderer documents are served as printable HTML.
func newRenderer(cfg config.PrintingConfig, log *zap.Logger) (printing.Renderer, func() error) {
	if !cfg.Enabled {
		log.Info("PDF rendering disabled, documents are served as HTML")
		return nil, func() error { return nil }
	}
	r := printing.NewChromedpRenderer(cfg, log)
	return r, r.Close
}

// newReportArchive fans the daily report out to every configured archive.
// It returns nil when none is configured.
func newReportArchive(ctx context.Context, cfg config.ArchiveConfig, log *zap.Logger) (report.Archive, func(context.Context)) {
	var (
		targets archive.Multi
		mongo   *archive.MongoArchive
	)
	if cfg.MongoEnabled {
		a, err := archive.NewMongoArchive(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatal("Failed to connect report archive", zap.String("target", "mongo"), zap.Error(err))
		}
		mongo = a
		targets = append(targets, a)
	}
	if cfg.SheetsEnabled {
		a, err := archive.NewSheetsArchive(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID)
		if err != nil {
			log.Fatal("Failed to connect report archive", zap.String("target", "sheets"), zap.Error(err))
		}
		targets = append(targets, a)
	}

	closeFn := func(ctx context.Context) {
		if mongo == nil {
			return
		}
		if err := mongo.Close(ctx); err != nil {
			log.Warn("Error closing report archive", zap.Error(err))
		}
	}
	if len(targets) == 0 {
		log.Info("Daily report archive disabled")
		return nil, closeFn
	}
	log.Info("Daily report archive ready", zap.Int("targets", len(targets)))
	return targets, closeFn
}
