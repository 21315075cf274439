package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	billingapp "github.com/wms/backend/internal/application/billing"
	financeapp "github.com/wms/backend/internal/application/finance"
	identityapp "github.com/wms/backend/internal/application/identity"
	printingapp "github.com/wms/backend/internal/application/printing"
	reportapp "github.com/wms/backend/internal/application/report"
	shippingapp "github.com/wms/backend/internal/application/shipping"
	"github.com/wms/backend/internal/domain/shipping"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/notification"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/printing"
	"github.com/wms/backend/internal/infrastructure/storage"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"
	"github.com/wms/backend/tests/testutil"
)

const (
	adminUsername = "admin"
	adminPassword = "Admin-Password-1"
)

// apiServer is the production route table over a real database. Optional
// backends run in memory and SMS is recorded.
type apiServer struct {
	db     *TestDB
	engine *gin.Engine
	client *testutil.APIClient
	sms    *testutil.RecordingSMS
	events *testutil.RecordingHandler
	ledger *financeapp.LedgerService
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	tdb := NewTestDB(t)
	log := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
	db := tdb.DB

	userRepo := persistence.NewGormUserRepository(db)
	branchRepo := persistence.NewGormBranchRepository(db)
	parcelRepo := persistence.NewGormParcelRepository(db)
	dispatchRepo := persistence.NewGormDispatchRepository(db)
	customerRepo := persistence.NewGormContractCustomerRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	branchDepositRepo := persistence.NewGormBranchDepositRepository(db)
	parcelDepositRepo := persistence.NewGormParcelDepositRepository(db)
	expenseRepo := persistence.NewGormDailyExpenseRepository(db)
	reportRepo := persistence.NewGormReportRepository(db)
	codRepo := persistence.NewGormCODCollectionRepository(db)
	chequeRepo := persistence.NewGormChequeDepositRepository(db)
	tx := persistence.NewGormTransactor(db)

	templates, err := printing.NewTemplateEngine()
	require.NoError(t, err)
	documents := printingapp.NewDocumentService(templates, nil, printing.Company{Name: "WMS Test"}, log)
	objects := storage.NewMemoryObjectStorage()

	bus := event.NewInMemoryEventBus(log)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-secret-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "wms-integration",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	userService := identityapp.NewUserService(userRepo, branchRepo, log)
	ledgerService := financeapp.NewLedgerService(branchDepositRepo, tx, bus, log)
	reportService := reportapp.NewDailyReportService(parcelRepo, dispatchRepo, codRepo, reportRepo,
		cache.NewInMemoryReportCache(cache.DefaultReportTTL), nil, log)

	s := &apiServer{
		db:     tdb,
		sms:    testutil.NewRecordingSMS(),
		events: testutil.NewRecordingHandler(shipping.EventTypeParcelRegistered, shipping.EventTypeDispatchCreated),
		ledger: ledgerService,
	}

	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })
	bus.Subscribe(event.NewIdempotentHandler(notification.NewParcelNotificationHandler(s.sms, parcelRepo, log), idempotency, 0, log))
	bus.Subscribe(reportapp.NewCacheInvalidationHandler(reportService, log))
	bus.Subscribe(s.events)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = bus.Stop(ctx)
	})

	created, err := userService.EnsureAdmin(context.Background(), adminUsername, "admin@wms.test", adminPassword)
	require.NoError(t, err)
	require.True(t, created)

	handlers := router.Handlers{
		Auth:             handler.NewAuthHandler(identityapp.NewAuthService(userRepo, jwtService, blacklist, log)),
		User:             handler.NewUserHandler(userService),
		Branch:           handler.NewBranchHandler(identityapp.NewBranchService(branchRepo, userRepo, log)),
		Parcel:           handler.NewParcelHandler(shippingapp.NewParcelService(parcelRepo, branchRepo, bus, log)),
		Dispatch:         handler.NewDispatchHandler(shippingapp.NewDispatchService(dispatchRepo, parcelRepo, tx, documents, bus, log)),
		ContractCustomer: handler.NewContractCustomerHandler(billingapp.NewContractCustomerService(customerRepo, invoiceRepo, log)),
		Invoice: handler.NewInvoiceHandler(billingapp.NewInvoiceService(invoiceRepo, customerRepo, parcelRepo, tx,
			documents, objects, time.Minute, log)),
		BranchDeposit: handler.NewBranchDepositHandler(financeapp.NewBranchDepositService(branchDepositRepo, ledgerService, tx, log)),
		ParcelDeposit: handler.NewParcelDepositHandler(financeapp.NewParcelDepositService(parcelDepositRepo, parcelRepo, log)),
		Payment: handler.NewPaymentHandler(financeapp.NewPaymentService(codRepo, chequeRepo, dispatchRepo, branchRepo,
			invoiceRepo, log)),
		Expense: handler.NewExpenseHandler(financeapp.NewExpenseService(expenseRepo, userRepo, branchRepo, objects,
			time.Minute, bus, log)),
		Report: handler.NewReportHandler(reportService),
		System: handler.NewSystemHandler("integration", &persistence.Database{DB: db}),
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist

	s.engine = gin.New()
	s.engine.Use(middleware.RequestID())
	router.NewRouter(s.engine).
		Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig)).
		Register(router.APIGroups(handlers)...).
		Setup()
	s.client = testutil.NewAPIClient(t, s.engine)
	return s
}

// login returns an access token for username
func (s *apiServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.client.Do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	result := testutil.Decode[identityapp.LoginResult](t, w, http.StatusOK)
	return result.AccessToken
}
