package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wms/backend/internal/application/finance"
	appidentity "github.com/wms/backend/internal/application/identity"
	appshipping "github.com/wms/backend/internal/application/shipping"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"github.com/wms/backend/internal/infrastructure/storage"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

const testPassword = "Password123!"

// testServer wires the real services over an in-memory sqlite database
type testServer struct {
	t       *testing.T
	db      *gorm.DB
	jwt     *auth.JWTService
	objects *storage.MemoryObjectStorage
	router  *gin.Engine
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
	db := openTestDB(t)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "wms-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	objects := storage.NewMemoryObjectStorage()

	userRepo := persistence.NewGormUserRepository(db)
	branchRepo := persistence.NewGormBranchRepository(db)
	parcelRepo := persistence.NewGormParcelRepository(db)
	expenseRepo := persistence.NewGormDailyExpenseRepository(db)
	depositRepo := persistence.NewGormBranchDepositRepository(db)
	tx := persistence.NewGormTransactor(db)

	authHandler := NewAuthHandler(appidentity.NewAuthService(userRepo, jwtService, blacklist, log))
	parcelHandler := NewParcelHandler(appshipping.NewParcelService(parcelRepo, branchRepo, nil, log))
	expenseHandler := NewExpenseHandler(finance.NewExpenseService(expenseRepo, userRepo, branchRepo, objects, time.Minute, nil, log))
	ledger := finance.NewLedgerService(depositRepo, tx, nil, log)
	depositHandler := NewBranchDepositHandler(finance.NewBranchDepositService(depositRepo, ledger, tx, log))

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.TokenBlacklist = blacklist
	middleware.SetupValidator()

	r := gin.New()
	r.Use(middleware.RequestID())
	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/refresh", authHandler.RefreshToken)

	protected := v1.Group("", middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/me", authHandler.GetCurrentUser)
	protected.PUT("/auth/password", authHandler.ChangePassword)

	protected.GET("/parcels", parcelHandler.List)
	protected.POST("/parcels", parcelHandler.Create)
	protected.GET("/parcels/count", parcelHandler.Count)
	protected.GET("/parcels/waybill/:waybill", parcelHandler.GetByWaybill)
	protected.GET("/parcels/:id", parcelHandler.GetByID)
	protected.PUT("/parcels/:id/status", parcelHandler.ChangeStatus)

	protected.POST("/expenses", expenseHandler.Create)
	protected.POST("/expenses/approve", middleware.RequireRoles(middleware.ExpenseDeciders...), expenseHandler.Decide)
	protected.POST("/expenses/:id/receipt", expenseHandler.UploadReceipt)
	protected.GET("/expenses/:id/receipt", expenseHandler.ReceiptURL)
	protected.PUT("/expenses/:id", expenseHandler.Update)

	protected.POST("/branch-deposits", depositHandler.Create)
	protected.GET("/branch-deposits", depositHandler.List)
	protected.PUT("/branch-deposits/:id", depositHandler.Update)

	return &testServer{t: t, db: db, jwt: jwtService, objects: objects, router: r}
}

// seedUser stores an active user with testPassword
func (s *testServer) seedUser(username string, role identity.Role, branch *identity.Branch) *identity.User {
	s.t.Helper()
	u, err := identity.NewUser(username, username+"@example.co.ke", testPassword, role)
	require.NoError(s.t, err)
	u.SetName("Test", username)
	if branch != nil {
		u.AssignBranch(&branch.ID)
	}
	require.NoError(s.t, persistence.NewGormUserRepository(s.db).Save(context.Background(), u))
	return u
}

func (s *testServer) seedBranch(name string) *identity.Branch {
	s.t.Helper()
	b, err := identity.NewBranch(name, name+" Road", "0711000000", "")
	require.NoError(s.t, err)
	require.NoError(s.t, persistence.NewGormBranchRepository(s.db).Save(context.Background(), b))
	return b
}

// tokenFor issues an access token directly, skipping the login round trip
func (s *testServer) tokenFor(u *identity.User) string {
	s.t.Helper()
	pair, err := s.jwt.GenerateTokenPair(auth.Subject{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role.String(),
		BranchID: u.BranchID,
	})
	require.NoError(s.t, err)
	return pair.AccessToken
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, token)
}

func (s *testServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// envelope decodes a success response's data into out
func envelope(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
}
