package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	var order []string
	r := NewRouter(engine).Use(func(c *gin.Context) {
		order = append(order, "router")
		c.Next()
	})

	group := NewDomainGroup("parcels", "/parcels").Use(func(c *gin.Context) {
		order = append(order, "group")
		c.Next()
	})
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/parcels/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, []string{"router", "group"}, order)
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("dispatches", "/dispatches")
		assert.Equal(t, "dispatches", g.Name())
		assert.Equal(t, "/dispatches", g.Prefix())
	})

	t.Run("methods and subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("payments", "/payments")
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method+" "+c.FullPath()) }
		g.GET("/summary", ok)
		cod := g.Group("cod", "/cod")
		cod.POST("", ok)
		cod.PUT("/:id", ok)
		cod.DELETE("/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct{ method, path, body string }{
			{http.MethodGet, "/api/v1/payments/summary", "GET /api/v1/payments/summary"},
			{http.MethodPost, "/api/v1/payments/cod", "POST /api/v1/payments/cod"},
			{http.MethodPut, "/api/v1/payments/cod/42", "PUT /api/v1/payments/cod/:id"},
			{http.MethodDelete, "/api/v1/payments/cod/42", "DELETE /api/v1/payments/cod/:id"},
		}
		for _, tt := range tests {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, tt.path)
			assert.Equal(t, tt.body, w.Body.String())
		}
	})
}

// apiEngine mounts the full route table. The handlers have no services, so
// only requests stopped by middleware may be sent to the guarded routes.
func apiEngine(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-at-least-32-chars",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "wms-test",
	})
	h := Handlers{
		Auth:             handler.NewAuthHandler(nil),
		User:             handler.NewUserHandler(nil),
		Branch:           handler.NewBranchHandler(nil),
		Parcel:           handler.NewParcelHandler(nil),
		Dispatch:         handler.NewDispatchHandler(nil),
		ContractCustomer: handler.NewContractCustomerHandler(nil),
		Invoice:          handler.NewInvoiceHandler(nil),
		BranchDeposit:    handler.NewBranchDepositHandler(nil),
		ParcelDeposit:    handler.NewParcelDepositHandler(nil),
		Payment:          handler.NewPaymentHandler(nil),
		Expense:          handler.NewExpenseHandler(nil),
		Report:           handler.NewReportHandler(nil),
		System:           handler.NewSystemHandler("test", nil),
	}

	engine := gin.New()
	NewRouter(engine).
		Use(middleware.JWTAuthMiddleware(jwtService)).
		Register(APIGroups(h)...).
		Setup()
	return engine, jwtService
}

func bearer(t *testing.T, svc *auth.JWTService, role string) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.Subject{UserID: uuid.New(), Username: "tester", Role: role})
	require.NoError(t, err)
	return middleware.BearerPrefix + pair.AccessToken
}

func TestAPIGroups_RouteTable(t *testing.T) {
	engine, _ := apiEngine(t)

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /api/v1/health",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/auth/logout",
		"GET /api/v1/auth/me",
		"PUT /api/v1/auth/password",
		"GET /api/v1/users",
		"PUT /api/v1/users/:id/password",
		"DELETE /api/v1/branches/:id",
		"GET /api/v1/parcels/waybill/:waybill",
		"POST /api/v1/parcels/confirm",
		"GET /api/v1/parcels/for-dispatch",
		"PUT /api/v1/parcels/:id/payment",
		"GET /api/v1/dispatches/:id/note",
		"GET /api/v1/contract-customers/:id/invoices",
		"GET /api/v1/invoices/unbilled-parcels",
		"GET /api/v1/invoices/customer/:customerId",
		"DELETE /api/v1/invoices/:id/items/:itemId",
		"GET /api/v1/invoices/:id/pdf",
		"GET /api/v1/branch-deposits/summary",
		"POST /api/v1/branch-deposits/recalculate",
		"GET /api/v1/parcel-deposits/clerk-summary/user/:userId",
		"PUT /api/v1/parcel-deposits/parcel/:parcelId",
		"GET /api/v1/payments/summary",
		"PUT /api/v1/payments/cod/:id",
		"POST /api/v1/payments/cheques",
		"POST /api/v1/expenses/approve",
		"GET /api/v1/expenses/:id/receipt",
		"GET /api/v1/reports/daily",
		"POST /api/v1/reports/jobs/:name/run",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestAPIGroups_Access(t *testing.T) {
	engine, svc := apiEngine(t)

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		status int
	}{
		{"health is public", http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{"parcels need a token", http.MethodGet, "/api/v1/parcels", "", http.StatusUnauthorized},
		{"users are admin only", http.MethodGet, "/api/v1/users", "manager", http.StatusForbidden},
		{"branch writes are admin only", http.MethodPost, "/api/v1/branches", "manager", http.StatusForbidden},
		{"clients cannot register parcels", http.MethodPost, "/api/v1/parcels", "client", http.StatusForbidden},
		{"clerks cannot confirm parcels", http.MethodPost, "/api/v1/parcels/confirm", "clerk", http.StatusForbidden},
		{"clerks cannot create dispatches", http.MethodPost, "/api/v1/dispatches", "clerk", http.StatusForbidden},
		{"clerks cannot see invoices", http.MethodGet, "/api/v1/invoices", "clerk", http.StatusForbidden},
		{"accountants cannot recalculate", http.MethodPost, "/api/v1/branch-deposits/recalculate", "accountant", http.StatusForbidden},
		{"clients cannot see expenses", http.MethodGet, "/api/v1/expenses", "client", http.StatusForbidden},
		{"managers cannot decide expenses", http.MethodPost, "/api/v1/expenses/approve", "manager", http.StatusForbidden},
		{"clerks cannot see payments", http.MethodGet, "/api/v1/payments/summary", "clerk", http.StatusForbidden},
		{"job runs are admin only", http.MethodPost, "/api/v1/reports/jobs/ledger-reconcile/run", "accountant", http.StatusForbidden},
		{"admin sees job states", http.MethodGet, "/api/v1/reports/jobs", "admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set(middleware.AuthHeaderKey, bearer(t, svc, tt.role))
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
