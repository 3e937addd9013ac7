package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/config"
	"github.com/madeiras-ouro-preto/sales-api/middleware"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/services"
	"github.com/madeiras-ouro-preto/sales-api/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminSubject = "auth0|admin"
	anaSubject   = "auth0|ana"
	brunoSubject = "auth0|bruno"

	sellerAnaID   = "00000000-0000-0000-0000-00000000005a"
	sellerBrunoID = "00000000-0000-0000-0000-00000000005b"
)

// fakeRenderer stands in for headless Chrome
type fakeRenderer struct {
	mu   sync.Mutex
	html string
	err  error
}

func (f *fakeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func (f *fakeRenderer) lastHTML() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.html
}

// testAPI is the full route table on top of an in-memory database
type testAPI struct {
	router    *gin.Engine
	db        *gorm.DB
	cfg       *config.Config
	storage   *services.MockS3Service
	renderer  *fakeRenderer
	analytics *AnalyticsController
	auth0     *httptest.Server
}

type apiOptions struct {
	withoutStorage bool
	userInfo       map[string]*services.Auth0UserInfo
}

func newTestAPI(t *testing.T, opts ...apiOptions) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var opt apiOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	api := &testAPI{
		db:       testutil.NewTestDB(t),
		cfg:      testutil.NewTestConfig(t),
		storage:  services.NewMockS3Service(),
		renderer: &fakeRenderer{},
	}
	api.auth0 = setupMockAuth0Server(opt.userInfo)
	t.Cleanup(api.auth0.Close)
	api.cfg.Auth0Domain = api.auth0.URL

	var storage services.S3Interface = api.storage
	if opt.withoutStorage {
		storage = nil
	}

	loc := api.cfg.Location()
	audit := services.NewAuditService(api.db)
	users := services.NewUserService(api.db, audit)
	clients := services.NewClientService(api.db, audit)
	products := services.NewProductService(api.db, audit)
	sellers := services.NewSellerService(api.db, audit)
	orders := services.NewOrderService(api.db, audit, products)
	documents := services.NewDocumentService(api.cfg.Company, api.renderer, storage, "", loc)

	clientCtl := NewClientController(clients)
	productCtl := NewProductController(products)
	sellerCtl := NewSellerController(sellers)
	orderCtl := NewOrderController(orders, clients, documents, api.cfg.Company, loc)
	userCtl := NewUserController(users, services.NewAuth0Service(api.cfg))
	auditCtl := NewAuditController(audit)
	api.analytics = NewAnalyticsController(orders, sellers, loc)

	lookup := func(ctx context.Context, auth0ID string) (*models.User, error) {
		user, err := users.FindByAuth0ID(ctx, auth0ID)
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil
		}
		return user, err
	}

	router := gin.New()
	v1 := router.Group("/api/v1", testutil.MockAuthMiddleware())
	v1.POST("/users", userCtl.Create)

	authed := v1.Group("", middleware.LoadCaller(lookup))
	{
		authed.GET("/users/me", userCtl.GetMe)
		authed.PUT("/users/me", userCtl.UpdateMe)

		authed.GET("/clients", clientCtl.List)
		authed.GET("/clients/:id", clientCtl.Get)
		authed.POST("/clients", clientCtl.Create)
		authed.PUT("/clients/:id", clientCtl.Update)
		authed.DELETE("/clients/:id", clientCtl.Delete)

		authed.GET("/products", productCtl.List)
		authed.GET("/products/:id", productCtl.Get)
		authed.POST("/products", productCtl.Create)
		authed.PUT("/products/:id", productCtl.Update)
		authed.DELETE("/products/:id", productCtl.Delete)

		authed.GET("/sellers", sellerCtl.List)

		authed.GET("/orders", orderCtl.List)
		authed.POST("/orders", orderCtl.Create)
		authed.GET("/orders/:id", orderCtl.Get)
		authed.PUT("/orders/:id", orderCtl.Update)
		authed.DELETE("/orders/:id", orderCtl.Delete)
		authed.POST("/orders/:id/convert", orderCtl.Convert)
		authed.GET("/orders/:id/pdf", orderCtl.PDF)
		authed.POST("/orders/:id/pdf", orderCtl.PublishPDF)
		authed.GET("/orders/:id/whatsapp", orderCtl.WhatsApp)

		authed.POST("/pricing/preview", PreviewPricing)

		authed.GET("/analytics/dashboard", api.analytics.Dashboard)
		authed.GET("/analytics/reports", api.analytics.Reports)
	}
	admin := authed.Group("", middleware.RequireAdmin())
	{
		admin.GET("/users", userCtl.List)
		admin.PUT("/users/:id/role", userCtl.UpdateRole)
		admin.POST("/sellers", sellerCtl.Create)
		admin.PUT("/sellers/:id", sellerCtl.Update)
		admin.DELETE("/sellers/:id", sellerCtl.Delete)
		admin.GET("/audit-logs", auditCtl.List)
	}

	api.router = router
	return api
}

// setupMockAuth0Server simulates Auth0's /userinfo endpoint. Tokens are the
// ones MockAuthMiddleware hands out: "test-token-" + subject.
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		userInfo, exists := userInfoMap[authHeader[7:]]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

// seedStaff creates the seller directory and one admin plus two sales accounts
func (api *testAPI) seedStaff(t *testing.T) {
	t.Helper()
	anaSeller, brunoSeller := sellerAnaID, sellerBrunoID
	require.NoError(t, api.db.Create(&[]models.Seller{
		{ID: sellerAnaID, Name: "Ana Souza", IsActive: true},
		{ID: sellerBrunoID, Name: "Bruno Lima", IsActive: true},
	}).Error)
	require.NoError(t, api.db.Create(&[]models.User{
		{Auth0ID: adminSubject, Name: "Admin", Email: "admin@ouropreto.com.br", Role: models.RoleAdmin},
		{Auth0ID: anaSubject, Name: "Ana Souza", Email: "ana@ouropreto.com.br", Role: models.RoleSales, SellerID: &anaSeller},
		{Auth0ID: brunoSubject, Name: "Bruno Lima", Email: "bruno@ouropreto.com.br", Role: models.RoleSales, SellerID: &brunoSeller},
	}).Error)
}

func (api *testAPI) do(t *testing.T, method, path, subject string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("X-Test-User", subject)
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success envelope into dst
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.False(t, envelope.Success)
	return envelope.Error.Code
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func marchDay(day, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 0, 0, 0, time.UTC)
}
