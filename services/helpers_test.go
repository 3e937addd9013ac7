package services

import (
	"context"
	"testing"
	"time"

	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/pricing"
	"github.com/madeiras-ouro-preto/sales-api/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServices struct {
	db       *gorm.DB
	audit    *AuditService
	clients  *ClientService
	products *ProductService
	sellers  *SellerService
	users    *UserService
	orders   *OrderService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	db := testutil.NewTestDB(t)
	audit := NewAuditService(db)
	products := NewProductService(db, audit)
	orders := NewOrderService(db, audit, products)
	orders.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return &testServices{
		db:       db,
		audit:    audit,
		clients:  NewClientService(db, audit),
		products: products,
		sellers:  NewSellerService(db, audit),
		users:    NewUserService(db, audit),
		orders:   orders,
	}
}

var (
	adminCaller = access.Caller{UserID: "00000000-0000-0000-0000-0000000000a1", Name: "Admin", Email: "admin@ouropreto.com.br", Role: models.RoleAdmin}
	sellerA     = access.Caller{UserID: "00000000-0000-0000-0000-0000000000b1", SellerID: "00000000-0000-0000-0000-00000000005a", Name: "Ana", Role: models.RoleSales}
	sellerB     = access.Caller{UserID: "00000000-0000-0000-0000-0000000000b2", SellerID: "00000000-0000-0000-0000-00000000005b", Name: "Bruno", Role: models.RoleSales}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, note ...string) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, note)
}

func item(desc, qty, price string, unit pricing.Unit) models.OrderItem {
	return models.OrderItem{
		Description:  desc,
		Quantity:     dec(qty),
		UnitPrice:    dec(price),
		Unit:         unit,
		DiscountType: pricing.DiscountPercentage,
	}
}

func (s *testServices) seedSellers(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, seller := range []models.Seller{
		{ID: sellerA.SellerID, Name: "Ana Souza", IsActive: true},
		{ID: sellerB.SellerID, Name: "Bruno Lima", IsActive: true},
	} {
		seller := seller
		_, err := s.sellers.Save(ctx, adminCaller, &seller)
		require.NoError(t, err)
	}
}
