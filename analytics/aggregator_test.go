package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = access.Caller{UserID: "admin", Role: models.RoleAdmin}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sp(s string) *string { return &s }

func at(day string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day)
	if err != nil {
		t, err = time.Parse("2006-01-02", day)
	}
	if err != nil {
		panic(err)
	}
	return t
}

func order(id, day string, typ models.OrderType, total string, seller *string) models.Order {
	return models.Order{
		ID: id, Date: at(day), Type: typ, Status: models.StatusApproved,
		Total: dec(total), SellerID: seller, ClientName: "Cliente " + id,
	}
}

func marchWindow() Window {
	return Window{Start: at("2026-03-01"), End: endOfDay(at("2026-03-10"))}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg ...string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s got %s %v", want, got, msg)
}

func TestComputeEmptyInput(t *testing.T) {
	r := Compute(access.Scope(admin, nil), nil, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})

	assert.Equal(t, 0, r.KPIs.OrderCount)
	assert.Equal(t, 0, r.KPIs.QuoteCount)
	assert.True(t, r.KPIs.TotalSold.IsZero())
	assert.True(t, r.KPIs.AverageTicket.IsZero())
	assert.True(t, r.KPIs.ConversionRate.IsZero())
	assert.Len(t, r.Daily, 10)
	assert.Len(t, r.Weekly, 8)
	assert.Len(t, r.Monthly, 12)
	assert.Empty(t, r.Sellers)
	assert.Empty(t, r.Products)
	assert.Empty(t, r.Clients)
	assert.Len(t, r.Status, 4)
	for _, s := range r.Status {
		assert.Zero(t, s.Count)
	}
}

func TestComputeKPIsAndDailySeries(t *testing.T) {
	orders := []models.Order{
		order("a", "2026-03-01 09:00", models.TypeOrder, "100", nil),
		order("b", "2026-03-01 17:30", models.TypeOrder, "50", nil),
		order("c", "2026-03-05 10:00", models.TypeOrder, "30.5", nil),
		order("d", "2026-03-05 11:00", models.TypeQuote, "999", nil),
		order("e", "2026-03-10 23:59", models.TypeOrder, "19.5", nil),
		order("f", "2026-02-28 12:00", models.TypeOrder, "1000", nil), // before window
		order("g", "2026-03-11 00:00", models.TypeOrder, "1000", nil), // after window
	}

	r := Compute(access.Scope(admin, orders), nil, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})

	assertDec(t, "200", r.KPIs.TotalSold)
	assert.Equal(t, 4, r.KPIs.OrderCount)
	assert.Equal(t, 1, r.KPIs.QuoteCount)
	assertDec(t, "50", r.KPIs.AverageTicket)
	assertDec(t, "400", r.KPIs.ConversionRate)

	require.Len(t, r.Daily, 10)
	assert.Equal(t, "2026-03-01", r.Daily[0].Date)
	assert.Equal(t, "01/03", r.Daily[0].Label)
	assertDec(t, "150", r.Daily[0].Value)
	assertDec(t, "30.5", r.Daily[4].Value)
	assertDec(t, "0", r.Daily[1].Value)
	assert.Equal(t, "2026-03-10", r.Daily[9].Date)
	assertDec(t, "19.5", r.Daily[9].Value)

	daySum := decimal.Zero
	for _, p := range r.Daily {
		assert.False(t, p.Value.IsNegative())
		daySum = daySum.Add(p.Value)
	}
	assertDec(t, r.KPIs.TotalSold.String(), daySum, "daily series must add up to total sold")
}

func TestComputeCurrentMonthIgnoresWindow(t *testing.T) {
	orders := []models.Order{
		order("jan", "2026-01-15", models.TypeOrder, "70", nil),
		order("now1", "2026-04-02", models.TypeOrder, "25", nil),
		order("now2", "2026-04-20", models.TypeOrder, "5", nil),
		order("q", "2026-04-03", models.TypeQuote, "900", nil),
	}

	r := Compute(access.Scope(admin, orders), nil,
		Filters{Window: Window{Start: at("2026-01-01"), End: endOfDay(at("2026-01-31"))}},
		Options{Now: at("2026-04-21")})

	assertDec(t, "70", r.KPIs.TotalSold)
	assertDec(t, "30", r.KPIs.CurrentMonthTotal)
}

func TestComputeWeeklySeries(t *testing.T) {
	// 2026-03-10 is a Tuesday; its ISO week starts on Monday 2026-03-09.
	orders := []models.Order{
		order("w8o", "2026-03-09", models.TypeOrder, "10", nil),
		order("w8q", "2026-03-15 22:00", models.TypeQuote, "10", nil), // Sunday, same ISO week
		order("w7q", "2026-03-08", models.TypeQuote, "10", nil),       // Sunday, previous week
		order("w1o", "2026-01-19", models.TypeOrder, "10", nil),       // first week of the series
		order("old", "2026-01-18", models.TypeOrder, "10", nil),       // before the series
	}

	r := Compute(access.Scope(admin, orders), nil, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})

	require.Len(t, r.Weekly, 8)
	assert.Equal(t, "2026-01-19", r.Weekly[0].WeekStart)
	assert.Equal(t, 1, r.Weekly[0].Orders)
	assert.Equal(t, "2026-03-02", r.Weekly[6].WeekStart)
	assert.Equal(t, 0, r.Weekly[6].Orders)
	assert.Equal(t, 1, r.Weekly[6].Quotes)
	assert.Equal(t, "2026-03-09", r.Weekly[7].WeekStart)
	assert.Equal(t, "09/03", r.Weekly[7].Label)
	assert.Equal(t, 1, r.Weekly[7].Orders)
	assert.Equal(t, 1, r.Weekly[7].Quotes)
}

func TestComputeSellerBreakdown(t *testing.T) {
	sellers := []models.Seller{
		{ID: "s1", Name: "Ana", IsActive: true},
		{ID: "s2", Name: "Bruno", IsActive: false},
		{ID: "s3", Name: "Carla", IsActive: true},
	}
	orders := []models.Order{
		order("1", "2026-03-02", models.TypeOrder, "100", sp("s1")),
		order("2", "2026-03-02", models.TypeQuote, "100", sp("s1")),
		order("3", "2026-03-02", models.TypeQuote, "100", sp("s1")),
		order("4", "2026-03-03", models.TypeOrder, "300", sp("s2")),
		order("5", "2026-03-03", models.TypeOrder, "40", nil),
		order("6", "2026-03-04", models.TypeOrder, "60", sp("gone")),
	}
	orders[5].SellerName = "Diego"

	r := Compute(access.Scope(admin, orders), sellers, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})

	names := make([]string, len(r.Sellers))
	for i, s := range r.Sellers {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Bruno", "Ana", "Diego", UnassignedSellerName, "Carla"}, names)

	bruno := r.Sellers[0]
	assertDec(t, "300", bruno.Total)
	assert.Equal(t, 1, bruno.OrderCount)
	assert.Equal(t, 0, bruno.QuoteCount)
	assertDec(t, "0", bruno.ConversionRate, "no quotes means zero conversion")

	ana := r.Sellers[1]
	assert.Equal(t, 1, ana.OrderCount)
	assert.Equal(t, 2, ana.QuoteCount)
	assertDec(t, "50", ana.ConversionRate)
	assertDec(t, "100", ana.AverageTicket)

	carla := r.Sellers[4]
	assert.True(t, carla.Total.IsZero())
	assert.True(t, carla.AverageTicket.IsZero())

	require.Len(t, r.SalesBySeller, 4)
	assert.Equal(t, "Bruno", r.SalesBySeller[0].Name)
	assert.Equal(t, UnassignedSellerName, r.SalesBySeller[3].Name)
}

func TestComputeSellerBreakdownUnknownSnapshot(t *testing.T) {
	orders := []models.Order{order("1", "2026-03-02", models.TypeOrder, "10", sp("gone"))}

	r := Compute(access.Scope(admin, orders), nil, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})

	require.Len(t, r.Sellers, 1)
	assert.Equal(t, UnknownSellerName, r.Sellers[0].Name)
}

func TestComputeFilters(t *testing.T) {
	orders := []models.Order{
		order("1", "2026-03-02", models.TypeOrder, "100", sp("s1")),
		order("2", "2026-03-02", models.TypeQuote, "100", sp("s1")),
		order("3", "2026-03-03", models.TypeOrder, "300", sp("s2")),
		order("4", "2025-12-03", models.TypeOrder, "5", sp("s2")),
	}
	sellers := []models.Seller{{ID: "s1", Name: "Ana"}, {ID: "s2", Name: "Bruno"}}

	bySeller := Compute(access.Scope(admin, orders), sellers,
		Filters{Window: marchWindow(), SellerID: "s1"}, Options{Now: at("2026-03-10")})
	assertDec(t, "100", bySeller.KPIs.TotalSold)
	assert.Equal(t, 1, bySeller.KPIs.QuoteCount)

	quotesOnly := Compute(access.Scope(admin, orders), sellers,
		Filters{Window: marchWindow(), Type: models.TypeQuote}, Options{Now: at("2026-03-10")})
	assert.Equal(t, 0, quotesOnly.KPIs.OrderCount)
	assert.Equal(t, 1, quotesOnly.KPIs.QuoteCount)
	assert.Empty(t, quotesOnly.Products)

	everything := Compute(access.Scope(admin, orders), sellers,
		Filters{Window: marchWindow(), SellerID: AllSellers, Type: AllTypes}, Options{Now: at("2026-03-10")})
	assertDec(t, "400", everything.KPIs.TotalSold)

	// monthly series ignores seller and type filters
	dec25 := bySeller.Monthly[8]
	assert.Equal(t, "2025-12", dec25.Month)
	assert.Equal(t, "dez/25", dec25.Label)
	assert.Equal(t, 1, dec25.OrderCount)
}

func TestComputeRespectsScope(t *testing.T) {
	orders := []models.Order{
		order("1", "2026-03-02", models.TypeOrder, "100", sp("s1")),
		order("2", "2026-03-02", models.TypeOrder, "250", sp("s2")),
	}
	seller := access.Caller{UserID: "u1", SellerID: "s1", Role: models.RoleSales}

	r := Compute(access.Scope(seller, orders), nil, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})

	assertDec(t, "100", r.KPIs.TotalSold)
	assert.Equal(t, 1, r.KPIs.OrderCount)
}

func TestComputeProductBreakdown(t *testing.T) {
	var orders []models.Order
	for i := 0; i < 12; i++ {
		o := order(fmt.Sprintf("o%d", i), "2026-03-02", models.TypeOrder, "0", nil)
		o.Items = []models.OrderItem{{
			Description: fmt.Sprintf("Produto %02d", i%7),
			Unit:        pricing.UnitCount,
			Quantity:    dec("2"),
			Total:       decimal.NewFromInt(int64(10 * (i % 7))),
		}}
		orders = append(orders, o)
	}
	quote := order("q", "2026-03-02", models.TypeQuote, "0", nil)
	quote.Items = []models.OrderItem{{Description: "Somente orçamento", Quantity: dec("1"), Total: dec("99999")}}
	orders = append(orders, quote)

	dashboard := Compute(access.Scope(admin, orders), nil, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})
	require.Len(t, dashboard.Products, TopProductsDashboard)
	// Produto 04 is sold twice (40 + 40); 03 and 06 tie at 60 and keep encounter order.
	assert.Equal(t, "Produto 04", dashboard.Products[0].Name)
	assertDec(t, "80", dashboard.Products[0].Total)
	assertDec(t, "4", dashboard.Products[0].Quantity)
	assert.Equal(t, "un", dashboard.Products[0].Unit)
	assert.Equal(t, "Produto 03", dashboard.Products[1].Name)
	assert.Equal(t, "Produto 06", dashboard.Products[2].Name)

	report := Compute(access.Scope(admin, orders), nil, Filters{Window: marchWindow()},
		Options{Now: at("2026-03-10"), TopProducts: TopProductsReport})
	require.Len(t, report.Products, 7)
	for i := 1; i < len(report.Products); i++ {
		assert.False(t, report.Products[i].Total.GreaterThan(report.Products[i-1].Total))
	}
	assert.Equal(t, "Produto 00", report.Products[6].Name)
}

func TestComputeTiesKeepEncounterOrder(t *testing.T) {
	orders := []models.Order{
		order("1", "2026-03-02", models.TypeOrder, "10", nil),
		order("2", "2026-03-03", models.TypeOrder, "10", nil),
		order("3", "2026-03-04", models.TypeOrder, "10", nil),
	}
	orders[0].ClientName = "Zeca"
	orders[1].ClientName = "Alice"
	orders[2].ClientName = "Maria"

	r := Compute(access.Scope(admin, orders), nil, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})

	require.Len(t, r.Clients, 3)
	assert.Equal(t, "Zeca", r.Clients[0].Name)
	assert.Equal(t, "Alice", r.Clients[1].Name)
	assert.Equal(t, "Maria", r.Clients[2].Name)
}

func TestComputeClientBreakdownTopTen(t *testing.T) {
	var orders []models.Order
	for i := 0; i < 15; i++ {
		o := order(fmt.Sprintf("o%d", i), "2026-03-02", models.TypeOrder, fmt.Sprintf("%d", 100+i), nil)
		o.ClientName = fmt.Sprintf("Cliente %02d", i)
		orders = append(orders, o)
	}
	repeat := order("again", "2026-03-03", models.TypeOrder, "1", nil)
	repeat.ClientName = "Cliente 14"
	orders = append(orders, repeat)

	r := Compute(access.Scope(admin, orders), nil, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})

	require.Len(t, r.Clients, 10)
	assert.Equal(t, "Cliente 14", r.Clients[0].Name)
	assertDec(t, "115", r.Clients[0].Total)
	assert.Equal(t, 2, r.Clients[0].OrderCount)
	assertDec(t, "57.5", r.Clients[0].AverageTicket)
}

func TestComputeStatusDistribution(t *testing.T) {
	orders := []models.Order{
		order("1", "2026-03-02", models.TypeOrder, "1", nil),
		order("2", "2026-03-02", models.TypeOrder, "1", nil),
		order("3", "2026-03-02", models.TypeQuote, "1", nil),
		order("4", "2026-03-02", models.TypeOrder, "1", nil),
	}
	orders[1].Status = models.StatusSent
	orders[3].Status = "Arquivado"

	r := Compute(access.Scope(admin, orders), nil, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})

	require.Len(t, r.Status, 5)
	assert.Equal(t, StatusCount{Status: models.StatusDraft, Count: 0}, r.Status[0])
	assert.Equal(t, StatusCount{Status: models.StatusSent, Count: 1}, r.Status[1])
	assert.Equal(t, StatusCount{Status: models.StatusApproved, Count: 1}, r.Status[2])
	assert.Equal(t, StatusCount{Status: "Arquivado", Count: 1}, r.Status[4])
}

func TestComputeMonthlySeries(t *testing.T) {
	orders := []models.Order{
		order("1", "2025-04-30", models.TypeOrder, "10", nil), // outside the 12 months
		order("2", "2025-04-01", models.TypeOrder, "10", nil),
		order("3", "2025-05-01", models.TypeOrder, "40", nil),
		order("4", "2025-05-20", models.TypeOrder, "20", nil),
		order("5", "2025-05-21", models.TypeQuote, "20", nil),
		order("6", "2026-04-10", models.TypeOrder, "7", nil),
	}
	w := Window{Start: at("2026-04-01"), End: endOfDay(at("2026-04-30"))}

	r := Compute(access.Scope(admin, orders), nil, Filters{Window: w}, Options{Now: at("2026-04-30")})

	require.Len(t, r.Monthly, 12)
	assert.Equal(t, "2025-05", r.Monthly[0].Month)
	assert.Equal(t, "mai/25", r.Monthly[0].Label)
	assertDec(t, "60", r.Monthly[0].Total)
	assert.Equal(t, 2, r.Monthly[0].OrderCount)
	assert.Equal(t, 1, r.Monthly[0].QuoteCount)
	assertDec(t, "30", r.Monthly[0].AverageTicket)
	assert.Equal(t, "2026-04", r.Monthly[11].Month)
	assertDec(t, "7", r.Monthly[11].Total)
}

func TestComputeBucketsInLocation(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	// 01:30 UTC on the 3rd is still the 2nd in Brazil.
	orders := []models.Order{order("1", "2026-03-03 01:30", models.TypeOrder, "10", nil)}
	w := Window{
		Start: time.Date(2026, 3, 1, 0, 0, 0, 0, saoPaulo),
		End:   endOfDay(time.Date(2026, 3, 10, 0, 0, 0, 0, saoPaulo)),
	}

	r := Compute(access.Scope(admin, orders), nil, Filters{Window: w}, Options{Now: at("2026-03-10"), Location: saoPaulo})

	assertDec(t, "10", r.Daily[1].Value)
	assertDec(t, "0", r.Daily[2].Value)
}

func TestComputeCarriesNegativeOrderTotals(t *testing.T) {
	// an oversized fixed discount leaves the order total below zero
	orders := []models.Order{
		order("a", "2026-03-02 10:00", models.TypeOrder, "-40", nil),
		order("b", "2026-03-03 10:00", models.TypeOrder, "100", nil),
	}

	r := Compute(access.Scope(admin, orders), nil, Filters{Window: marchWindow()}, Options{Now: at("2026-03-10")})

	assertDec(t, "60", r.KPIs.TotalSold)
	assertDec(t, "-40", r.Daily[1].Value)
	assert.Equal(t, "2026-03-02", r.Daily[1].Date)
}
