// Package analytics turns a scoped collection of orders into dashboard and report views.
//
// Everything here is a pure function of its input. Authorization happened
// before the data arrived: Compute only accepts access.ScopedOrders.
package analytics

import (
	"sort"
	"time"

	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/shopspring/decimal"
)

const (
	weeksInSeries  = 8
	monthsInSeries = 12
	topClients     = 10

	// TopProductsDashboard and TopProductsReport are the two product ranking sizes in use.
	TopProductsDashboard = 5
	TopProductsReport    = 10

	UnassignedSellerName = "Não informado"
	UnknownSellerName    = "Antigo/Inativo"

	// AllSellers and AllTypes are the "no filter" values sent by the UI.
	AllSellers = "all"
	AllTypes   = "Todos"
)

var (
	hundred = decimal.NewFromInt(100)

	monthAbbrev = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}
)

// Filters narrow the window-based views.
type Filters struct {
	Window   Window
	SellerID string
	Type     models.OrderType
}

// Options tune a Compute run.
type Options struct {
	// Now anchors the current-month total. Defaults to time.Now.
	Now time.Time
	// Location is used to bucket order dates into days. Defaults to the window's location.
	Location *time.Location
	// TopProducts caps the product ranking. Defaults to TopProductsDashboard.
	TopProducts int
}

type KPIs struct {
	TotalSold         decimal.Decimal `json:"total_sold"`
	OrderCount        int             `json:"order_count"`
	QuoteCount        int             `json:"quote_count"`
	AverageTicket     decimal.Decimal `json:"average_ticket"`
	ConversionRate    decimal.Decimal `json:"conversion_rate"`
	CurrentMonthTotal decimal.Decimal `json:"current_month_total"`
}

type DailyPoint struct {
	Date  string          `json:"date"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

type WeeklyPoint struct {
	WeekStart string `json:"week_start"`
	Label     string `json:"label"`
	Orders    int    `json:"orders"`
	Quotes    int    `json:"quotes"`
}

type NamedValue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

type SellerStats struct {
	SellerID       string          `json:"seller_id"`
	Name           string          `json:"name"`
	Total          decimal.Decimal `json:"total"`
	OrderCount     int             `json:"order_count"`
	QuoteCount     int             `json:"quote_count"`
	AverageTicket  decimal.Decimal `json:"average_ticket"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

type ProductStats struct {
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

type ClientStats struct {
	Name          string          `json:"name"`
	Total         decimal.Decimal `json:"total"`
	OrderCount    int             `json:"order_count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int                `json:"count"`
}

type MonthlyPoint struct {
	Month         string          `json:"month"`
	Label         string          `json:"label"`
	Total         decimal.Decimal `json:"total"`
	OrderCount    int             `json:"order_count"`
	QuoteCount    int             `json:"quote_count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// Report holds every derived view. Each one is computed on its own pass.
type Report struct {
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	KPIs          KPIs           `json:"kpis"`
	Daily         []DailyPoint   `json:"daily"`
	Weekly        []WeeklyPoint  `json:"weekly"`
	SalesBySeller []NamedValue   `json:"sales_by_seller"`
	Sellers       []SellerStats  `json:"sellers"`
	Products      []ProductStats `json:"products"`
	Clients       []ClientStats  `json:"clients"`
	Status        []StatusCount  `json:"status"`
	Monthly       []MonthlyPoint `json:"monthly"`
}

// Compute builds the report for f over an already scoped collection.
//
// Window-based views (KPIs, daily, sellers, products, clients, status) see
// orders inside the window that pass the seller and type filters. The weekly
// series sees filtered orders in the 8 weeks ending at the window end. The
// monthly series and the current-month total ignore the filters and the window.
func Compute(scoped access.ScopedOrders, sellers []models.Seller, f Filters, opt Options) Report {
	loc := opt.Location
	if loc == nil {
		loc = f.Window.End.Location()
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}
	topProducts := opt.TopProducts
	if topProducts <= 0 {
		topProducts = TopProductsDashboard
	}

	w := Window{Start: f.Window.Start.In(loc), End: f.Window.End.In(loc)}
	all := scoped.Orders()
	filtered := applyFilters(all, f)
	inWindow := withinWindow(filtered, w, loc)
	orders, quotes := splitByType(inWindow)

	return Report{
		Start:         w.Start,
		End:           w.End,
		KPIs:          kpis(orders, quotes, all, now.In(loc), loc),
		Daily:         dailySeries(orders, w, loc),
		Weekly:        weeklySeries(filtered, w, loc),
		SalesBySeller: salesBySeller(orders, sellers),
		Sellers:       sellerBreakdown(inWindow, sellers),
		Products:      productBreakdown(orders, topProducts),
		Clients:       clientBreakdown(orders, topClients),
		Status:        statusDistribution(orders),
		Monthly:       monthlySeries(all, w, loc),
	}
}

func applyFilters(orders []models.Order, f Filters) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if f.SellerID != "" && f.SellerID != AllSellers && (!o.HasSeller() || *o.SellerID != f.SellerID) {
			continue
		}
		if f.Type != "" && f.Type != AllTypes && o.Type != f.Type {
			continue
		}
		out = append(out, o)
	}
	return out
}

// withinWindow compares calendar days so that the daily series and the KPI totals agree.
func withinWindow(orders []models.Order, w Window, loc *time.Location) []models.Order {
	first, last := startOfDay(w.Start), startOfDay(w.End)
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		day := startOfDay(o.Date.In(loc))
		if day.Before(first) || day.After(last) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func splitByType(orders []models.Order) (ord, quo []models.Order) {
	for _, o := range orders {
		switch o.Type {
		case models.TypeOrder:
			ord = append(ord, o)
		case models.TypeQuote:
			quo = append(quo, o)
		}
	}
	return ord, quo
}

func sum(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return total
}

// ratio returns num/den rounded to cents, or zero when den is zero.
func ratio(num decimal.Decimal, den int) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	return num.Div(decimal.NewFromInt(int64(den))).Round(2)
}

func conversion(orders, quotes int) decimal.Decimal {
	if quotes == 0 {
		return decimal.Zero
	}
	return ratio(decimal.NewFromInt(int64(orders)).Mul(hundred), quotes)
}

func kpis(orders, quotes, all []models.Order, now time.Time, loc *time.Location) KPIs {
	total := sum(orders)

	monthStart := startOfMonth(now)
	nextMonth := monthStart.AddDate(0, 1, 0)
	current := decimal.Zero
	for _, o := range all {
		d := o.Date.In(loc)
		if o.Type == models.TypeOrder && !d.Before(monthStart) && d.Before(nextMonth) {
			current = current.Add(o.Total)
		}
	}

	return KPIs{
		TotalSold:         total,
		OrderCount:        len(orders),
		QuoteCount:        len(quotes),
		AverageTicket:     ratio(total, len(orders)),
		ConversionRate:    conversion(len(orders), len(quotes)),
		CurrentMonthTotal: current,
	}
}

func dailySeries(orders []models.Order, w Window, loc *time.Location) []DailyPoint {
	byDay := make(map[string]decimal.Decimal)
	for _, o := range orders {
		key := o.Date.In(loc).Format("2006-01-02")
		byDay[key] = byDay[key].Add(o.Total)
	}

	points := make([]DailyPoint, 0, w.Days())
	for d := startOfDay(w.Start); !d.After(w.End); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		points = append(points, DailyPoint{Date: key, Label: d.Format("02/01"), Value: byDay[key]})
	}
	return points
}

func weeklySeries(orders []models.Order, w Window, loc *time.Location) []WeeklyPoint {
	first := startOfWeek(w.End).AddDate(0, 0, -7*(weeksInSeries-1))

	points := make([]WeeklyPoint, weeksInSeries)
	for i := range points {
		ws := first.AddDate(0, 0, 7*i)
		points[i] = WeeklyPoint{WeekStart: ws.Format("2006-01-02"), Label: ws.Format("02/01")}
	}

	for _, o := range orders {
		d := o.Date.In(loc)
		if d.Before(first) {
			continue
		}
		idx := int(startOfWeek(d).Sub(first).Hours()/24+0.5) / 7
		if idx >= weeksInSeries {
			continue
		}
		switch o.Type {
		case models.TypeOrder:
			points[idx].Orders++
		case models.TypeQuote:
			points[idx].Quotes++
		}
	}
	return points
}

type sellerNames map[string]string

func directory(sellers []models.Seller) sellerNames {
	names := make(sellerNames, len(sellers))
	for _, s := range sellers {
		names[s.ID] = s.Name
	}
	return names
}

// resolve names the seller of o, falling back to the snapshot taken when the order was saved.
func (n sellerNames) resolve(o models.Order) string {
	if !o.HasSeller() {
		return UnassignedSellerName
	}
	if name, ok := n[*o.SellerID]; ok {
		return name
	}
	if o.SellerName != "" {
		return o.SellerName
	}
	return UnknownSellerName
}

func salesBySeller(orders []models.Order, sellers []models.Seller) []NamedValue {
	names := directory(sellers)
	index := make(map[string]int)
	var out []NamedValue
	for _, o := range orders {
		name := names.resolve(o)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, NamedValue{Name: name, Value: decimal.Zero})
		}
		out[i].Value = out[i].Value.Add(o.Total)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Value.GreaterThan(out[j].Value) })
	return out
}

// sellerBreakdown lists every directory seller, then sellers that are gone
// from the directory, then the unassigned bucket when it has documents.
func sellerBreakdown(orders []models.Order, sellers []models.Seller) []SellerStats {
	names := directory(sellers)
	index := make(map[string]int, len(sellers))
	stats := make([]SellerStats, 0, len(sellers)+1)
	for _, s := range sellers {
		index[s.ID] = len(stats)
		stats = append(stats, SellerStats{SellerID: s.ID, Name: s.Name})
	}

	var unassigned *SellerStats
	for _, o := range orders {
		var bucket *SellerStats
		if !o.HasSeller() {
			if unassigned == nil {
				unassigned = &SellerStats{Name: UnassignedSellerName}
			}
			bucket = unassigned
		} else {
			i, ok := index[*o.SellerID]
			if !ok {
				i = len(stats)
				index[*o.SellerID] = i
				stats = append(stats, SellerStats{SellerID: *o.SellerID, Name: names.resolve(o)})
			}
			bucket = &stats[i]
		}

		switch o.Type {
		case models.TypeOrder:
			bucket.Total = bucket.Total.Add(o.Total)
			bucket.OrderCount++
		case models.TypeQuote:
			bucket.QuoteCount++
		}
	}
	if unassigned != nil {
		stats = append(stats, *unassigned)
	}

	for i := range stats {
		stats[i].AverageTicket = ratio(stats[i].Total, stats[i].OrderCount)
		stats[i].ConversionRate = conversion(stats[i].OrderCount, stats[i].QuoteCount)
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Total.GreaterThan(stats[j].Total) })
	return stats
}

// productBreakdown groups by item description; ad hoc items have no product id.
func productBreakdown(orders []models.Order, limit int) []ProductStats {
	index := make(map[string]int)
	var out []ProductStats
	for _, o := range orders {
		for _, item := range o.Items {
			i, ok := index[item.Description]
			if !ok {
				i = len(out)
				index[item.Description] = i
				out = append(out, ProductStats{Name: item.Description, Unit: string(item.Unit)})
			}
			out[i].Quantity = out[i].Quantity.Add(item.Quantity)
			out[i].Total = out[i].Total.Add(item.Total)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func clientBreakdown(orders []models.Order, limit int) []ClientStats {
	index := make(map[string]int)
	var out []ClientStats
	for _, o := range orders {
		i, ok := index[o.ClientName]
		if !ok {
			i = len(out)
			index[o.ClientName] = i
			out = append(out, ClientStats{Name: o.ClientName})
		}
		out[i].Total = out[i].Total.Add(o.Total)
		out[i].OrderCount++
	}
	for i := range out {
		out[i].AverageTicket = ratio(out[i].Total, out[i].OrderCount)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// statusDistribution always lists the four workflow statuses, followed by
// any unexpected value found in the data.
func statusDistribution(orders []models.Order) []StatusCount {
	out := make([]StatusCount, len(models.Statuses))
	index := make(map[models.OrderStatus]int, len(models.Statuses))
	for i, s := range models.Statuses {
		out[i] = StatusCount{Status: s}
		index[s] = i
	}

	for _, o := range orders {
		i, ok := index[o.Status]
		if !ok {
			i = len(out)
			index[o.Status] = i
			out = append(out, StatusCount{Status: o.Status})
		}
		out[i].Count++
	}
	return out
}

func monthlySeries(orders []models.Order, w Window, loc *time.Location) []MonthlyPoint {
	first := startOfMonth(w.End).AddDate(0, -(monthsInSeries - 1), 0)

	points := make([]MonthlyPoint, monthsInSeries)
	index := make(map[string]int, monthsInSeries)
	for i := range points {
		m := first.AddDate(0, i, 0)
		key := m.Format("2006-01")
		index[key] = i
		points[i] = MonthlyPoint{
			Month: key,
			Label: monthAbbrev[m.Month()-1] + "/" + m.Format("06"),
		}
	}

	for _, o := range orders {
		i, ok := index[o.Date.In(loc).Format("2006-01")]
		if !ok {
			continue
		}
		switch o.Type {
		case models.TypeOrder:
			points[i].Total = points[i].Total.Add(o.Total)
			points[i].OrderCount++
		case models.TypeQuote:
			points[i].QuoteCount++
		}
	}
	for i := range points {
		points[i].AverageTicket = ratio(points[i].Total, points[i].OrderCount)
	}
	return points
}
