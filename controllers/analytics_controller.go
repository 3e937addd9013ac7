package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/analytics"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/services"
	"github.com/madeiras-ouro-preto/sales-api/utils"
)

// AnalyticsController serves the dashboard and the reports page
type AnalyticsController struct {
	orders  *services.OrderService
	sellers *services.SellerService
	loc     *time.Location
	now     func() time.Time
}

func NewAnalyticsController(orders *services.OrderService, sellers *services.SellerService, loc *time.Location) *AnalyticsController {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsController{orders: orders, sellers: sellers, loc: loc, now: time.Now}
}

// Dashboard handles GET /api/v1/analytics/dashboard
func (ctl *AnalyticsController) Dashboard(c *gin.Context) {
	ctl.report(c, analytics.TopProductsDashboard)
}

// Reports handles GET /api/v1/analytics/reports
func (ctl *AnalyticsController) Reports(c *gin.Context) {
	ctl.report(c, analytics.TopProductsReport)
}

// report reads ?period=&start=&end=&day=&seller_id=&type= and computes the views
func (ctl *AnalyticsController) report(c *gin.Context, topProducts int) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	req := analytics.WindowRequest{Period: analytics.Period(c.Query("period"))}
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"start", &req.Start},
		{"end", &req.End},
		{"day", &req.Day},
	} {
		t, err := utils.ParseDate(c.Query(p.name), ctl.loc)
		if err != nil {
			respondValidation(c, "Invalid "+p.name+" date", err.Error())
			return
		}
		*p.dst = t
	}

	now := ctl.now()
	window, err := analytics.ResolveWindow(req, now, ctl.loc)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidWindow) {
			respondValidation(c, "Invalid report window", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve report window")
		return
	}

	from, to := window.FetchRange(now)
	scoped, err := ctl.orders.List(c.Request.Context(), caller, services.OrderFilter{From: from, To: to})
	if err != nil {
		respondServiceError(c, err, "ORDER_NOT_FOUND", "load orders")
		return
	}
	sellers, err := ctl.sellers.List(c.Request.Context(), false)
	if err != nil {
		respondServiceError(c, err, "SELLER_NOT_FOUND", "load sellers")
		return
	}

	report := analytics.Compute(scoped, sellers, analytics.Filters{
		Window:   window,
		SellerID: c.Query("seller_id"),
		Type:     models.OrderType(c.Query("type")),
	}, analytics.Options{
		Now:         now,
		Location:    ctl.loc,
		TopProducts: topProducts,
	})
	respondOK(c, http.StatusOK, report)
}
