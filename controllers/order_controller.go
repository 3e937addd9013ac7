package controllers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/config"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/pricing"
	"github.com/madeiras-ouro-preto/sales-api/services"
	"github.com/madeiras-ouro-preto/sales-api/utils"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one line of an order request. Totals are never read from input.
type OrderItemRequest struct {
	ID            string               `json:"id"`
	ProductID     *string              `json:"product_id"`
	Description   string               `json:"description"`
	Quantity      decimal.Decimal      `json:"quantity"`
	UnitPrice     *decimal.Decimal     `json:"unit_price"` // nil takes the catalog price
	Unit          pricing.Unit         `json:"unit"`
	DiscountType  pricing.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal      `json:"discount_value"`
	LengthM       *decimal.Decimal     `json:"length_m"`
	WidthCM       *decimal.Decimal     `json:"width_cm"`
	Beneficiado   bool                 `json:"is_beneficiado"`
}

func (r OrderItemRequest) toModel() models.OrderItem {
	item := models.OrderItem{
		ID:            r.ID,
		ProductID:     r.ProductID,
		Description:   r.Description,
		Quantity:      r.Quantity,
		Unit:          r.Unit,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		LengthM:       r.LengthM,
		WidthCM:       r.WidthCM,
		Beneficiado:   r.Beneficiado,
	}
	if r.UnitPrice != nil {
		item.UnitPrice = *r.UnitPrice
	} else {
		item.PriceFromCatalog = r.ProductID != nil && *r.ProductID != ""
	}
	return item
}

// OrderRequest represents the request body for creating or updating a quote or order
type OrderRequest struct {
	ClientID      string             `json:"client_id"`
	ClientName    string             `json:"client_name"`
	SellerID      *string            `json:"seller_id"`
	Date          *time.Time         `json:"date"`
	Status        models.OrderStatus `json:"status"`
	Type          models.OrderType   `json:"type"`
	InternalNotes string             `json:"internal_notes"`
	CustomerNotes string             `json:"customer_notes"`
	Items         []OrderItemRequest `json:"items"`
}

func (r OrderRequest) toModel(id string) models.Order {
	order := models.Order{
		ID:            id,
		ClientID:      r.ClientID,
		ClientName:    r.ClientName,
		SellerID:      r.SellerID,
		Status:        r.Status,
		Type:          r.Type,
		InternalNotes: r.InternalNotes,
		CustomerNotes: r.CustomerNotes,
		Items:         make([]models.OrderItem, 0, len(r.Items)),
	}
	if r.Date != nil {
		order.Date = *r.Date
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, item.toModel())
	}
	return order
}

// WhatsAppResponse is returned by GET /orders/:id/whatsapp
type WhatsAppResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// OrderController serves quotes and orders and their exports
type OrderController struct {
	orders    *services.OrderService
	clients   *services.ClientService
	documents *services.DocumentService
	company   config.CompanyInfo
	loc       *time.Location
}

func NewOrderController(orders *services.OrderService, clients *services.ClientService, documents *services.DocumentService, company config.CompanyInfo, loc *time.Location) *OrderController {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderController{orders: orders, clients: clients, documents: documents, company: company, loc: loc}
}

// List handles GET /api/v1/orders?from=&to=&type=&status=&seller_id=&client_id=
func (ctl *OrderController) List(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	filter := services.OrderFilter{
		Type:     models.OrderType(c.Query("type")),
		Status:   models.OrderStatus(c.Query("status")),
		SellerID: c.Query("seller_id"),
		ClientID: c.Query("client_id"),
	}
	var err error
	if filter.From, err = utils.ParseDate(c.Query("from"), ctl.loc); err != nil {
		respondValidation(c, "Invalid from date", err.Error())
		return
	}
	if filter.To, err = utils.ParseDate(c.Query("to"), ctl.loc); err != nil {
		respondValidation(c, "Invalid to date", err.Error())
		return
	}
	if to := c.Query("to"); len(to) == len("2006-01-02") {
		filter.To = filter.To.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	scoped, err := ctl.orders.List(c.Request.Context(), caller, filter)
	if err != nil {
		respondServiceError(c, err, "ORDER_NOT_FOUND", "list orders")
		return
	}
	respondOK(c, http.StatusOK, scoped.Orders())
}

// Get handles GET /api/v1/orders/:id
func (ctl *OrderController) Get(c *gin.Context) {
	order, ok := ctl.load(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, order)
}

// Create handles POST /api/v1/orders
func (ctl *OrderController) Create(c *gin.Context) {
	ctl.save(c, "")
}

// Update handles PUT /api/v1/orders/:id. The item list replaces the stored one.
func (ctl *OrderController) Update(c *gin.Context) {
	ctl.save(c, c.Param("id"))
}

func (ctl *OrderController) save(c *gin.Context, id string) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req OrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order := req.toModel(id)
	created, err := ctl.orders.Save(c.Request.Context(), caller, &order)
	if err != nil {
		respondServiceError(c, err, "ORDER_NOT_FOUND", "save order")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondOK(c, status, order)
}

// Delete handles DELETE /api/v1/orders/:id
func (ctl *OrderController) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	if err := ctl.orders.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondServiceError(c, err, "ORDER_NOT_FOUND", "delete order")
		return
	}
	c.Status(http.StatusNoContent)
}

// Convert handles POST /api/v1/orders/:id/convert
func (ctl *OrderController) Convert(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	order, err := ctl.orders.Convert(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "ORDER_NOT_FOUND", "convert order")
		return
	}
	respondOK(c, http.StatusOK, order)
}

// PDF handles GET /api/v1/orders/:id/pdf and streams the document
func (ctl *OrderController) PDF(c *gin.Context) {
	order, ok := ctl.load(c)
	if !ok {
		return
	}

	pdf, err := ctl.documents.RenderPDF(c.Request.Context(), *order, ctl.client(c, *order))
	if err != nil {
		log.Printf("Failed to render PDF for order %s: %v", order.ID, err)
		respondError(c, http.StatusBadGateway, "PDF_ERROR", "Failed to generate PDF")
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(services.FileName(*order)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// PublishPDF handles POST /api/v1/orders/:id/pdf and returns a temporary download link
func (ctl *OrderController) PublishPDF(c *gin.Context) {
	order, ok := ctl.load(c)
	if !ok {
		return
	}

	doc, err := ctl.documents.Publish(c.Request.Context(), *order, ctl.client(c, *order))
	if err != nil {
		if errors.Is(err, services.ErrStorageNotConfigured) {
			respondServiceError(c, err, "ORDER_NOT_FOUND", "publish document")
			return
		}
		log.Printf("Failed to publish PDF for order %s: %v", order.ID, err)
		respondError(c, http.StatusBadGateway, "PDF_ERROR", "Failed to publish PDF")
		return
	}
	respondOK(c, http.StatusOK, doc)
}

// WhatsApp handles GET /api/v1/orders/:id/whatsapp?phone=
func (ctl *OrderController) WhatsApp(c *gin.Context) {
	order, ok := ctl.load(c)
	if !ok {
		return
	}

	phone := strings.TrimSpace(c.Query("phone"))
	if phone == "" {
		phone = ctl.company.WhatsApp
	}

	message := services.BuildWhatsAppMessage(*order, ctl.company.Name)
	respondOK(c, http.StatusOK, WhatsAppResponse{
		Message: message,
		URL:     services.WhatsAppURL(phone, message),
	})
}

func (ctl *OrderController) load(c *gin.Context) (*models.Order, bool) {
	caller, ok := requireCaller(c)
	if !ok {
		return nil, false
	}
	order, err := ctl.orders.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "ORDER_NOT_FOUND", "load order")
		return nil, false
	}
	return order, true
}

// client returns the register entry behind the order, or nil when there is none.
func (ctl *OrderController) client(c *gin.Context, order models.Order) *models.Client {
	if order.ClientID == "" {
		return nil
	}
	client, err := ctl.clients.Get(c.Request.Context(), order.ClientID)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			log.Printf("Failed to load client %s for order %s: %v", order.ClientID, order.ID, err)
		}
		return nil
	}
	return client
}
