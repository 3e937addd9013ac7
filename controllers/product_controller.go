package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/pricing"
	"github.com/madeiras-ouro-preto/sales-api/services"
	"github.com/shopspring/decimal"
)

// ProductRequest represents the request body for creating or updating a product.
// The legacy price field is output only.
type ProductRequest struct {
	Code       string           `json:"code"`
	Name       string           `json:"name" binding:"required"`
	Category   string           `json:"category"`
	Unit       pricing.Unit     `json:"unit" binding:"required"`
	PriceBruto decimal.Decimal  `json:"price_bruto"`
	PriceBenef decimal.Decimal  `json:"price_benef"`
	Cost       *decimal.Decimal `json:"cost"`
}

func (r ProductRequest) toModel(id string) models.Product {
	return models.Product{
		ID:         id,
		Code:       r.Code,
		Name:       r.Name,
		Category:   r.Category,
		Unit:       r.Unit,
		PriceBruto: r.PriceBruto,
		PriceBenef: r.PriceBenef,
		Cost:       r.Cost,
	}
}

// ProductController serves the catalog
type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// List handles GET /api/v1/products?category=
func (ctl *ProductController) List(c *gin.Context) {
	products, err := ctl.products.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondServiceError(c, err, "PRODUCT_NOT_FOUND", "list products")
		return
	}
	respondOK(c, http.StatusOK, products)
}

// Get handles GET /api/v1/products/:id
func (ctl *ProductController) Get(c *gin.Context) {
	product, err := ctl.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "PRODUCT_NOT_FOUND", "load product")
		return
	}
	respondOK(c, http.StatusOK, product)
}

// Create handles POST /api/v1/products
func (ctl *ProductController) Create(c *gin.Context) {
	ctl.save(c, "")
}

// Update handles PUT /api/v1/products/:id
func (ctl *ProductController) Update(c *gin.Context) {
	ctl.save(c, c.Param("id"))
}

func (ctl *ProductController) save(c *gin.Context, id string) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product := req.toModel(id)
	created, err := ctl.products.Save(c.Request.Context(), caller, &product)
	if err != nil {
		respondServiceError(c, err, "PRODUCT_NOT_FOUND", "save product")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondOK(c, status, product)
}

// Delete handles DELETE /api/v1/products/:id
func (ctl *ProductController) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	if err := ctl.products.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondServiceError(c, err, "PRODUCT_NOT_FOUND", "delete product")
		return
	}
	c.Status(http.StatusNoContent)
}
