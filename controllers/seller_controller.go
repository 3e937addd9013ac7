package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/services"
)

// SellerRequest represents the request body for creating or updating a seller
type SellerRequest struct {
	Name     string `json:"name" binding:"required"`
	WhatsApp string `json:"whatsapp"`
	IsActive *bool  `json:"is_active"`
}

// SellerController serves the seller directory
type SellerController struct {
	sellers *services.SellerService
}

func NewSellerController(sellers *services.SellerService) *SellerController {
	return &SellerController{sellers: sellers}
}

// List handles GET /api/v1/sellers?active=true
func (ctl *SellerController) List(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))
	sellers, err := ctl.sellers.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondServiceError(c, err, "SELLER_NOT_FOUND", "list sellers")
		return
	}
	respondOK(c, http.StatusOK, sellers)
}

// Create handles POST /api/v1/sellers (admin)
func (ctl *SellerController) Create(c *gin.Context) {
	ctl.save(c, "")
}

// Update handles PUT /api/v1/sellers/:id (admin)
func (ctl *SellerController) Update(c *gin.Context) {
	ctl.save(c, c.Param("id"))
}

func (ctl *SellerController) save(c *gin.Context, id string) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req SellerRequest
	if !bindJSON(c, &req) {
		return
	}

	seller := models.Seller{ID: id, Name: req.Name, WhatsApp: req.WhatsApp, IsActive: true}
	if req.IsActive != nil {
		seller.IsActive = *req.IsActive
	}

	created, err := ctl.sellers.Save(c.Request.Context(), caller, &seller)
	if err != nil {
		respondServiceError(c, err, "SELLER_NOT_FOUND", "save seller")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondOK(c, status, seller)
}

// Delete handles DELETE /api/v1/sellers/:id (admin)
func (ctl *SellerController) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	if err := ctl.sellers.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondServiceError(c, err, "SELLER_NOT_FOUND", "delete seller")
		return
	}
	c.Status(http.StatusNoContent)
}
