package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/services"
)

// ClientRequest represents the request body for creating or updating a client
type ClientRequest struct {
	Name          string            `json:"name" binding:"required"`
	Document      string            `json:"document"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email" binding:"omitempty,email"`
	Address       string            `json:"address"`
	Type          models.ClientType `json:"type" binding:"omitempty,oneof=PF PJ"`
	InternalNotes string            `json:"internal_notes"`
}

func (r ClientRequest) toModel(id string) models.Client {
	return models.Client{
		ID:            id,
		Name:          r.Name,
		Document:      r.Document,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		Type:          r.Type,
		InternalNotes: r.InternalNotes,
	}
}

// ClientController serves the customer register
type ClientController struct {
	clients *services.ClientService
}

func NewClientController(clients *services.ClientService) *ClientController {
	return &ClientController{clients: clients}
}

// List handles GET /api/v1/clients?search=
func (ctl *ClientController) List(c *gin.Context) {
	clients, err := ctl.clients.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondServiceError(c, err, "CLIENT_NOT_FOUND", "list clients")
		return
	}
	respondOK(c, http.StatusOK, clients)
}

// Get handles GET /api/v1/clients/:id
func (ctl *ClientController) Get(c *gin.Context) {
	client, err := ctl.clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "CLIENT_NOT_FOUND", "load client")
		return
	}
	respondOK(c, http.StatusOK, client)
}

// Create handles POST /api/v1/clients
func (ctl *ClientController) Create(c *gin.Context) {
	ctl.save(c, "")
}

// Update handles PUT /api/v1/clients/:id. Unknown ids are created.
func (ctl *ClientController) Update(c *gin.Context) {
	ctl.save(c, c.Param("id"))
}

func (ctl *ClientController) save(c *gin.Context, id string) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client := req.toModel(id)
	created, err := ctl.clients.Save(c.Request.Context(), caller, &client)
	if err != nil {
		respondServiceError(c, err, "CLIENT_NOT_FOUND", "save client")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondOK(c, status, client)
}

// Delete handles DELETE /api/v1/clients/:id
func (ctl *ClientController) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	if err := ctl.clients.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondServiceError(c, err, "CLIENT_NOT_FOUND", "delete client")
		return
	}
	c.Status(http.StatusNoContent)
}
