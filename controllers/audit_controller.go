package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/services"
)

// AuditController exposes the change history to administrators
type AuditController struct {
	audit *services.AuditService
}

func NewAuditController(audit *services.AuditService) *AuditController {
	return &AuditController{audit: audit}
}

// List handles GET /api/v1/audit-logs?table=&record_id=&limit=
func (ctl *AuditController) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondValidation(c, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	logs, err := ctl.audit.List(c.Request.Context(), services.AuditFilter{
		Table:    c.Query("table"),
		RecordID: c.Query("record_id"),
		Limit:    limit,
	})
	if err != nil {
		respondServiceError(c, err, "AUDIT_LOG_NOT_FOUND", "list audit logs")
		return
	}
	respondOK(c, http.StatusOK, logs)
}
