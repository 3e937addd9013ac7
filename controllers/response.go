package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/middleware"
	"github.com/madeiras-ouro-preto/sales-api/services"
)

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidation(c *gin.Context, message string, details string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": message,
			"details": details,
		},
	})
}

// respondServiceError maps service errors onto the API envelope.
// notFoundCode names the missing resource, e.g. ORDER_NOT_FOUND.
func respondServiceError(c *gin.Context, err error, notFoundCode, action string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, "Invalid request data", verr.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundCode, "Resource not found")
	case errors.Is(err, services.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, "PERMISSION_DENIED", "You do not have access to this resource")
	case errors.Is(err, services.ErrConflict):
		respondError(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, services.ErrStorageNotConfigured):
		respondError(c, http.StatusServiceUnavailable, "STORAGE_NOT_CONFIGURED", "Document storage is not configured")
	default:
		log.Printf("Failed to %s: %v", action, err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to "+action)
	}
}

// requireCaller returns the request caller or writes a 401.
func requireCaller(c *gin.Context) (access.Caller, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
	}
	return caller, ok
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondValidation(c, "Invalid request data", err.Error())
		return false
	}
	return true
}
