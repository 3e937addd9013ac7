package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/utils"
)

// UploadController stores the company logo and serves uploaded images
type UploadController struct {
	uploadDir string
}

func NewUploadController(uploadDir string) *UploadController {
	return &UploadController{uploadDir: uploadDir}
}

// UploadLogo handles POST /api/v1/settings/logo (admin) - multipart field "logo"
func (ctl *UploadController) UploadLogo(c *gin.Context) {
	fileHeader, err := c.FormFile("logo")
	if err != nil {
		respondValidation(c, "Logo file is required", err.Error())
		return
	}

	if err := utils.ValidateImageFile(fileHeader); err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
		return
	}

	if err := utils.SaveUploadedFile(fileHeader, ctl.uploadDir, utils.LogoFileName); err != nil {
		log.Printf("Failed to save logo: %v", err)
		respondError(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to save logo")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"url": utils.GetUploadURL(utils.LogoFileName)})
}

// GetUploadedImage handles GET /api/v1/uploads/:filename - serves uploaded PNG images
func (ctl *UploadController) GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	if filename == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Prevent directory traversal
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	if strings.ToLower(filepath.Ext(filename)) != utils.AllowedImageFormat {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only PNG files are supported")
		return
	}

	filePath := filepath.Join(ctl.uploadDir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(filePath)
}
