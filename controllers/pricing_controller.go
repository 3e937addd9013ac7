package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/pricing"
)

// PricingPreviewRequest carries the lines being edited in an unsaved quote
type PricingPreviewRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// PricingPreviewResponse is the priced result of PricingPreviewRequest
type PricingPreviewResponse struct {
	Items  []pricing.Breakdown `json:"items"`
	Totals pricing.Totals      `json:"totals"`
}

// PreviewPricing handles POST /api/v1/pricing/preview. Nothing is stored.
func PreviewPricing(c *gin.Context) {
	var req PricingPreviewRequest
	if !bindJSON(c, &req) {
		return
	}

	lines := make([]pricing.Line, len(req.Items))
	resp := PricingPreviewResponse{Items: make([]pricing.Breakdown, len(req.Items))}
	for i, item := range req.Items {
		line := item.toModel().Line()
		if line.DiscountType == "" {
			line.DiscountType = pricing.DiscountPercentage
		}
		if err := pricing.Validate(line); err != nil {
			respondValidation(c, "Invalid request data", fmt.Sprintf("items[%d]: %v", i, err))
			return
		}
		lines[i] = line
		resp.Items[i] = pricing.Calculate(line)
	}
	resp.Totals = pricing.Summarize(lines)

	respondOK(c, http.StatusOK, resp)
}
