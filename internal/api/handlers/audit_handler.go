// internal/api/handlers/audit_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradewindhq/planboard/internal/domain"
	"github.com/tradewindhq/planboard/internal/service"
)

type AuditHandler struct {
	auditService *service.AuditService
}

func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetReport returns the full weekly audit report for one SKU. The optional
// shipping_weeks query overrides the stored shipping lead time for this
// request only.
func (h *AuditHandler) GetReport(c *gin.Context) {
	sku := strings.TrimSpace(c.Param("sku"))
	if sku == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		return
	}

	var override *int
	if raw := strings.TrimSpace(c.Query("shipping_weeks")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shipping_weeks must be an integer"})
			return
		}
		override = &v
	}

	report, err := h.auditService.ComputeReport(c.Request.Context(), sku, override)
	if err != nil {
		if domain.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute audit report"})
		return
	}

	c.JSON(http.StatusOK, report)
}
