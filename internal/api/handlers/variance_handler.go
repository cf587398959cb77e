// internal/api/handlers/variance_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradewindhq/planboard/internal/domain"
	"github.com/tradewindhq/planboard/internal/service"
)

type VarianceHandler struct {
	varianceService *service.VarianceService
}

func NewVarianceHandler(varianceService *service.VarianceService) *VarianceHandler {
	return &VarianceHandler{varianceService: varianceService}
}

// ListVariances returns the open-balance overview: detection runs first so
// the list reflects the current transactional data.
func (h *VarianceHandler) ListVariances(c *gin.Context) {
	filter := domain.VarianceFilter{
		SKU:        strings.TrimSpace(c.Query("sku")),
		Status:     domain.VarianceStatus(strings.TrimSpace(c.Query("status"))),
		Priority:   domain.VariancePriority(strings.TrimSpace(c.Query("priority"))),
		SourceType: domain.VarianceSource(strings.TrimSpace(c.Query("source_type"))),
	}
	if raw := strings.TrimSpace(c.Query("min_pending_qty")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_pending_qty must be a non-negative integer"})
			return
		}
		filter.MinPendingQty = v
	}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
		return
	}
	if filter.SourceType != "" && !filter.SourceType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source_type value"})
		return
	}

	overview, err := h.varianceService.Overview(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch variances"})
		return
	}

	c.JSON(http.StatusOK, overview)
}

type resolveRequest struct {
	Action      string `json:"action" binding:"required"`
	PlannedWeek string `json:"planned_week"`
	Reason      string `json:"reason"`
}

// ResolveVariance applies one resolution action (defer or short_close) to a
// single variance record.
func (h *VarianceHandler) ResolveVariance(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid variance id"})
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payload := service.ResolvePayload{PlannedWeek: req.PlannedWeek, Reason: req.Reason}
	if err := h.varianceService.Resolve(c.Request.Context(), id, service.ResolveAction(req.Action), payload); err != nil {
		if domain.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "variance not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve variance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "variance resolved"})
}

type batchResolveRequest struct {
	IDs         []int64 `json:"ids" binding:"required"`
	Action      string  `json:"action" binding:"required"`
	PlannedWeek string  `json:"planned_week"`
	Reason      string  `json:"reason"`
}

// BatchResolveVariances applies one action to many records. Items fail
// independently; the response reports the per-item outcome.
func (h *VarianceHandler) BatchResolveVariances(c *gin.Context) {
	var req batchResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids must not be empty"})
		return
	}

	payload := service.ResolvePayload{PlannedWeek: req.PlannedWeek, Reason: req.Reason}
	result, err := h.varianceService.BatchResolve(c.Request.Context(), req.IDs, service.ResolveAction(req.Action), payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve variances"})
		return
	}

	c.JSON(http.StatusOK, result)
}
