package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"repairhub/models"
	"repairhub/services/metrics"
	"repairhub/utils"
)

// MetricsHandler serves the calling provider's earnings and rating views.
type MetricsHandler struct {
	Service metrics.MetricsService
}

func NewMetricsHandler(svc metrics.MetricsService) *MetricsHandler {
	return &MetricsHandler{Service: svc}
}

// GetPerformanceHandler handles GET /api/providers/me/performance?period=&order=.
func (h *MetricsHandler) GetPerformanceHandler(c *gin.Context) {
	providerID, _, ok := providerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	period := models.PeriodGranularity(c.DefaultQuery("period", string(models.PeriodMonth)))

	rollup, err := h.Service.GetPerformanceRollup(c.Request.Context(), providerID, period)
	if err != nil {
		writeError(c, err)
		return
	}
	if c.Query("order") == "chronological" {
		sorted := rollup.SortedChronologically()
		rollup = &sorted
	}
	c.JSON(http.StatusOK, rollup)
}

// GetEarningsHandler handles GET /api/providers/me/earnings.
func (h *MetricsHandler) GetEarningsHandler(c *gin.Context) {
	providerID, _, ok := providerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	summary, err := h.Service.GetEarningsSummary(c.Request.Context(), providerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetReviewsHandler handles GET /api/providers/me/reviews?limit=.
func (h *MetricsHandler) GetReviewsHandler(c *gin.Context) {
	providerID, _, ok := providerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	limit := metrics.DefaultReviewLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "limit must be a positive integer")
			return
		}
		limit = n
	}

	reviews, err := h.Service.GetLatestReviews(c.Request.Context(), providerID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
