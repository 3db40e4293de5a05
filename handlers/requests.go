package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"repairhub/models"
	"repairhub/services/claim"
	"repairhub/services/feed"
	"repairhub/utils"
)

// RequestHandler serves the provider-facing request endpoints.
type RequestHandler struct {
	Claims claim.ClaimService
	Feed   feed.FeedService
}

func NewRequestHandler(claims claim.ClaimService, feedSvc feed.FeedService) *RequestHandler {
	return &RequestHandler{Claims: claims, Feed: feedSvc}
}

// ListRequestsHandler handles GET /api/requests?filter=.
func (h *RequestHandler) ListRequestsHandler(c *gin.Context) {
	providerID, _, ok := providerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	filter, err := feed.ParseFilter(c.Query("filter"))
	if err != nil {
		writeError(c, err)
		return
	}

	requests, err := h.Feed.ListRequests(c.Request.Context(), providerID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// GetRequestHandler handles GET /api/requests/:id.
func (h *RequestHandler) GetRequestHandler(c *gin.Context) {
	req, err := h.Claims.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// CreateRequestHandler handles POST /api/requests.
func (h *RequestHandler) CreateRequestHandler(c *gin.Context) {
	var input models.NewRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	req, err := h.Claims.CreateRequest(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// AcceptRequestHandler handles POST /api/requests/:id/accept.
func (h *RequestHandler) AcceptRequestHandler(c *gin.Context) {
	logger := getLogger(c)
	providerID, providerName, ok := providerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	requestID := c.Param("id")

	req, err := h.Claims.AcceptRequest(c.Request.Context(), requestID, providerID, providerName)
	if err != nil {
		logger.Info("Accept rejected", zap.String("requestId", requestID), zap.String("providerId", providerID), zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// StartServiceHandler handles POST /api/requests/:id/start.
func (h *RequestHandler) StartServiceHandler(c *gin.Context) {
	logger := getLogger(c)
	providerID, _, ok := providerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	requestID := c.Param("id")

	req, err := h.Claims.StartService(c.Request.Context(), requestID, providerID)
	if err != nil {
		logger.Info("Start rejected", zap.String("requestId", requestID), zap.String("providerId", providerID), zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// CompleteServiceHandler handles POST /api/requests/:id/complete with the settlement body.
func (h *RequestHandler) CompleteServiceHandler(c *gin.Context) {
	logger := getLogger(c)
	providerID, _, ok := providerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	var input models.CompleteServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	requestID := c.Param("id")

	req, err := h.Claims.CompleteService(c.Request.Context(), requestID, providerID, *input.PaymentAmount, input.PaymentMethod)
	if err != nil {
		logger.Info("Complete rejected", zap.String("requestId", requestID), zap.String("providerId", providerID), zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
