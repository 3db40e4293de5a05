package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Logger *zap.Logger

	// Request endpoints
	ListRequestsHandler    gin.HandlerFunc
	GetRequestHandler      gin.HandlerFunc
	CreateRequestHandler   gin.HandlerFunc
	AcceptRequestHandler   gin.HandlerFunc
	StartServiceHandler    gin.HandlerFunc
	CompleteServiceHandler gin.HandlerFunc

	// Provider metrics endpoints
	GetPerformanceHandler gin.HandlerFunc
	GetEarningsHandler    gin.HandlerFunc
	GetReviewsHandler     gin.HandlerFunc
}

// NewHandlerBundle wires the handler methods into a bundle for the router.
func NewHandlerBundle(requests *RequestHandler, metricsHandler *MetricsHandler, logger *zap.Logger) *HandlerBundle {
	return &HandlerBundle{
		Logger: logger,

		ListRequestsHandler:    requests.ListRequestsHandler,
		GetRequestHandler:      requests.GetRequestHandler,
		CreateRequestHandler:   requests.CreateRequestHandler,
		AcceptRequestHandler:   requests.AcceptRequestHandler,
		StartServiceHandler:    requests.StartServiceHandler,
		CompleteServiceHandler: requests.CompleteServiceHandler,

		GetPerformanceHandler: metricsHandler.GetPerformanceHandler,
		GetEarningsHandler:    metricsHandler.GetEarningsHandler,
		GetReviewsHandler:     metricsHandler.GetReviewsHandler,
	}
}
