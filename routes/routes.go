package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"repairhub/config"
	"repairhub/handlers"
	"repairhub/middleware"
	"repairhub/utils"
)

// RegisterRequestRoutes registers the request feed and lifecycle endpoints.
func RegisterRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requests")
	{
		// Intake is public; the customer-facing app posts new requests here.
		api.POST("", hb.CreateRequestHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthProviderMiddleware(hb.Logger))
		protected.GET("", hb.ListRequestsHandler)
		protected.GET("/:id", hb.GetRequestHandler)
		protected.POST("/:id/accept", hb.AcceptRequestHandler)
		protected.POST("/:id/start", hb.StartServiceHandler)
		protected.POST("/:id/complete", hb.CompleteServiceHandler)
	}
}

// RegisterProviderRoutes registers the calling provider's dashboard endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers/me")
	{
		api.Use(middleware.JWTAuthProviderMiddleware(hb.Logger))
		api.GET("/performance", hb.GetPerformanceHandler)
		api.GET("/earnings", hb.GetEarningsHandler)
		api.GET("/reviews", hb.GetReviewsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "message": "Hi, I'm RepairHub"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(utils.ErrorHandler())
	r.Use(handlers.RequestLogger(hb.Logger))
	r.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin, hb.Logger))

	RegisterRequestRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterHealthRoute(r)
}
