package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icancodefyi/sarthi-ai/internal/api/auth"
	"github.com/icancodefyi/sarthi-ai/internal/api/data"
	"github.com/icancodefyi/sarthi-ai/internal/api/farmer"
	"github.com/icancodefyi/sarthi-ai/internal/api/proxy"
	"github.com/icancodefyi/sarthi-ai/internal/api/report"
	"github.com/icancodefyi/sarthi-ai/internal/api/simulate"
	"github.com/icancodefyi/sarthi-ai/internal/api/verify"
)

// Handlers groups the route handlers
type Handlers struct {
	Auth     *auth.Handler
	Data     *data.Handler
	Report   *report.Handler
	Verify   *verify.Handler
	Proxy    *proxy.Handler
	Simulate *simulate.Handler
	Farmer   *farmer.Handler
}

// SetupRouter configures all routes
func SetupRouter(r *gin.Engine, h *Handlers) {
	// CORS middleware
	r.Use(CORSMiddleware())

	// Health check
	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Sarthi AI API is running",
			"version": "1.0.0",
		})
	}
	r.GET("/", health)
	r.GET("/health", health)

	// Public verification (no authentication required)
	r.GET("/api/verify/:reportId", h.Verify.RateLimit(), h.Verify.Verify)

	// API routes acting as the current user
	api := r.Group("/api")
	api.Use(h.Auth.Middleware())
	{
		api.GET("/auth/me", h.Auth.GetCurrentUser)

		api.POST("/upload", h.Data.Upload)

		// Dataset management
		datasetGroup := api.Group("/datasets")
		{
			datasetGroup.GET("", h.Data.List)
			datasetGroup.GET("/:id", h.Data.Get)
			datasetGroup.DELETE("/:id", h.Data.Delete)
			datasetGroup.POST("/:id/interpret", h.Proxy.Interpret)
			datasetGroup.POST("/:id/simulate", h.Simulate.Simulate)
			datasetGroup.POST("/:id/report", h.Report.Generate)
			datasetGroup.POST("/:id/link-farmer", h.Farmer.Link)
			datasetGroup.DELETE("/:id/link-farmer", h.Farmer.Unlink)
		}

		// Report management
		reportGroup := api.Group("/reports")
		{
			reportGroup.GET("", h.Report.GetReports)
			reportGroup.GET("/:reportId", h.Report.GetReportDetail)
		}

		api.GET("/farmer/:aadhaar", h.Farmer.Lookup)

		api.GET("/llm/status", h.Proxy.GetModelConcurrencyStatus)
	}
}

// CORSMiddleware provides CORS support
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
