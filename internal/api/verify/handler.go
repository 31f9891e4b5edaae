// Package verify serves the public certificate check. It needs no
// authentication and is rate limited per client IP.
package verify

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icancodefyi/sarthi-ai/internal/api/response"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

type Handler struct {
	verification *service.VerificationService
	limiter      *service.VisitorRateLimit
}

func NewHandler(verification *service.VerificationService, limiter *service.VisitorRateLimit) *Handler {
	return &Handler{verification: verification, limiter: limiter}
}

// RateLimit rejects clients over their per-IP budget
func (h *Handler) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter != nil && !h.limiter.Check(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Verify recomputes a report's digest and returns the public verdict
func (h *Handler) Verify(c *gin.Context) {
	result, err := h.verification.Verify(c.Request.Context(), c.Param("reportId"))
	if err != nil {
		response.Error(c, err, "Verification failed")
		return
	}

	c.JSON(http.StatusOK, result)
}
