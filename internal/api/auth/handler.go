package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/api/response"
	"github.com/icancodefyi/sarthi-ai/internal/directory"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

// Handler serves identity endpoints
type Handler struct {
	auth  *service.AuthService
	users directory.UserDirectory
}

func NewHandler(auth *service.AuthService, users directory.UserDirectory) *Handler {
	return &Handler{auth: auth, users: users}
}

// Middleware sets the acting user. Requests without a token act as the
// default user; a bad token is rejected.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := h.auth.ResolveUser(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			case errors.Is(err, service.ErrUserNotFound):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			default:
				zap.L().Error("Failed to resolve user", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			c.Abort()
			return
		}

		// Set user context
		c.Set(response.UserIDKey, userID)
		c.Next()
	}
}

// GetCurrentUser returns the acting user's profile
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), response.UserID(c))
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
