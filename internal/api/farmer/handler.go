package farmer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icancodefyi/sarthi-ai/internal/api/response"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

type Handler struct {
	farmers *service.FarmerService
}

func NewHandler(farmers *service.FarmerService) *Handler {
	return &Handler{farmers: farmers}
}

// Lookup finds a farmer by Aadhaar number
func (h *Handler) Lookup(c *gin.Context) {
	farmer, err := h.farmers.Lookup(c.Request.Context(), c.Param("aadhaar"))
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"farmer": farmer})
}

// Link attaches a farmer to a dataset
func (h *Handler) Link(c *gin.Context) {
	var req model.LinkFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "aadhaar is required")
		return
	}

	farmer, err := h.farmers.Link(c.Request.Context(), response.UserID(c), c.Param("id"), req.Aadhaar)
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "farmer": farmer})
}

// Unlink removes the farmer linked to a dataset
func (h *Handler) Unlink(c *gin.Context) {
	if err := h.farmers.Unlink(c.Request.Context(), response.UserID(c), c.Param("id")); err != nil {
		response.Error(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
