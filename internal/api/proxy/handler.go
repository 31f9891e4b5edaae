package proxy

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/api/response"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/redis"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

// Handler serves the LLM-backed endpoints
type Handler struct {
	interpret      *service.InterpretService
	slots          *redis.SlotPool
	modelName      string
	maxConcurrency int
}

func NewHandler(interpret *service.InterpretService, slots *redis.SlotPool, modelName string, maxConcurrency int) *Handler {
	return &Handler{
		interpret:      interpret,
		slots:          slots,
		modelName:      modelName,
		maxConcurrency: maxConcurrency,
	}
}

// Interpret runs the narrator over a dataset's analytics
func (h *Handler) Interpret(c *gin.Context) {
	datasetID := c.Param("id")

	zap.L().Info("Interpret request received",
		zap.String("dataset_id", datasetID),
		zap.String("model", h.modelName))

	report, err := h.interpret.Interpret(c.Request.Context(), response.UserID(c), datasetID)
	if err != nil {
		response.Error(c, err, "AI interpretation failed")
		return
	}

	c.JSON(http.StatusOK, model.InterpretResponse{Success: true, AIReport: report})
}

// GetModelConcurrencyStatus returns model concurrency status
func (h *Handler) GetModelConcurrencyStatus(c *gin.Context) {
	status := h.status(c.Request.Context())
	c.JSON(http.StatusOK, status)
}

func (h *Handler) status(ctx context.Context) model.ConcurrencyStatus {
	status := model.ConcurrencyStatus{
		Model:          h.modelName,
		MaxConcurrency: h.maxConcurrency,
		AvailableSlots: h.maxConcurrency,
	}
	if h.slots == nil {
		status.Error = "Redis not configured"
		return status
	}

	currentCount, err := h.slots.Current(ctx, fmt.Sprintf("llm_concurrency:%s", h.modelName))
	if err != nil {
		status.Error = "Redis connection failed"
		return status
	}

	status.CurrentConcurrency = currentCount
	status.AvailableSlots = max(0, h.maxConcurrency-currentCount)
	return status
}
