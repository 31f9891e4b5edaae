package simulate

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/api/response"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

// Handler serves what-if scenarios over a dataset
type Handler struct {
	simulations *service.SimulationService
}

func NewHandler(simulations *service.SimulationService) *Handler {
	return &Handler{simulations: simulations}
}

// Simulate runs a scenario. An empty body uses the defaults.
func (h *Handler) Simulate(c *gin.Context) {
	datasetID := c.Param("id")

	var req model.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid simulation parameters")
		return
	}
	params := req.Params()

	zap.L().Info("Simulation request received",
		zap.String("dataset_id", datasetID),
		zap.Int("forecast_periods", params.ForecastPeriods),
		zap.Float64("z_threshold", params.ZThreshold),
		zap.Float64("growth_adjustment", params.GrowthAdjustment))

	result, err := h.simulations.Simulate(c.Request.Context(), response.UserID(c), datasetID, params)
	if err != nil {
		response.Error(c, err, "Simulation failed")
		return
	}

	c.JSON(http.StatusOK, model.SimulateResponse{Success: true, Simulation: result})
}
