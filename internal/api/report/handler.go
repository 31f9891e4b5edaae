package report

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icancodefyi/sarthi-ai/internal/api/response"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

// Handler serves the owner-facing report endpoints
type Handler struct {
	reports      *service.ReportService
	verification *service.VerificationService
}

func NewHandler(reports *service.ReportService, verification *service.VerificationService) *Handler {
	return &Handler{reports: reports, verification: verification}
}

// Generate certifies a dataset's analytics and narrative into a new report
func (h *Handler) Generate(c *gin.Context) {
	report, err := h.reports.Generate(c.Request.Context(), response.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err, "Report generation failed")
		return
	}

	c.JSON(http.StatusCreated, model.GenerateReportResponse{
		Success:  true,
		ReportID: report.ReportID,
		Report:   report,
	})
}

// GetReports returns all reports for current user
func (h *Handler) GetReports(c *gin.Context) {
	reports, err := h.verification.ListReports(c.Request.Context(), response.UserID(c))
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// GetReportDetail returns a report with a freshly computed verdict
func (h *Handler) GetReportDetail(c *gin.Context) {
	detail, err := h.verification.GetReport(c.Request.Context(), response.UserID(c), c.Param("reportId"))
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, detail)
}
