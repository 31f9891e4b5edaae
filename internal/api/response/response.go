// Package response writes JSON error bodies shared by all handlers.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/service"
)

// UserIDKey is the gin context key holding the acting user id
const UserIDKey = "user_id"

var messages = []struct {
	err    error
	status int
	msg    string
}{
	{service.ErrDatasetNotFound, http.StatusNotFound, "Dataset not found"},
	{service.ErrReportNotFound, http.StatusNotFound, "Report not found"},
	{service.ErrFarmerNotFound, http.StatusNotFound, "Aadhaar number not found in records"},
	{service.ErrAnalyticsNotReady, http.StatusBadRequest, "Analytics not ready yet. Wait for processing to complete."},
	{service.ErrNarrativeNotReady, http.StatusBadRequest, "Run AI interpretation first before generating a report"},
	{service.ErrNoCSVContent, http.StatusBadRequest, "No CSV content stored for this dataset"},
	{service.ErrNotCSV, http.StatusBadRequest, "Only CSV files are supported"},
	{service.ErrEmptyFile, http.StatusBadRequest, "No file provided"},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "File too large"},
}

// Error writes {"error": ...} for err. Known errors map to 4xx with a
// specific message; anything else is logged and answered with fallback.
func Error(c *gin.Context, err error, fallback string) {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": m.msg})
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	case errors.Is(err, service.ErrPrecondition), errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zap.L().Error(fallback,
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

// BadRequest writes a 400 with msg
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// UserID returns the acting user set by the auth middleware
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
