package data

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icancodefyi/sarthi-ai/internal/api/response"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

// Handler serves dataset upload and management
type Handler struct {
	datasets       *service.DatasetService
	maxUploadBytes int64
}

func NewHandler(datasets *service.DatasetService, maxUploadBytes int64) *Handler {
	return &Handler{datasets: datasets, maxUploadBytes: maxUploadBytes}
}

// Upload handles multipart CSV uploads
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "No file provided")
		return
	}

	// Extension is checked before the body is read
	if err := service.CheckFilename(file.Filename); err != nil {
		response.Error(c, err, "Internal server error")
		return
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		response.Error(c, service.ErrFileTooLarge, "Internal server error")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}

	dataset, err := h.datasets.Upload(c.Request.Context(), service.UploadInput{
		UserID:   response.UserID(c),
		Filename: file.Filename,
		Category: model.DatasetCategory(c.PostForm("category")),
		Content:  content,
	})
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, model.UploadResponse{
		Success:   true,
		DatasetID: dataset.ID,
		Message:   "Dataset uploaded. Analytics processing started.",
	})
}

// List returns the user's latest datasets
func (h *Handler) List(c *gin.Context) {
	datasets, err := h.datasets.List(c.Request.Context(), response.UserID(c))
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"datasets": datasets})
}

// Get returns a single dataset
func (h *Handler) Get(c *gin.Context) {
	dataset, err := h.datasets.Get(c.Request.Context(), response.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"dataset": dataset})
}

// Delete deletes a dataset
func (h *Handler) Delete(c *gin.Context) {
	err := h.datasets.Delete(c.Request.Context(), response.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
