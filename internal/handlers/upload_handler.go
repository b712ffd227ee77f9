package handlers

import (
	"net/http"

	"github.com/01moynul/storefront-golang/internal/storage"
	"github.com/gin-gonic/gin"
)

// UploadFile handles POST /api/upload
// It stores the "file" field through the configured storage and returns its URL.
func (h *Handlers) UploadFile(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	// 2. Save it under a unique name
	url, err := storage.SaveFile(c.Request.Context(), h.Storage, file)
	if err != nil {
		internalError(c, err, "Failed to save file")
		return
	}

	// 3. Return the public URL
	c.JSON(http.StatusOK, gin.H{"url": url})
}
