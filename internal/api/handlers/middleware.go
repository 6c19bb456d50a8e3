package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/api/responses"
)

// LimitUploadSize rejects request bodies larger than maxBytes with 413. Bodies without a
// declared length are cut off while they are read.
func LimitUploadSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			responses.Error(c, http.StatusRequestEntityTooLarge, tooLargeMessage(maxBytes))
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func tooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("File too large: uploads are limited to %d MB", maxBytes>>20)
}
