package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/dto"
)

// BodyLimit rejects bodies declared larger than maxBytes and caps the reader
// for the rest. Ledger uploads are one unit-month, so a few MB is plenty.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
