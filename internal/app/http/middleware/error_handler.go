package middleware

import (
	"kashpages/internal/apierr"
	"kashpages/internal/platform/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler writes the last error a handler attached with c.Error as {"error": message}.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		appErr := apierr.From(err)

		if appErr.Code >= 500 {
			log.Error("Request failed", "path", c.FullPath(), "status", appErr.Code, "error", err)
		} else {
			log.Debug("Request rejected", "path", c.FullPath(), "status", appErr.Code, "error", err)
		}
		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
	}
}
