package middleware

import (
	"time"

	"contract-explorer.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerMiddleware logs HTTP requests using the structured logger
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		ctx := c.Request.Context()
		logger.LogRequest(ctx, c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
		for _, e := range c.Errors {
			logger.Warn(ctx, "Handler error", zap.String("path", c.Request.URL.Path), zap.Error(e.Err))
		}
	}
}
