package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/lostfound/backend/pkg/telemetry"
)

// ViewerHeader carries the authenticated user id, set by the auth gateway
const ViewerHeader = "X-User-ID"

const viewerKey = "viewer"

// viewerMiddleware stores the caller's user id, empty for anonymous requests
func viewerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(viewerKey, c.GetHeader(ViewerHeader))
		c.Next()
	}
}

// requireViewer rejects anonymous requests
func requireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewer(c) == "" {
			abort(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func viewer(c *gin.Context) string {
	return c.GetString(viewerKey)
}

// requestMiddleware traces and logs every request
func requestMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx, span := telemetry.StartSpan(c.Request.Context(), "http.request")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if v := viewer(c); v != "" {
			fields = append(fields, zap.String("viewer", v))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("Request failed", fields...)
		case status >= 400:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Debug("Request handled", fields...)
		}
	}
}

func abort(c *gin.Context, apiErr *Error) {
	c.AbortWithStatusJSON(apiErr.Code, apiErr)
}
