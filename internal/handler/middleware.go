package handler

import (
	"net/http"
	"strconv"
	"time"

	"braindump-service/internal/metrics"
	"braindump-service/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CORS allows the dashboard to call the API from any origin
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Metrics records request duration by route template
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Recovery logs a panic and answers with the generic processing error
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("Request panicked",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgProcessFailed})
	})
}

// NewRouter wires middleware and routes onto a fresh engine
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), Recovery(h.logger), CORS(), Metrics())
	h.RegisterRoutes(router)
	return router
}
