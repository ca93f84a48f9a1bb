package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"braindump-service/internal/models"
	"braindump-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

const (
	msgMissingFields = "Missing text or userId"
	msgProcessFailed = "Failed to process brain dump"
)

// Processor runs a brain dump through the pipeline
type Processor interface {
	Process(ctx context.Context, text, userID string, report service.ProgressReporter) (*service.Result, error)
}

// HistoryReader serves the dashboard reads
type HistoryReader interface {
	ListAudits(ctx context.Context, userID string, limit int) ([]models.BrainDumpAudit, error)
	GetStats(ctx context.Context, userID string) (*models.UserStats, error)
}

// ProviderInfo describes the configured model providers
type ProviderInfo interface {
	GetProvidersInfo() []map[string]interface{}
}

// Handler handles HTTP requests
type Handler struct {
	pipeline        Processor
	history         HistoryReader
	providers       ProviderInfo
	logger          *zap.Logger
	surfaceWarnings bool
}

// NewHandler creates a new API handler
func NewHandler(pipeline Processor, history HistoryReader, logger *zap.Logger, surfaceWarnings bool) *Handler {
	return &Handler{
		pipeline:        pipeline,
		history:         history,
		logger:          logger,
		surfaceWarnings: surfaceWarnings,
	}
}

// WithProviders adds provider status to the health check
func (h *Handler) WithProviders(p ProviderInfo) *Handler {
	h.providers = p
	return h
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/brain-dump", h.ProcessBrainDump)
		api.POST("/brain-dump/stream", h.StreamBrainDump)

		api.GET("/brain-dumps/:userId", h.ListBrainDumps)
		api.GET("/stats/:userId", h.GetStats)
	}

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// ProcessBrainDump handles a single submission
func (h *Handler) ProcessBrainDump(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	// the run completes even if the client goes away
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.pipeline.Process(ctx, req.Text, req.UserID, nil)
	if err != nil {
		status, body := h.errorResponse(err, req.UserID)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, h.successResponse(result))
}

// StreamBrainDump runs a submission and streams progress as Server-Sent Events
func (h *Handler) StreamBrainDump(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	if _, err := service.Normalize(req.Text, req.UserID); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgMissingFields})
		return
	}

	type outcome struct {
		result *service.Result
		err    error
	}

	// sized for every milestone so the pipeline never blocks on a slow reader
	progress := make(chan service.Progress, 8)
	done := make(chan outcome, 1)
	ctx := context.WithoutCancel(c.Request.Context())

	go func() {
		defer close(progress)
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("pipeline panicked: %v", r)}
			}
		}()

		result, err := h.pipeline.Process(ctx, req.Text, req.UserID, func(p service.Progress) {
			select {
			case progress <- p:
			default:
			}
		})
		done <- outcome{result: result, err: err}
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for p := range progress {
		c.SSEvent("progress", p)
		c.Writer.Flush()
	}

	out := <-done
	if out.err != nil {
		_, body := h.errorResponse(out.err, req.UserID)
		c.SSEvent("error", body)
	} else {
		c.SSEvent("result", h.successResponse(out.result))
	}
	c.Writer.Flush()
}

// ListBrainDumps returns the user's most recent submissions
func (h *Handler) ListBrainDumps(c *gin.Context) {
	userID := c.Param("userId")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	audits, err := h.history.ListAudits(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to list brain dumps", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list brain dumps"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"brain_dumps": audits,
		"total":       len(audits),
	})
}

// GetStats returns stored counts for the user
func (h *Handler) GetStats(c *gin.Context) {
	userID := c.Param("userId")

	stats, err := h.history.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get stats", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": "braindump-service",
		"version": "1.0.0",
	}
	if h.providers != nil {
		resp["providers"] = h.providers.GetProvidersInfo()
	}
	c.JSON(http.StatusOK, resp)
}

// bindRequest decodes the body. A malformed body is an unexpected failure, not a validation one.
func (h *Handler) bindRequest(c *gin.Context) (models.BrainDumpRequest, bool) {
	var req models.BrainDumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to decode brain dump request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgProcessFailed})
		return req, false
	}
	return req, true
}

func (h *Handler) errorResponse(err error, userID string) (int, models.ErrorResponse) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, models.ErrorResponse{Error: msgMissingFields}
	}

	h.logger.Error("Failed to process brain dump", zap.String("user_id", userID), zap.Error(err))
	return http.StatusInternalServerError, models.ErrorResponse{Error: msgProcessFailed}
}

func (h *Handler) successResponse(result *service.Result) models.BrainDumpResponse {
	return SuccessBody(result, h.surfaceWarnings)
}

// SuccessBody is the 200 body for a completed run. Write failures are only listed when withWarnings is set.
func SuccessBody(result *service.Result, withWarnings bool) models.BrainDumpResponse {
	resp := models.BrainDumpResponse{
		Success: true,
		Data:    result.Data,
		Message: result.Message,
	}
	if withWarnings {
		for _, w := range result.Warnings {
			resp.Warnings = append(resp.Warnings, models.WriteWarning{Entity: w.Entity, Error: w.Err.Error()})
		}
	}
	return resp
}
