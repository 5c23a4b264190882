package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hvlabs/docproc/internal/api/middleware"
	"github.com/hvlabs/docproc/internal/document"
	"github.com/hvlabs/docproc/internal/function"
	"github.com/hvlabs/docproc/internal/logging"
	"github.com/hvlabs/docproc/internal/monitoring"
	"github.com/hvlabs/docproc/internal/telemetry"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	harness   *function.Harness
	telemetry *telemetry.Context
	metrics   *monitoring.Metrics
	log       *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(harness *function.Harness, tctx *telemetry.Context, metrics *monitoring.Metrics, log *logging.Logger) *Handlers {
	return &Handlers{
		harness:   harness,
		telemetry: tctx,
		metrics:   metrics,
		log:       log.Named("http"),
	}
}

// processRequest is the payload for POST /process
type processRequest struct {
	WorkID   string `json:"work_id" binding:"required"`
	Strategy string `json:"strategy"`
}

// Process runs one unit of work through the harness
func (h *Handlers) Process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The platform-facing entrypoint owns the strategy default
	strategy := req.Strategy
	if strategy == "" {
		strategy = document.DefaultStrategy
	}

	result, err := h.harness.Invoke(c.Request.Context(), function.Request{
		WorkID:   req.WorkID,
		Strategy: strategy,
	})
	if err != nil {
		// Work errors surface unchanged
		h.log.For(c.Request.Context()).Error("process_failed",
			zap.String("work_id", req.WorkID),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Root handles service discovery
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "online",
		"service":     h.telemetry.ServiceName(),
		"environment": h.telemetry.Runtime().Environment,
		"version":     h.telemetry.Runtime().Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	snapshot := h.metrics.GetSnapshot()
	runtime := h.telemetry.Runtime()

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"invocations": gin.H{
			"total":     snapshot.TotalInvocations,
			"errors":    snapshot.InvocationErrors,
			"in_flight": snapshot.InFlight,
		},
		"runtime": gin.H{
			"is_remote": runtime.IsRemote,
			"region":    runtime.Region,
			"task_id":   runtime.TaskID,
			"boot_id":   runtime.BootID,
		},
	})
}
