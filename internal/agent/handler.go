package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/richxcame/commuter-agent/pkg/errors"
	"github.com/richxcame/commuter-agent/pkg/logger"
	"github.com/richxcame/commuter-agent/pkg/validation"
	"go.uber.org/zap"
)

// Version is reported by GET /.
const Version = "1.0.0"

const description = "AI Commuter Assistance Agent - Provides route planning, traffic updates, and travel mode suggestions"

// DefaultTimeout bounds a single agent request when none is configured.
const DefaultTimeout = 5 * time.Second

// Handler serves the agent HTTP surface.
type Handler struct {
	pipeline *Pipeline
	timeout  time.Duration
}

// NewHandler creates a new agent handler. A non-positive timeout uses DefaultTimeout.
func NewHandler(pipeline *Pipeline, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Handler{pipeline: pipeline, timeout: timeout}
}

// RegisterRoutes registers agent routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Info)
	r.GET("/health", h.Health)
	r.POST("/"+Name, h.HandleQuery)
}

// Info describes the service.
func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"agent_name": Name,
		"status":     "running",
		"version":    Version,
		"endpoints": gin.H{
			"health": "/health",
			"agent":  "/" + Name,
		},
		"description": description,
	})
}

// Health is the orchestrator-facing health check.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"agent_name": Name,
		"ready":      true,
	})
}

// HandleQuery answers POST /commuter-agent. Every outcome is a 200 with an
// envelope; failures are described in error_message.
func (h *Handler) HandleQuery(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.internalError(c, fmt.Errorf("%v", r))
		}
	}()

	var req AgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, Failure(MsgInvalidFormat+err.Error()))
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.respond(c, Failure(MsgInvalidFormat+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	type outcome struct {
		resp     *AgentResponse
		panicked error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{panicked: fmt.Errorf("%v", r)}
			}
		}()
		done <- outcome{resp: h.pipeline.Run(ctx, req.Messages)}
	}()

	select {
	case out := <-done:
		if out.panicked != nil {
			h.internalError(c, out.panicked)
			return
		}
		h.respond(c, out.resp)
	case <-ctx.Done():
		logger.WarnContext(ctx, "agent processing timed out",
			zap.Duration("timeout", h.timeout),
			zap.Bool("client_gone", !errors.Is(ctx.Err(), context.DeadlineExceeded)),
		)
		h.respond(c, Failure(MsgTimedOut))
	}
}

func (h *Handler) internalError(c *gin.Context, err error) {
	logger.ErrorContext(c.Request.Context(), "unexpected error in agent endpoint", zap.Error(err))
	apperrors.CaptureErrorWithContext(c, err, map[string]interface{}{"endpoint": "/" + Name})
	h.respond(c, Failure(MsgInternalPrefix+err.Error()))
}

func (h *Handler) respond(c *gin.Context, resp *AgentResponse) {
	if c.Writer.Written() {
		return
	}
	c.JSON(http.StatusOK, resp)
}
