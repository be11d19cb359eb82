package agenttools

import (
	"errors"
	"net/http"

	"insurance-voice-agent/internal/apierrors"
	"insurance-voice-agent/internal/observability"

	"github.com/gin-gonic/gin"
)

// Handler exposes the agent tools over HTTP so the voice runtime can call
// them as function tools during a live session.
type Handler struct {
	registry *Registry
	logger   *observability.Logger
}

func NewHandler(registry *Registry, logger *observability.Logger) Handler {
	return Handler{
		registry: registry,
		logger:   logger,
	}
}

type invokeRequest struct {
	Input string `json:"input"`
}

// HandleInvokeTool runs one tool for the session in the path.
func (h *Handler) HandleInvokeTool(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")
	toolName := c.Param("tool_name")
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "session_id", Value: sessionID},
		observability.Field{Key: "tool_name", Value: toolName},
	)

	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "INVALID_BODY", "request body must be JSON with an input field")
		return
	}

	output, err := h.registry.Invoke(ctx, toolName, sessionID, req.Input)
	if err != nil {
		if errors.Is(err, ErrUnknownTool) {
			apierrors.NotFound(c, "no such tool")
			return
		}
		apierrors.InternalError(c, err)
		return
	}

	h.logger.Info(ctx, "tool invocation completed")
	c.JSON(http.StatusOK, gin.H{"output": output})
}
