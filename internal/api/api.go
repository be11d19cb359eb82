package api

import (
	"net/http"

	"insurance-voice-agent/internal/agenttools"
	"insurance-voice-agent/internal/events"
	"insurance-voice-agent/internal/token"

	"github.com/gin-gonic/gin"
)

type API struct {
	router       *gin.RouterGroup
	tokenHandler token.Handler
	toolsHandler agenttools.Handler
	eventHandler events.Handler
}

func New(router *gin.RouterGroup, tokenHandler token.Handler, toolsHandler agenttools.Handler, eventHandler events.Handler) API {
	return API{
		router:       router,
		tokenHandler: tokenHandler,
		toolsHandler: toolsHandler,
		eventHandler: eventHandler,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	a.router.GET("/token", a.tokenHandler.HandleMintToken)

	apiGroup := a.router.Group("/api")
	{
		sessionGroup := apiGroup.Group("/sessions/:session_id")
		sessionGroup.POST("/tools/:tool_name", a.toolsHandler.HandleInvokeTool)
		sessionGroup.GET("/events", a.eventHandler.HandleSessionEvents)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
