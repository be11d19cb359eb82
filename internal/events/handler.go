package events

import (
	"net/http"

	"insurance-voice-agent/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler streams a session's agent events over a websocket so the
// conversation frontend can surface deferred messages (e.g. the
// escalation verdict) to the live caller.
type Handler struct {
	publisher *Publisher
	logger    *observability.Logger
	upgrader  websocket.Upgrader
}

func NewHandler(publisher *Publisher, logger *observability.Logger) Handler {
	return Handler{
		publisher: publisher,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleSessionEvents upgrades the connection and forwards session events
// until the client disconnects.
func (h *Handler) HandleSessionEvents(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")
	ctx = observability.WithFields(ctx, observability.Field{Key: "session_id", Value: sessionID})

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(ctx, "failed to upgrade event stream connection", err)
		return
	}
	defer conn.Close()

	eventCh, cancel := h.publisher.Subscribe(sessionID)
	defer cancel()

	h.logger.Info(ctx, "event stream subscriber connected")

	// Drain reads so client close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Info(ctx, "event stream subscriber disconnected")
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Error(ctx, "failed to write event to stream", err)
				return
			}
		}
	}
}
