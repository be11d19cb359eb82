package token

import (
	"net/http"

	"insurance-voice-agent/internal/apierrors"
	"insurance-voice-agent/internal/observability"

	"github.com/gin-gonic/gin"
)

const defaultIdentity = "frontend-user"

// Handler serves join tokens to the web frontend.
type Handler struct {
	processor Processor
	logger    *observability.Logger
}

func NewHandler(processor Processor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// HandleMintToken issues a join token for the requested identity.
func (h *Handler) HandleMintToken(c *gin.Context) {
	ctx := c.Request.Context()

	identity := c.Query("identity")
	if identity == "" {
		identity = defaultIdentity
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "identity", Value: identity})

	signed, err := h.processor.Mint(ctx, identity)
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}

	h.logger.Info(ctx, "join token issued")
	c.JSON(http.StatusOK, gin.H{
		"token": signed,
		"room":  h.processor.Room(),
	})
}
