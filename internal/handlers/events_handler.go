package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chatnotify/internal/middleware"
	"chatnotify/internal/realtime"
)

type EventsHandler struct {
	registry *realtime.Registry
	log      zerolog.Logger
}

func NewEventsHandler(registry *realtime.Registry, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{registry: registry, log: log}
}

// Stream is the long-lived per-connection endpoint. The caller is already
// authenticated by the time we get here; we attach a handle for their user id
// and forward every event on it as a labeled SSE message until the connection
// goes away. Unregister runs on every exit path.
func (h *EventsHandler) Stream(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	handle := h.registry.Register(identity.UserID)
	defer h.registry.Unregister(handle)

	log := h.log.With().
		Int64("user_id", identity.UserID).
		Str("conn_id", handle.ID.String()).
		Logger()
	log.Info().Msg("stream opened")
	defer log.Info().Msg("stream closed")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.Flush()

	// ctx covers client disconnect and server shutdown (via BaseContext)
	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-handle.Events():
			c.SSEvent(ev.Name(), ev.Payload())
			return true
		}
	})
}
