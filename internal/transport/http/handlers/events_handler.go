package handlers

import (
	"github.com/blockwarden/backend/internal/core/services"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/gofiber/contrib/websocket"
)

// EventsHandler streams command lifecycle events to UI websocket clients.
type EventsHandler struct {
	broadcast *services.Broadcaster
	logger    *logger.Logger
}

func NewEventsHandler(broadcast *services.Broadcaster, logger *logger.Logger) *EventsHandler {
	return &EventsHandler{broadcast: broadcast, logger: logger}
}

func (h *EventsHandler) Handle(c *websocket.Conn) {
	events, cancel := h.broadcast.Subscribe()
	defer cancel()
	defer c.Close()

	h.logger.Infow("events_ws_connected", "remote", c.RemoteAddr().String())

	// Drain client frames so close/ping handling keeps working, and use the
	// read error to notice disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(ev); err != nil {
				h.logger.Warnw("events_ws_write_failed", "error", err)
				return
			}
		case <-done:
			h.logger.Infow("events_ws_disconnected")
			return
		}
	}
}
