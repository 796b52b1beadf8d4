package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/reinsim/internal/events"
)

const wsWriteTimeout = 5 * time.Second

// EventsWebSocketHandler pushes bus events to websocket clients
type EventsWebSocketHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsWebSocketHandler creates a new websocket handler
func NewEventsWebSocketHandler(bus *events.Bus, log zerolog.Logger) *EventsWebSocketHandler {
	return &EventsWebSocketHandler{
		bus: bus,
		log: log.With().Str("handler", "events_ws").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws. Accepts the same "types" filter as the SSE stream.
func (h *EventsWebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filter := parseTypeFilter(r.URL.Query().Get("types"))

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	ch, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	// Clients never send; CloseRead handles control frames and cancels ctx on close
	ctx := conn.CloseRead(r.Context())

	if err := writeWS(ctx, conn, map[string]string{"type": "connected"}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Msg("WebSocket client disconnected")
			return
		case event, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if !filter.matches(event.Type) {
				continue
			}
			if err := writeWS(ctx, conn, event); err != nil {
				h.log.Debug().Err(err).Msg("WebSocket write failed")
				return
			}
		}
	}
}

func writeWS(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}
