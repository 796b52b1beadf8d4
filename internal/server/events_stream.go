package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/reinsim/internal/events"
	"github.com/aristath/reinsim/internal/utils"
)

const heartbeatInterval = 30 * time.Second

// EventsStreamHandler streams bus events to clients over Server-Sent Events
type EventsStreamHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsStreamHandler creates a new SSE handler
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus: bus,
		log: log.With().Str("handler", "events_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/events/stream
//
// The optional "types" query parameter restricts the stream to a
// comma-separated list of event types, e.g. ?types=SIMULATION_COMPLETED,RUN_UPLOADED
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	filter := parseTypeFilter(r.URL.Query().Get("types"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	flusher.Flush()

	h.log.Debug().Int("filters", len(filter)).Msg("Event stream client connected")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Msg("Event stream client disconnected")
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, ok := <-ch:
			if !ok {
				return
			}
			if !filter.matches(event.Type) {
				continue
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.log.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to marshal event")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

type typeFilter map[events.EventType]struct{}

func parseTypeFilter(raw string) typeFilter {
	filter := typeFilter{}
	for name := range utils.UpperSet(raw) {
		filter[events.EventType(name)] = struct{}{}
	}
	return filter
}

// matches reports whether t passes the filter; an empty filter passes everything
func (f typeFilter) matches(t events.EventType) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[t]
	return ok
}
