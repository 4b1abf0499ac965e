package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kazi-app/ups/internal/event"
	"github.com/kazi-app/ups/internal/event/topic"
)

// streamBuffer bounds the events queued for one slow client.
const streamBuffer = 64

// streamEvents relays bus events as server-sent events. The pattern query
// parameter selects the types and defaults to everything. Events are
// dropped for clients that fall behind; the bus is never blocked.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", "streaming unsupported")
		return
	}
	pattern := topic.Topic(r.URL.Query().Get("pattern"))
	if pattern == "" {
		pattern = "**"
	}

	ch := make(chan event.Event, streamBuffer)
	sub, err := s.p.SubscribeToEvent(pattern, event.HandlerFunc(func(_ context.Context, e event.Event) error {
		select {
		case ch <- e:
		default:
		}
		return nil
	}))
	if err != nil {
		writeErr(w, err)
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-ch:
			data, err := json.Marshal(e)
			if err != nil {
				s.log.Debug().Err(err).Str("event_type", e.Type.String()).Msg("event not streamable")
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
