package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// keepAliveInterval spaces comment frames on an idle event stream.
const keepAliveInterval = 25 * time.Second

// events handles GET /events as a server-sent event stream of content updates.
func (routes *Routes) events(w http.ResponseWriter, r *http.Request) {
	if routes.ports.Events == nil {
		writeServiceError(w, errNotConfigured)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	updates, cancel := routes.ports.Events.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: content-updated\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
