package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"server/internal/infra"
)

// SSEHandler serves the long-lived notification connection for one recipient.
// The handler holds the response open until the client disconnects and emits
// keep-alive comments on idle connections so intermediaries do not cut them.
type SSEHandler struct {
	hub       *Hub
	keepAlive time.Duration
	logger    infra.Logger
}

// NewSSEHandler wires the hub into an HTTP handler.
func NewSSEHandler(hub *Hub, keepAlive time.Duration, logger infra.Logger) *SSEHandler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &SSEHandler{hub: hub, keepAlive: keepAlive, logger: logger}
}

// Serve streams events for the recipient until the connection ends.
func (h *SSEHandler) Serve(w http.ResponseWriter, r *http.Request, recipient string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.hub.Subscribe(recipient)
	defer sub.Close()

	h.logger.Debug().Str("recipient", recipient).Msg("notify: channel opened")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug().Str("recipient", recipient).Msg("notify: channel closed")
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event := <-sub.C:
			if err := writeEvent(w, event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
	return err
}
