package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prasad-echortech/chat-feature/internal/api/middleware"
)

// StreamFeed handles the live feed as a Server-Sent Events stream
// (authenticated). One event is pushed per store change. Reconnecting with
// a larger ?limit replaces the window; there is never more than one
// listener per stream request.
func (h *Handler) StreamFeed(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	room := h.roomForUser(w, r, user, chi.URLParam(r, "id"))
	if room == nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	window := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			window = l
		}
	}
	if window > maxWindow {
		window = maxWindow
	}

	sub, err := h.projector.Subscribe(r.Context(), user, room.ID, window, nil)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case view, ok := <-sub.Views():
			if !ok {
				return
			}
			event := "view"
			if view.Disconnected {
				event = "disconnected"
			}
			data, err := json.Marshal(view)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
			flusher.Flush()
			if view.Disconnected {
				return
			}
		}
	}
}
