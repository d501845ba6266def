package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prasad-echortech/chat-feature/internal/api/middleware"
	"github.com/prasad-echortech/chat-feature/internal/models"
)

const maxWindow = 200

// FeedResponse represents the get messages response.
type FeedResponse struct {
	RoomID    string           `json:"room_id"`
	Messages  []models.Message `json:"messages"`
	Window    int              `json:"window"`
	AllLoaded bool             `json:"all_loaded"`
}

// PostMessageRequest represents the post message request.
type PostMessageRequest struct {
	Text string `json:"text"`
}

// PostMessageResponse represents the post message response.
type PostMessageResponse struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Timestamp int64  `json:"ts"`
}

// ClearResponse represents the clear messages response.
type ClearResponse struct {
	Removed int  `json:"removed,omitempty"`
	Cleared bool `json:"cleared"`
}

// GetMessages handles fetching the current feed view for a room
// (authenticated). Reading the feed marks unread messages as read.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	room := h.roomForUser(w, r, user, chi.URLParam(r, "id"))
	if room == nil {
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

	view, err := h.projector.View(r.Context(), user, room.ID, window)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	h.JSON(w, http.StatusOK, FeedResponse{
		RoomID:    room.ID,
		Messages:  view.Messages,
		Window:    view.Window,
		AllLoaded: view.AllLoaded,
	})
}

// PostMessage handles sending a message to the other participant of a room
// (authenticated).
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	room := h.roomForUser(w, r, user, chi.URLParam(r, "id"))
	if room == nil {
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Text == "" {
		h.Error(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Text) > 4096 {
		h.Error(w, http.StatusUnprocessableEntity, "text too long (max 4096 bytes)")
		return
	}

	msg, err := h.chat.Send(r.Context(), user, room.Other(user), req.Text)
	if err != nil {
		// Send failures surface to the caller; this is the one write path
		// the user must see fail.
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	h.JSON(w, http.StatusCreated, PostMessageResponse{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		Timestamp: msg.Timestamp,
	})
}

// ClearMessages handles clearing messages in a room (authenticated).
// scope=mine removes only the caller's authored messages; scope=all
// removes everything. The room itself always survives.
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	room := h.roomForUser(w, r, user, chi.URLParam(r, "id"))
	if room == nil {
		return
	}

	switch r.URL.Query().Get("scope") {
	case "", "mine":
		removed, err := h.chat.ClearMine(r.Context(), user, room.ID)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "failed to clear messages")
			return
		}
		h.JSON(w, http.StatusOK, ClearResponse{Removed: removed, Cleared: true})
	case "all":
		if err := h.chat.ClearRoom(r.Context(), user, room.ID); err != nil {
			h.Error(w, http.StatusInternalServerError, "failed to clear messages")
			return
		}
		h.JSON(w, http.StatusOK, ClearResponse{Cleared: true})
	default:
		h.Error(w, http.StatusBadRequest, "scope must be 'mine' or 'all'")
	}
}
