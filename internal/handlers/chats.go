package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/prasad-echortech/chat-feature/internal/api/middleware"
	"github.com/prasad-echortech/chat-feature/internal/chatid"
	"github.com/prasad-echortech/chat-feature/internal/models"
)

// CreateChatRequest represents the chat creation request.
type CreateChatRequest struct {
	Peer string `json:"peer"`
}

// CreateChatResponse represents the chat creation response.
type CreateChatResponse struct {
	RoomID  string `json:"room_id"`
	Created bool   `json:"created"`
}

// ChatListResponse represents the conversation list response.
type ChatListResponse struct {
	Chats []models.DirectoryEntry `json:"chats"`
}

// CreateChat handles starting a conversation with another user
// (authenticated). Creating an existing conversation again is a harmless
// no-op that never resets its preview.
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Peer = strings.TrimSpace(req.Peer)
	if !isValidEmail(req.Peer) {
		h.Error(w, http.StatusBadRequest, "peer must be a valid email address")
		return
	}

	roomID, created, err := h.directory.CreateRoom(r.Context(), user, req.Peer)
	if err != nil {
		if errors.Is(err, chatid.ErrInvalidParticipant) {
			h.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to create chat")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.JSON(w, status, CreateChatResponse{RoomID: roomID, Created: created})
}

// ListChats handles fetching the authenticated user's conversation list.
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entries, err := h.directory.List(r.Context(), user)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to list chats")
		return
	}

	h.JSON(w, http.StatusOK, ChatListResponse{Chats: entries})
}
