package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/prasad-echortech/chat-feature/internal/chat"
	"github.com/prasad-echortech/chat-feature/internal/directory"
	"github.com/prasad-echortech/chat-feature/internal/feed"
	"github.com/prasad-echortech/chat-feature/internal/identity"
	"github.com/prasad-echortech/chat-feature/internal/models"
	"github.com/prasad-echortech/chat-feature/internal/store"
)

// emailRegex validates participant identifiers per RFC 5322 (simplified).
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	chat      *chat.Service
	directory *directory.Directory
	projector *feed.Projector
	provider  identity.Provider
	rooms     store.RoomStore
	messages  store.MessageStore
}

// NewHandler creates a new Handler with the given collaborators.
func NewHandler(chatSvc *chat.Service, dir *directory.Directory, projector *feed.Projector, provider identity.Provider, rooms store.RoomStore, messages store.MessageStore) *Handler {
	return &Handler{
		chat:      chatSvc,
		directory: dir,
		projector: projector,
		provider:  provider,
		rooms:     rooms,
		messages:  messages,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// roomForUser loads a room and verifies the requester participates in it.
// Returns nil after writing the error response otherwise. The ID arrives
// path-unescaped from the router.
func (h *Handler) roomForUser(w http.ResponseWriter, r *http.Request, user, roomID string) *models.Room {
	if roomID == "" {
		h.Error(w, http.StatusBadRequest, "invalid room ID")
		return nil
	}

	room, err := h.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return nil
	}
	if room == nil {
		h.Error(w, http.StatusNotFound, "room not found")
		return nil
	}
	if !room.HasParticipant(user) {
		h.Error(w, http.StatusForbidden, "not a participant")
		return nil
	}
	return room
}

// isValidEmail validates identifiers using the RFC 5322 pattern.
func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}
