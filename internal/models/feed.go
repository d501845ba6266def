package models

// FeedView is the client-visible slice of a room's messages: sorted
// ascending by timestamp, filtered to messages visible to the subscribing
// user, limited to the most recent Window entries.
type FeedView struct {
	Messages []Message `json:"messages"`
	Window   int       `json:"window"`
	// AllLoaded is true when the store returned fewer records than asked,
	// meaning no further history exists.
	AllLoaded bool `json:"all_loaded"`
	// Disconnected marks the terminal view emitted when the underlying
	// change subscription is lost. No further views follow.
	Disconnected bool `json:"disconnected,omitempty"`
}

// Tail returns the most recent message, or nil for an empty view.
func (v *FeedView) Tail() *Message {
	if len(v.Messages) == 0 {
		return nil
	}
	return &v.Messages[len(v.Messages)-1]
}

// DirectoryEntry is one row of a user's conversation list.
type DirectoryEntry struct {
	RoomID           string `json:"room_id"`
	OtherParticipant string `json:"other_participant"`
	LastMessage      string `json:"last_message"`
	LastMessageTime  int64  `json:"last_message_time"`
}
