package models

// Room represents a two-party conversation. The ID is derived from the
// participant pair (see internal/chatid), so a room is never created twice
// for the same pair. Rooms are never deleted; only their messages are.
type Room struct {
	ID              string    `json:"id"`
	Participants    [2]string `json:"participants"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime int64     `json:"last_message_time"` // Unix ms, 0 when no message yet
}

// HasParticipant reports whether user is one of the two participants.
func (r *Room) HasParticipant(user string) bool {
	return r.Participants[0] == user || r.Participants[1] == user
}

// Other returns the participant that is not user, or "" if user is not a
// participant.
func (r *Room) Other(user string) string {
	switch user {
	case r.Participants[0]:
		return r.Participants[1]
	case r.Participants[1]:
		return r.Participants[0]
	}
	return ""
}
