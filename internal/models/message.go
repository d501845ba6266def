package models

// Message represents a single chat message stored in Redis.
// Text, Sender, Timestamp and Participants are immutable after creation;
// only ReadBy changes, and only by set union.
type Message struct {
	ID           string    `json:"id"` // ULID
	RoomID       string    `json:"room_id"`
	Sender       string    `json:"from"`
	Text         string    `json:"text"`
	Timestamp    int64     `json:"ts"` // Unix ms
	Participants [2]string `json:"participants"`
	ReadBy       []string  `json:"read_by"`
}

// HasParticipant reports whether user is one of the two participants.
func (m *Message) HasParticipant(user string) bool {
	return m.Participants[0] == user || m.Participants[1] == user
}

// ReadByUser reports whether user is in the read set.
func (m *Message) ReadByUser(user string) bool {
	for _, u := range m.ReadBy {
		if u == user {
			return true
		}
	}
	return false
}
