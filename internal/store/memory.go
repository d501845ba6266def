package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/prasad-echortech/chat-feature/internal/models"
)

// MemoryMessageStore is an in-process MessageStore for tests and
// single-binary development setups.
type MemoryMessageStore struct {
	mu    sync.RWMutex
	rooms map[string][]models.Message
}

// NewMemoryMessageStore creates an empty in-memory message store.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{rooms: make(map[string][]models.Message)}
}

// Append stores a message, generating ID and timestamp when unset.
func (s *MemoryMessageStore) Append(ctx context.Context, msg *models.Message) (string, error) {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	normalize(msg)

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *msg
	cp.ReadBy = append([]string(nil), msg.ReadBy...)
	s.rooms[msg.RoomID] = append(s.rooms[msg.RoomID], cp)
	return msg.ID, nil
}

// Snapshot returns the most recent lastN messages in ascending order.
func (s *MemoryMessageStore) Snapshot(ctx context.Context, roomID string, lastN int) ([]models.Message, error) {
	if lastN <= 0 {
		return []models.Message{}, nil
	}

	s.mu.RLock()
	all := make([]models.Message, len(s.rooms[roomID]))
	for i, m := range s.rooms[roomID] {
		all[i] = m
		all[i].ReadBy = append([]string(nil), m.ReadBy...)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Timestamp != all[j].Timestamp {
			return all[i].Timestamp < all[j].Timestamp
		}
		return all[i].ID < all[j].ID
	})
	if len(all) > lastN {
		all = all[len(all)-lastN:]
	}
	return all, nil
}

// MarkRead adds user to the message's read set.
func (s *MemoryMessageStore) MarkRead(ctx context.Context, roomID, msgID, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.rooms[roomID]
	for i := range msgs {
		if msgs[i].ID != msgID {
			continue
		}
		if !msgs[i].ReadByUser(user) {
			msgs[i].ReadBy = append(msgs[i].ReadBy, user)
		}
		return nil
	}
	// Message cleared while the receipt was in flight.
	return nil
}

// Remove deletes a single message by ID.
func (s *MemoryMessageStore) Remove(ctx context.Context, roomID, msgID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.rooms[roomID]
	for i := range msgs {
		if msgs[i].ID == msgID {
			s.rooms[roomID] = append(msgs[:i:i], msgs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Clear deletes every message in a room.
func (s *MemoryMessageStore) Clear(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
	return nil
}

func (s *MemoryMessageStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryMessageStore) Close() error { return nil }

// MemoryRoomStore is an in-process RoomStore counterpart.
type MemoryRoomStore struct {
	mu    sync.RWMutex
	rooms map[string]models.Room
}

// NewMemoryRoomStore creates an empty in-memory room store.
func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{rooms: make(map[string]models.Room)}
}

// CreateRoom inserts the room if absent; an existing room's preview is
// left untouched.
func (s *MemoryRoomStore) CreateRoom(ctx context.Context, roomID string, participants [2]string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; ok {
		return false, nil
	}
	s.rooms[roomID] = models.Room{ID: roomID, Participants: participants}
	return true, nil
}

// TouchRoom updates the room's last-message preview.
func (s *MemoryRoomStore) TouchRoom(ctx context.Context, roomID, lastMessage string, at int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	room.LastMessage = lastMessage
	room.LastMessageTime = at
	s.rooms[roomID] = room
	return nil
}

// GetRoom retrieves a room by ID, or (nil, nil) when absent.
func (s *MemoryRoomStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

// ListRoomsFor retrieves every room user participates in, most recently
// active first.
func (s *MemoryRoomStore) ListRoomsFor(ctx context.Context, user string) ([]models.Room, error) {
	s.mu.RLock()
	var rooms []models.Room
	for _, room := range s.rooms {
		if room.HasParticipant(user) {
			rooms = append(rooms, room)
		}
	}
	s.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastMessageTime > rooms[j].LastMessageTime
	})
	return rooms, nil
}

func (s *MemoryRoomStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryRoomStore) Close() {}
