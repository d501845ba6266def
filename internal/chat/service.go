// Package chat implements the messaging session operations: sending,
// clearing, and the room bookkeeping both require.
package chat

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/prasad-echortech/chat-feature/internal/chatid"
	"github.com/prasad-echortech/chat-feature/internal/metrics"
	"github.com/prasad-echortech/chat-feature/internal/models"
	"github.com/prasad-echortech/chat-feature/internal/notify"
	"github.com/prasad-echortech/chat-feature/internal/store"
)

// Service wires the resolver, the two stores and the notification bus
// behind the user-facing chat intents.
type Service struct {
	messages store.MessageStore
	rooms    store.RoomStore
	bus      notify.Bus
	logger   zerolog.Logger
}

// NewService creates a chat service.
func NewService(messages store.MessageStore, rooms store.RoomStore, bus notify.Bus, logger zerolog.Logger) *Service {
	return &Service{messages: messages, rooms: rooms, bus: bus, logger: logger}
}

// Send appends a message from one user to another, creating the room on
// first contact. The message write and the directory preview update are
// independent: a preview failure is logged and the send still succeeds.
func (s *Service) Send(ctx context.Context, from, to, text string) (*models.Message, error) {
	if text == "" {
		return nil, fmt.Errorf("empty message")
	}

	roomID, err := chatid.Resolve(from, to)
	if err != nil {
		return nil, err
	}
	lo, hi, err := chatid.Split(roomID)
	if err != nil {
		return nil, err
	}

	// First contact creates the room; an existing room is untouched.
	created, err := s.rooms.CreateRoom(ctx, roomID, [2]string{lo, hi})
	if err != nil {
		return nil, err
	}
	if created {
		metrics.RoomsCreated.Inc()
	}

	msg := &models.Message{
		RoomID:       roomID,
		Sender:       from,
		Text:         text,
		Timestamp:    time.Now().UnixMilli(),
		Participants: [2]string{lo, hi},
		ReadBy:       []string{},
	}

	if _, err := s.messages.Append(ctx, msg); err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	// Preview update and change notifications are best-effort; the
	// message is already durable.
	if err := s.rooms.TouchRoom(ctx, roomID, text, msg.Timestamp); err != nil {
		s.logger.Warn().Err(err).Str("room", roomID).Msg("preview update failed")
	}
	if err := s.bus.Publish(ctx, notify.RoomTopic(roomID)); err != nil {
		s.logger.Warn().Err(err).Str("room", roomID).Msg("message notify failed")
	}
	if err := s.bus.Publish(ctx, notify.RoomsTopic); err != nil {
		s.logger.Warn().Err(err).Msg("directory notify failed")
	}

	return msg, nil
}

// ClearMine removes exactly the messages user authored in the room.
// Messages from the other participant stay.
func (s *Service) ClearMine(ctx context.Context, user, roomID string) (int, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if room == nil || !room.HasParticipant(user) {
		return 0, fmt.Errorf("not a participant of %s", roomID)
	}

	// Snapshot the full history, then delete the caller's messages one by
	// one. Removal is per-message, so a concurrent send is never caught.
	msgs, err := s.messages.Snapshot(ctx, roomID, math.MaxInt)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, m := range msgs {
		if m.Sender != user {
			continue
		}
		if err := s.messages.Remove(ctx, roomID, m.ID); err != nil {
			s.logger.Warn().Err(err).Str("msg", m.ID).Msg("message remove failed")
			continue
		}
		removed++
	}
	metrics.MessagesCleared.WithLabelValues("mine").Add(float64(removed))

	if removed > 0 {
		if err := s.bus.Publish(ctx, notify.RoomTopic(roomID)); err != nil {
			s.logger.Warn().Err(err).Str("room", roomID).Msg("clear notify failed")
		}
	}
	return removed, nil
}

// ClearRoom removes every message in the room. The room record itself is
// kept; rooms are never deleted.
func (s *Service) ClearRoom(ctx context.Context, user, roomID string) error {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil || !room.HasParticipant(user) {
		return fmt.Errorf("not a participant of %s", roomID)
	}

	if err := s.messages.Clear(ctx, roomID); err != nil {
		return err
	}
	metrics.MessagesCleared.WithLabelValues("all").Inc()

	if err := s.bus.Publish(ctx, notify.RoomTopic(roomID)); err != nil {
		s.logger.Warn().Err(err).Str("room", roomID).Msg("clear notify failed")
	}
	return nil
}
