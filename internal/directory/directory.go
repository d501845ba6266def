// Package directory maintains a user's conversation list: one entry per
// room they participate in, ordered by recency.
package directory

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/prasad-echortech/chat-feature/internal/chatid"
	"github.com/prasad-echortech/chat-feature/internal/metrics"
	"github.com/prasad-echortech/chat-feature/internal/models"
	"github.com/prasad-echortech/chat-feature/internal/notify"
	"github.com/prasad-echortech/chat-feature/internal/store"
)

// Directory aggregates rooms into per-user conversation lists.
type Directory struct {
	rooms  store.RoomStore
	bus    notify.Bus
	logger zerolog.Logger
}

// New creates a Directory over the given room store.
func New(rooms store.RoomStore, bus notify.Bus, logger zerolog.Logger) *Directory {
	return &Directory{rooms: rooms, bus: bus, logger: logger}
}

// CreateRoom derives the canonical room ID for the pair {a, b} and creates
// the room if absent. The upsert is conditional: an existing room keeps
// its last-message preview. Returns the room ID and whether a new room was
// created.
func (d *Directory) CreateRoom(ctx context.Context, a, b string) (string, bool, error) {
	roomID, err := chatid.Resolve(a, b)
	if err != nil {
		return "", false, err
	}

	lo, hi, err := chatid.Split(roomID)
	if err != nil {
		return "", false, err
	}

	created, err := d.rooms.CreateRoom(ctx, roomID, [2]string{lo, hi})
	if err != nil {
		return "", false, err
	}
	if created {
		metrics.RoomsCreated.Inc()
		if err := d.bus.Publish(ctx, notify.RoomsTopic); err != nil {
			d.logger.Warn().Err(err).Msg("room create notify failed")
		}
	}
	return roomID, created, nil
}

// List returns the user's conversation entries, most recent first. Rooms
// with no messages yet appear with an empty preview and sort last.
func (d *Directory) List(ctx context.Context, user string) ([]models.DirectoryEntry, error) {
	rooms, err := d.rooms.ListRoomsFor(ctx, user)
	if err != nil {
		return nil, err
	}

	entries := make([]models.DirectoryEntry, 0, len(rooms))
	for _, room := range rooms {
		if !room.HasParticipant(user) {
			continue
		}
		entries = append(entries, models.DirectoryEntry{
			RoomID:           room.ID,
			OtherParticipant: room.Other(user),
			LastMessage:      room.LastMessage,
			LastMessageTime:  room.LastMessageTime,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastMessageTime > entries[j].LastMessageTime
	})
	return entries, nil
}

// Subscription is a live conversation list for one user. Entry snapshots
// are pushed on the Entries channel after every room-collection change;
// the channel is closed on teardown.
type Subscription struct {
	d    *Directory
	user string

	entries chan []models.DirectoryEntry
	handle  *notify.Handle

	closed    chan struct{}
	closeOnce sync.Once
}

// Subscribe opens a live conversation list for user. One snapshot is
// pushed immediately and one per subsequent room change.
func (d *Directory) Subscribe(ctx context.Context, user string) (*Subscription, error) {
	handle, err := d.bus.Subscribe(ctx, notify.RoomsTopic)
	if err != nil {
		return nil, err
	}

	s := &Subscription{
		d:       d,
		user:    user,
		entries: make(chan []models.DirectoryEntry, 1),
		handle:  handle,
		closed:  make(chan struct{}),
	}

	metrics.DirectorySubscriptions.Inc()
	go s.run(ctx)
	return s, nil
}

// Entries returns the stream of conversation-list snapshots.
func (s *Subscription) Entries() <-chan []models.DirectoryEntry { return s.entries }

// Close detaches the change listener exactly once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.handle.Close()
	})
}

func (s *Subscription) run(ctx context.Context) {
	defer metrics.DirectorySubscriptions.Dec()
	defer close(s.entries)

	s.emit(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case _, ok := <-s.handle.C():
			if !ok {
				return
			}
			s.emit(ctx)
		}
	}
}

func (s *Subscription) emit(ctx context.Context) {
	entries, err := s.d.List(ctx, s.user)
	if err != nil {
		s.d.logger.Error().Err(err).Str("user", s.user).Msg("directory list failed")
		return
	}
	select {
	case s.entries <- entries:
	case <-s.closed:
	case <-ctx.Done():
	}
}
