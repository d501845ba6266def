package store

import (
	"context"
	"errors"

	"github.com/prasad-echortech/chat-feature/internal/models"
)

// ErrWriteFailed wraps store write rejections. Send-path callers surface
// it; the read-receipt path logs and swallows it.
var ErrWriteFailed = errors.New("write failed")

// MessageStore is the interface for per-room message persistence.
// RedisStore and MemoryStore implement this interface.
type MessageStore interface {
	// Append durably writes msg, assigning a ULID and timestamp when
	// unset, and returns the generated ID.
	Append(ctx context.Context, msg *models.Message) (string, error)
	// Snapshot returns the most recent lastN messages of a room in
	// ascending timestamp order, ties broken by insertion ID.
	Snapshot(ctx context.Context, roomID string, lastN int) ([]models.Message, error)
	// MarkRead adds user to a message's read set. Set union, idempotent;
	// marking a message that no longer exists is a no-op.
	MarkRead(ctx context.Context, roomID, msgID, user string) error
	// Remove deletes a single message.
	Remove(ctx context.Context, roomID, msgID string) error
	// Clear deletes every message in a room. The room record itself is
	// untouched.
	Clear(ctx context.Context, roomID string) error

	Ping(ctx context.Context) error
	Close() error
}

// RoomStore is the interface for the room directory records.
// SQLiteRoomStore, PostgresRoomStore and MemoryStore implement it.
type RoomStore interface {
	// CreateRoom inserts the room if absent and reports whether it was
	// created. An existing room is left untouched, preview included.
	CreateRoom(ctx context.Context, roomID string, participants [2]string) (bool, error)
	// TouchRoom updates the room's last-message preview. Called on send
	// only, never on create.
	TouchRoom(ctx context.Context, roomID, lastMessage string, at int64) error
	// GetRoom returns the room, or (nil, nil) when absent.
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	// ListRoomsFor returns every room user participates in, most
	// recently active first.
	ListRoomsFor(ctx context.Context, user string) ([]models.Room, error)

	Ping(ctx context.Context) error
	Close()
}

// normalize enforces record defaults at the read boundary so absent
// optional fields never leak nil into callers.
func normalize(msg *models.Message) {
	if msg.ReadBy == nil {
		msg.ReadBy = []string{}
	}
}
