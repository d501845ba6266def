package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/prasad-echortech/chat-feature/internal/models"
)

// SQLiteRoomStore keeps the room directory in SQLite.
type SQLiteRoomStore struct {
	db *sql.DB
}

// NewSQLiteRoomStore creates a new SQLite room store.
// If dbPath is empty, defaults to "./data/chat.db"
func NewSQLiteRoomStore(ctx context.Context, dbPath string) (*SQLiteRoomStore, error) {
	if dbPath == "" {
		dbPath = "./data/chat.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteRoomStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteRoomStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		participant_a TEXT NOT NULL,
		participant_b TEXT NOT NULL,
		last_message TEXT NOT NULL DEFAULT '',
		last_message_time INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_rooms_participant_a ON rooms(participant_a);
	CREATE INDEX IF NOT EXISTS idx_rooms_participant_b ON rooms(participant_b);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteRoomStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteRoomStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateRoom inserts the room if absent. INSERT OR IGNORE leaves an
// existing row, and its preview, untouched.
func (s *SQLiteRoomStore) CreateRoom(ctx context.Context, roomID string, participants [2]string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO rooms (id, participant_a, participant_b)
		VALUES (?, ?, ?)
	`, roomID, participants[0], participants[1])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TouchRoom updates the room's last-message preview.
func (s *SQLiteRoomStore) TouchRoom(ctx context.Context, roomID, lastMessage string, at int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE rooms SET last_message = ?, last_message_time = ? WHERE id = ?
	`, lastMessage, at, roomID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (s *SQLiteRoomStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room := &models.Room{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, participant_a, participant_b, last_message, last_message_time
		FROM rooms WHERE id = ?
	`, roomID).Scan(
		&room.ID,
		&room.Participants[0],
		&room.Participants[1],
		&room.LastMessage,
		&room.LastMessageTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// ListRoomsFor retrieves every room user participates in, most recently
// active first.
func (s *SQLiteRoomStore) ListRoomsFor(ctx context.Context, user string) ([]models.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, participant_a, participant_b, last_message, last_message_time
		FROM rooms
		WHERE participant_a = ? OR participant_b = ?
		ORDER BY last_message_time DESC
	`, user, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		err := rows.Scan(
			&room.ID,
			&room.Participants[0],
			&room.Participants[1],
			&room.LastMessage,
			&room.LastMessageTime,
		)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}
