package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prasad-echortech/chat-feature/internal/metrics"
	"github.com/prasad-echortech/chat-feature/internal/models"
)

// PostgresRoomStore keeps the room directory in PostgreSQL.
type PostgresRoomStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRoomStore creates a new PostgreSQL room store with a
// connection pool and ensures the schema exists.
func NewPostgresRoomStore(ctx context.Context, databaseURL string) (*PostgresRoomStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresRoomStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresRoomStore) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			participant_a TEXT NOT NULL,
			participant_b TEXT NOT NULL,
			last_message TEXT NOT NULL DEFAULT '',
			last_message_time BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_rooms_participant_a ON rooms(participant_a);
		CREATE INDEX IF NOT EXISTS idx_rooms_participant_b ON rooms(participant_b);
	`)
	return err
}

// Close closes the database connection pool.
func (s *PostgresRoomStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresRoomStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateRoom inserts the room if absent. ON CONFLICT DO NOTHING leaves an
// existing row's preview untouched.
func (s *PostgresRoomStore) CreateRoom(ctx context.Context, roomID string, participants [2]string) (bool, error) {
	start := time.Now()
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO rooms (id, participant_a, participant_b)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, roomID, participants[0], participants[1])
	metrics.PostgresLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return tag.RowsAffected() > 0, nil
}

// TouchRoom updates the room's last-message preview.
func (s *PostgresRoomStore) TouchRoom(ctx context.Context, roomID, lastMessage string, at int64) error {
	start := time.Now()
	_, err := s.pool.Exec(ctx, `
		UPDATE rooms SET last_message = $1, last_message_time = $2 WHERE id = $3
	`, lastMessage, at, roomID)
	metrics.PostgresLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (s *PostgresRoomStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room := &models.Room{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, participant_a, participant_b, last_message, last_message_time
		FROM rooms WHERE id = $1
	`, roomID).Scan(
		&room.ID,
		&room.Participants[0],
		&room.Participants[1],
		&room.LastMessage,
		&room.LastMessageTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// ListRoomsFor retrieves every room user participates in, most recently
// active first.
func (s *PostgresRoomStore) ListRoomsFor(ctx context.Context, user string) ([]models.Room, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, participant_a, participant_b, last_message, last_message_time
		FROM rooms
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY last_message_time DESC
	`, user)
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
