package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/prasad-echortech/chat-feature/internal/metrics"
	"github.com/prasad-echortech/chat-feature/internal/models"
)

// RedisStore holds room messages in one sorted set per room, scored by the
// message timestamp (unix ms). ULIDs give a total order for equal scores.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis message store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Client exposes the underlying client for collaborators sharing the
// connection (pub/sub bus, rate limiter).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// roomMessagesKey returns the key for a room's message sorted set.
func roomMessagesKey(roomID string) string {
	return fmt.Sprintf("room:%s:messages", roomID)
}

// Append stores a message, generating ID and timestamp when unset.
func (s *RedisStore) Append(ctx context.Context, msg *models.Message) (string, error) {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	normalize(msg)

	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}

	start := time.Now()
	err = s.client.ZAdd(ctx, roomMessagesKey(msg.RoomID), redis.Z{
		Score:  float64(msg.Timestamp),
		Member: string(data),
	}).Err()
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return msg.ID, nil
}

// Snapshot retrieves the most recent lastN messages in ascending order.
func (s *RedisStore) Snapshot(ctx context.Context, roomID string, lastN int) ([]models.Message, error) {
	if lastN <= 0 {
		return []models.Message{}, nil
	}

	start := time.Now()
	// Negative start index selects the tail of the set; results come back
	// in ascending score order already.
	results, err := s.client.ZRange(ctx, roomMessagesKey(roomID), int64(-lastN), -1).Result()
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(results))
	for _, data := range results {
		var msg models.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		normalize(&msg)
		messages = append(messages, msg)
	}

	return messages, nil
}

// findMember scans the room's set for the member holding msgID.
func (s *RedisStore) findMember(ctx context.Context, roomID, msgID string) (string, *models.Message, error) {
	results, err := s.client.ZRange(ctx, roomMessagesKey(roomID), 0, -1).Result()
	if err != nil {
		return "", nil, err
	}

	for _, data := range results {
		var msg models.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		if msg.ID == msgID {
			normalize(&msg)
			return data, &msg, nil
		}
	}

	return "", nil, nil
}

// MarkRead adds user to the message's read set by rewriting the member
// under the same score. Read-modify-write without a lock: the operation is
// a set union, so concurrent markers converge.
func (s *RedisStore) MarkRead(ctx context.Context, roomID, msgID, user string) error {
	raw, msg, err := s.findMember(ctx, roomID, msgID)
	if err != nil {
		return err
	}
	if msg == nil {
		// Message cleared while the receipt was in flight.
		return nil
	}
	if msg.ReadByUser(user) {
		return nil
	}

	msg.ReadBy = append(msg.ReadBy, user)
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := roomMessagesKey(roomID)
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, key, raw)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(msg.Timestamp), Member: string(data)})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// Remove deletes a single message by ID.
func (s *RedisStore) Remove(ctx context.Context, roomID, msgID string) error {
	raw, msg, err := s.findMember(ctx, roomID, msgID)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}
	if err := s.client.ZRem(ctx, roomMessagesKey(roomID), raw).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// Clear deletes all messages in a room.
func (s *RedisStore) Clear(ctx context.Context, roomID string) error {
	if err := s.client.Del(ctx, roomMessagesKey(roomID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
