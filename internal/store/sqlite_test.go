package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newSQLiteStore(t *testing.T) *SQLiteRoomStore {
	t.Helper()
	s, err := NewSQLiteRoomStore(context.Background(), filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSQLiteCreateRoomIdempotent(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	pair := [2]string{"a@x.com", "b@x.com"}
	created, err := s.CreateRoom(ctx, "room-1", pair)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("first insert must report created")
	}

	if err := s.TouchRoom(ctx, "room-1", "hello", 42); err != nil {
		t.Fatal(err)
	}

	created, err = s.CreateRoom(ctx, "room-1", pair)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("second insert must be ignored")
	}

	room, err := s.GetRoom(ctx, "room-1")
	if err != nil {
		t.Fatal(err)
	}
	if room.LastMessage != "hello" || room.LastMessageTime != 42 {
		t.Fatalf("repeat create clobbered preview: %+v", room)
	}
}

func TestSQLiteGetRoomMissing(t *testing.T) {
	s := newSQLiteStore(t)

	room, err := s.GetRoom(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if room != nil {
		t.Fatalf("expected nil for missing room, got %+v", room)
	}
}

func TestSQLiteListRoomsForOrdering(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "room-ab", [2]string{"a@x.com", "b@x.com"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateRoom(ctx, "room-ac", [2]string{"a@x.com", "c@x.com"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateRoom(ctx, "room-bc", [2]string{"b@x.com", "c@x.com"}); err != nil {
		t.Fatal(err)
	}

	if err := s.TouchRoom(ctx, "room-ab", "older", 100); err != nil {
		t.Fatal(err)
	}
	if err := s.TouchRoom(ctx, "room-ac", "newer", 200); err != nil {
		t.Fatal(err)
	}

	rooms, err := s.ListRoomsFor(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms for a, got %d", len(rooms))
	}
	if rooms[0].ID != "room-ac" || rooms[1].ID != "room-ab" {
		t.Fatalf("wrong order: %s, %s", rooms[0].ID, rooms[1].ID)
	}

	rooms, err = s.ListRoomsFor(ctx, "nobody@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 0 {
		t.Fatalf("expected no rooms, got %d", len(rooms))
	}
}
