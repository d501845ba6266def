package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/prasad-echortech/chat-feature/internal/chatid"
	"github.com/prasad-echortech/chat-feature/internal/models"
	"github.com/prasad-echortech/chat-feature/internal/notify"
	"github.com/prasad-echortech/chat-feature/internal/store"
)

func newFixture() (*store.MemoryRoomStore, *notify.MemoryBus, *Directory) {
	rooms := store.NewMemoryRoomStore()
	bus := notify.NewMemoryBus()
	return rooms, bus, New(rooms, bus, zerolog.Nop())
}

func TestCreateRoomCanonicalAndIdempotent(t *testing.T) {
	rooms, bus, d := newFixture()
	defer bus.Close()
	ctx := context.Background()

	id1, created, err := d.CreateRoom(ctx, "b@x.com", "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("first create must report created")
	}

	// Same pair in either order resolves to the same room.
	id2, created, err := d.CreateRoom(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("second create must not report created")
	}
	if id1 != id2 {
		t.Fatalf("pair order changed room ID: %q vs %q", id1, id2)
	}

	// An existing room keeps its preview through a repeat create.
	if err := rooms.TouchRoom(ctx, id1, "hello", 1234); err != nil {
		t.Fatal(err)
	}
	if _, _, err := d.CreateRoom(ctx, "a@x.com", "b@x.com"); err != nil {
		t.Fatal(err)
	}
	room, err := rooms.GetRoom(ctx, id1)
	if err != nil {
		t.Fatal(err)
	}
	if room.LastMessage != "hello" || room.LastMessageTime != 1234 {
		t.Fatalf("repeat create clobbered preview: %+v", room)
	}
}

func TestCreateRoomRejectsSelfAndEmpty(t *testing.T) {
	_, bus, d := newFixture()
	defer bus.Close()

	if _, _, err := d.CreateRoom(context.Background(), "a@x.com", "a@x.com"); !errors.Is(err, chatid.ErrInvalidParticipant) {
		t.Fatalf("self chat: got %v", err)
	}
	if _, _, err := d.CreateRoom(context.Background(), "", "a@x.com"); !errors.Is(err, chatid.ErrInvalidParticipant) {
		t.Fatalf("empty participant: got %v", err)
	}
}

func TestListOrderAndOtherParticipant(t *testing.T) {
	rooms, bus, d := newFixture()
	defer bus.Close()
	ctx := context.Background()

	idB, _, err := d.CreateRoom(ctx, "me@x.com", "b@x.com")
	if err != nil {
		t.Fatal(err)
	}
	idC, _, err := d.CreateRoom(ctx, "me@x.com", "c@x.com")
	if err != nil {
		t.Fatal(err)
	}
	// A room the user is not in must never show up.
	if _, _, err := d.CreateRoom(ctx, "x@x.com", "y@x.com"); err != nil {
		t.Fatal(err)
	}
	// A room with no messages yet sorts last with an empty preview.
	if _, _, err := d.CreateRoom(ctx, "me@x.com", "quiet@x.com"); err != nil {
		t.Fatal(err)
	}

	if err := rooms.TouchRoom(ctx, idB, "older", 100); err != nil {
		t.Fatal(err)
	}
	if err := rooms.TouchRoom(ctx, idC, "newer", 200); err != nil {
		t.Fatal(err)
	}

	entries, err := d.List(ctx, "me@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].OtherParticipant != "c@x.com" || entries[0].LastMessage != "newer" {
		t.Fatalf("most recent first: %+v", entries[0])
	}
	if entries[1].OtherParticipant != "b@x.com" {
		t.Fatalf("second entry: %+v", entries[1])
	}
	if entries[2].OtherParticipant != "quiet@x.com" || entries[2].LastMessage != "" {
		t.Fatalf("empty room last: %+v", entries[2])
	}
}

func TestSubscriptionSeesNewRooms(t *testing.T) {
	_, bus, d := newFixture()
	defer bus.Close()
	ctx := context.Background()

	sub, err := d.Subscribe(ctx, "me@x.com")
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	waitEntries := func(accept func([]models.DirectoryEntry) bool) []models.DirectoryEntry {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case entries, ok := <-sub.Entries():
				if !ok {
					t.Fatal("entries channel closed while waiting")
				}
				if accept(entries) {
					return entries
				}
			case <-deadline:
				t.Fatal("timed out waiting for entries")
			}
		}
	}

	waitEntries(func(e []models.DirectoryEntry) bool { return len(e) == 0 })

	if _, _, err := d.CreateRoom(ctx, "peer@x.com", "me@x.com"); err != nil {
		t.Fatal(err)
	}

	entries := waitEntries(func(e []models.DirectoryEntry) bool { return len(e) == 1 })
	if entries[0].OtherParticipant != "peer@x.com" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}

	sub.Close()
	sub.Close()
}
