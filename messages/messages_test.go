package messages

import (
	"fmt"
	"path/filepath"
	"testing"

	"aluminet/db"

	_ "github.com/mattn/go-sqlite3"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.InitSQLite(filepath.Join(t.TempDir(), "messages_test.sqlite"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	if err := EnsureSchema(database); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return &Store{DB: database}
}

func TestInsertAndConversationOrder(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Insert("alice", "bob", "hello", "")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if first.ID == "" || first.Read {
		t.Fatalf("expected unread message with id, got %+v", first)
	}
	if _, err := store.Insert("bob", "alice", "hi back", ""); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := store.Insert("alice", "bob", "", "uploads/cv.pdf"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	// Unrelated pair must stay out of the conversation.
	if _, err := store.Insert("alice", "carol", "other thread", ""); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	history, err := store.Conversation("alice", "bob")
	if err != nil {
		t.Fatalf("conversation failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(history))
	}
	if history[0].Text != "hello" || history[1].Text != "hi back" || history[2].File != "uploads/cv.pdf" {
		t.Fatalf("unexpected order: %+v", history)
	}

	// The pair is unordered: both directions see the same history.
	reversed, err := store.Conversation("bob", "alice")
	if err != nil {
		t.Fatalf("conversation failed: %v", err)
	}
	if len(reversed) != 3 || reversed[0].ID != history[0].ID {
		t.Fatalf("expected symmetric history, got %+v", reversed)
	}
}

func TestConversationCapsToNewest(t *testing.T) {
	store := newTestStore(t)

	total := conversationLimit + 5
	for i := 0; i < total; i++ {
		if _, err := store.Insert("alice", "bob", fmt.Sprintf("msg %03d", i), ""); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	history, err := store.Conversation("alice", "bob")
	if err != nil {
		t.Fatalf("conversation failed: %v", err)
	}
	if len(history) != conversationLimit {
		t.Fatalf("expected cap of %d messages, got %d", conversationLimit, len(history))
	}

	// The oldest messages fall off; what remains is still chronological
	// and ends with the latest one.
	wantFirst := fmt.Sprintf("msg %03d", total-conversationLimit)
	wantLast := fmt.Sprintf("msg %03d", total-1)
	if history[0].Text != wantFirst {
		t.Fatalf("expected history to start at %q, got %q", wantFirst, history[0].Text)
	}
	if history[len(history)-1].Text != wantLast {
		t.Fatalf("expected history to end at %q, got %q", wantLast, history[len(history)-1].Text)
	}
}

func TestMarkReadIsDirectionalAndIdempotent(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Insert("alice", "bob", "one", ""); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := store.Insert("alice", "bob", "two", ""); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := store.Insert("bob", "alice", "reply", ""); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// bob acknowledges everything alice sent him.
	if err := store.MarkRead("bob", "alice"); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}

	history, err := store.Conversation("alice", "bob")
	if err != nil {
		t.Fatalf("conversation failed: %v", err)
	}
	for _, msg := range history {
		wantRead := msg.Sender == "alice"
		if msg.Read != wantRead {
			t.Fatalf("message %q read=%v, want %v", msg.Text, msg.Read, wantRead)
		}
	}

	// Second call with nothing unread is a no-op success.
	if err := store.MarkRead("bob", "alice"); err != nil {
		t.Fatalf("repeat mark read failed: %v", err)
	}
	// And with no messages at all.
	if err := store.MarkRead("bob", "nobody"); err != nil {
		t.Fatalf("mark read with empty conversation failed: %v", err)
	}
}
