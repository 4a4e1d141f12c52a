package messages

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
)

func newMessagesRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newTestStore(t)
	handlers := &Handlers{Store: store}

	r := gin.New()
	r.GET("/messages/:userId/:otherId", handlers.HandleGetConversation)
	r.PATCH("/messages/:userId/:otherId/read", handlers.HandleMarkConversationRead)
	return r, store
}

func TestHandleGetConversation(t *testing.T) {
	r, store := newMessagesRouter(t)

	if _, err := store.Insert("alice", "bob", "hello", ""); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := store.Insert("bob", "alice", "hi back", ""); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/messages/alice/bob", nil)
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var history []Message
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(history) != 2 || history[0].Text != "hello" {
		t.Fatalf("unexpected history: %+v", history)
	}

	// An empty conversation is an empty array, not null.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/messages/alice/nobody", nil)
	r.ServeHTTP(w, req)
	if w.Code != 200 || w.Body.String() != "[]" {
		t.Fatalf("expected empty array, got %d %s", w.Code, w.Body.String())
	}
}

func TestHandleMarkConversationRead(t *testing.T) {
	r, store := newMessagesRouter(t)

	if _, err := store.Insert("alice", "bob", "unread", ""); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PATCH", "/messages/bob/alice/read", nil)
	r.ServeHTTP(w, req)
	if w.Code != 204 {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	history, err := store.Conversation("alice", "bob")
	if err != nil {
		t.Fatalf("conversation failed: %v", err)
	}
	if len(history) != 1 || !history[0].Read {
		t.Fatalf("expected message marked read, got %+v", history)
	}

	// Idempotent when nothing is unread.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("PATCH", "/messages/bob/alice/read", nil)
	r.ServeHTTP(w, req)
	if w.Code != 204 {
		t.Fatalf("expected repeat to stay 204, got %d", w.Code)
	}
}
