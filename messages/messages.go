package messages

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is immutable once stored except for the read flag, which only
// ever flips false -> true in bulk when the recipient acknowledges the
// conversation.
type Message struct {
	ID        string `json:"_id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
	File      string `json:"file,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

type Store struct {
	DB *sql.DB
}

const conversationLimit = 100

func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		sender TEXT NOT NULL,
		recipient TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		file_ref TEXT NOT NULL DEFAULT '',
		read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("schema exec failed: %w", err)
	}
	return nil
}

func (s *Store) Insert(sender, recipient, text, fileRef string) (*Message, error) {
	msg := &Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		File:      fileRef,
		Read:      false,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	query := `INSERT INTO messages (id, sender, recipient, content, file_ref, read, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`
	_, err := s.DB.Exec(query, msg.ID, msg.Sender, msg.Recipient, msg.Text, msg.File, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// Conversation returns the chronological history between two identities,
// regardless of which side sent each message. A long conversation is
// capped to its newest messages, not its oldest.
func (s *Store) Conversation(userID, otherID string) ([]Message, error) {
	rows, err := s.DB.Query(
		`SELECT id, sender, recipient, content, file_ref, read, created_at
		 FROM messages
		 WHERE (sender = ? AND recipient = ?) OR (sender = ? AND recipient = ?)
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		userID, otherID, otherID, userID, conversationLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var msg Message
		var readInt int
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Recipient, &msg.Text, &msg.File, &readInt, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Read = readInt == 1
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrive newest first; flip them back to chronological.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MarkRead flips the read flag on every unread message from otherID to
// readerID. Calling it with nothing unread is a no-op success.
func (s *Store) MarkRead(readerID, otherID string) error {
	_, err := s.DB.Exec(
		`UPDATE messages SET read = 1 WHERE sender = ? AND recipient = ? AND read = 0`,
		otherID, readerID,
	)
	return err
}
