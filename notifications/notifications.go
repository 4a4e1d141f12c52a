package notifications

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification targets one user unless Global is set, in which case the
// user id is ignored for delivery and per-reader state lives in ReadBy
// instead of the single Read flag.
type Notification struct {
	ID        string                 `json:"_id"`
	UserID    string                 `json:"userId,omitempty"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	RelatedID string                 `json:"relatedId,omitempty"`
	Read      bool                   `json:"read"`
	ReadBy    []string               `json:"readBy,omitempty"`
	Global    bool                   `json:"global"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt string                 `json:"createdAt"`
}

type Store struct {
	DB *sql.DB
}

func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		type TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		related_id TEXT NOT NULL DEFAULT '',
		read INTEGER NOT NULL DEFAULT 0,
		read_by TEXT NOT NULL DEFAULT '[]',
		global INTEGER NOT NULL DEFAULT 0,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("schema exec failed: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) Insert(n *Notification) error {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if n.Global {
		n.UserID = ""
	}
	if n.ReadBy == nil {
		n.ReadBy = []string{}
	}

	readByJSON, err := json.Marshal(n.ReadBy)
	if err != nil {
		return err
	}
	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	_, err = s.DB.Exec(
		`INSERT INTO notifications (id, user_id, type, title, message, related_id, read, read_by, global, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedID,
		boolToInt(n.Read), string(readByJSON), boolToInt(n.Global), string(metadataJSON), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func unpackRow(n *Notification, readInt, globalInt int, readBy, metadata string) {
	n.Read = readInt == 1
	n.Global = globalInt == 1
	if err := json.Unmarshal([]byte(readBy), &n.ReadBy); err != nil {
		n.ReadBy = []string{}
	}
	if err := json.Unmarshal([]byte(metadata), &n.Metadata); err != nil {
		n.Metadata = map[string]interface{}{}
	}
}

func (s *Store) GetByID(id string) (*Notification, error) {
	var n Notification
	var readInt, globalInt int
	var readBy, metadata string
	err := s.DB.QueryRow(
		`SELECT id, user_id, type, title, message, related_id, read, read_by, global, metadata, created_at
		 FROM notifications WHERE id = ?`, id,
	).Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.RelatedID,
		&readInt, &readBy, &globalInt, &metadata, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	unpackRow(&n, readInt, globalInt, readBy, metadata)
	return &n, nil
}

// ListForUser returns the user's own notifications plus every global
// one, newest first.
func (s *Store) ListForUser(userID string) ([]Notification, error) {
	rows, err := s.DB.Query(
		`SELECT id, user_id, type, title, message, related_id, read, read_by, global, metadata, created_at
		 FROM notifications
		 WHERE user_id = ? OR global = 1
		 ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var readInt, globalInt int
		var readBy, metadata string
		err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.RelatedID,
			&readInt, &readBy, &globalInt, &metadata, &n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		unpackRow(&n, readInt, globalInt, readBy, metadata)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead records that readerID has seen the notification: the read-by
// list for a global record, the single read flag otherwise. Repeating it
// is a no-op.
func (s *Store) MarkRead(id, readerID string) (*Notification, error) {
	n, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if n.Global {
		for _, reader := range n.ReadBy {
			if reader == readerID {
				return n, nil
			}
		}
		n.ReadBy = append(n.ReadBy, readerID)
		readByJSON, err := json.Marshal(n.ReadBy)
		if err != nil {
			return nil, err
		}
		if _, err := s.DB.Exec(`UPDATE notifications SET read_by = ? WHERE id = ?`, string(readByJSON), id); err != nil {
			return nil, err
		}
		return n, nil
	}

	if _, err := s.DB.Exec(`UPDATE notifications SET read = 1 WHERE id = ?`, id); err != nil {
		return nil, err
	}
	n.Read = true
	return n, nil
}

func (s *Store) Delete(id string) (*Notification, error) {
	n, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.DB.Exec(`DELETE FROM notifications WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return n, nil
}
