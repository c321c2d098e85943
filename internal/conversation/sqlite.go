package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists conversations per document in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates or opens a SQLite database.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			file TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_file ON messages(file);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Append(ctx context.Context, file string, role Role, content string) (Message, error) {
	msg := Message{
		ID:        uuid.NewString(),
		File:      file,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, file, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.File, string(msg.Role), msg.Content, msg.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("failed to save message: %w", err)
	}
	return msg, nil
}

// Recent returns up to limit of the newest messages for file, oldest first.
// A limit of zero or less returns every message.
func (s *Store) Recent(ctx context.Context, file string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file, role, content, created_at FROM (
			SELECT rowid, id, file, role, content, created_at FROM messages
			WHERE file = ? ORDER BY rowid DESC LIMIT ?
		) ORDER BY rowid ASC`, file, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var role string
		if err := rows.Scan(&m.ID, &m.File, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Clear(ctx context.Context, file string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE file = ?`, file)
	return err
}

// Session returns a Log bound to one document.
func (s *Store) Session(file string) *Session {
	return &Session{store: s, file: file}
}

// Session is the per-document view of a Store.
type Session struct {
	store *Store
	file  string
}

func (c *Session) AddUserMessage(ctx context.Context, content string) error {
	_, err := c.store.Append(ctx, c.file, RoleUser, content)
	return err
}

func (c *Session) AddAssistantMessage(ctx context.Context, content string) error {
	_, err := c.store.Append(ctx, c.file, RoleAssistant, content)
	return err
}

// GetConversationContext degrades to "" when the store cannot be read.
func (c *Session) GetConversationContext(ctx context.Context, maxMessages int) string {
	msgs, err := c.store.Recent(ctx, c.file, maxMessages)
	if err != nil {
		return ""
	}
	return Render(msgs)
}
