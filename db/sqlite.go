package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens, and migrates, an embedded database at path.
func OpenSQLite(path string) (s *SQLite, err error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db: failed to open sqlite: %w", err)
	}
	// SQLite allows one writer at a time.
	conn.SetMaxOpenConns(1)
	if err = MigrateSQLite(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return NewSQLite(conn), nil
}

func NewSQLite(conn *sql.DB) *SQLite {
	return &SQLite{
		conn:  conn,
		Now:   time.Now,
		Limit: DefaultListLimit,
	}
}

// SQLite is a conversation store in an embedded database file.
type SQLite struct {
	conn  *sql.DB
	Now   func() time.Time
	Limit int
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) ConversationCreate(ctx context.Context, title, model string) (id string, err error) {
	id = uuid.NewString()
	if _, err = s.conn.ExecContext(ctx, conversationInsert, id, title, model, s.Now().UTC()); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLite) MessageAppend(ctx context.Context, conversationID string, role models.ChatRole, content string) (err error) {
	result, err := s.conn.ExecContext(ctx, messageInsert, uuid.NewString(), conversationID, string(role), content, s.Now().UTC(), conversationID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", chat.ErrNotFound, conversationID)
	}
	return nil
}

func (s *SQLite) ConversationList(ctx context.Context) (conversations []models.Conversation, err error) {
	rows, err := s.conn.QueryContext(ctx, conversationSelect, s.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Conversation
		if err = rows.Scan(&c.ID, &c.Title, &c.Model, &c.CreatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

func (s *SQLite) ConversationDelete(ctx context.Context, id string) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err = tx.ExecContext(ctx, messageDelete, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, conversationDelete, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) MessageList(ctx context.Context, conversationID string) (messages []models.Message, err error) {
	rows, err := s.conn.QueryContext(ctx, messageSelect, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m models.Message
		var role string
		if err = rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = models.ChatRole(role)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
