package db

import (
	"context"
	"fmt"
	"time"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/models"
	"github.com/google/uuid"
	"github.com/rqlite/gorqlite"
)

func New(conn *gorqlite.Connection) *Queries {
	return &Queries{
		conn:  conn,
		Now:   time.Now,
		Limit: DefaultListLimit,
	}
}

// Queries is a conversation store backed by rqlite.
type Queries struct {
	conn  *gorqlite.Connection
	Now   func() time.Time
	Limit int
}

func (q *Queries) ConversationCreate(ctx context.Context, title, model string) (id string, err error) {
	id = uuid.NewString()
	stmt := gorqlite.ParameterizedStatement{
		Query:     conversationInsert,
		Arguments: []any{id, title, model, q.Now().UTC()},
	}
	if _, err = q.conn.WriteOneParameterizedContext(ctx, stmt); err != nil {
		return "", err
	}
	return id, nil
}

func (q *Queries) MessageAppend(ctx context.Context, conversationID string, role models.ChatRole, content string) (err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     messageInsert,
		Arguments: []any{uuid.NewString(), conversationID, string(role), content, q.Now().UTC(), conversationID},
	}
	result, err := q.conn.WriteOneParameterizedContext(ctx, stmt)
	if err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %q", chat.ErrNotFound, conversationID)
	}
	return nil
}

func (q *Queries) ConversationList(ctx context.Context) (conversations []models.Conversation, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     conversationSelect,
		Arguments: []any{q.Limit},
	}
	result, err := q.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	for result.Next() {
		var c models.Conversation
		if err = result.Scan(&c.ID, &c.Title, &c.Model, &c.CreatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}

func (q *Queries) ConversationDelete(ctx context.Context, id string) (err error) {
	statements := []gorqlite.ParameterizedStatement{
		{
			Query:     messageDelete,
			Arguments: []any{id},
		},
		{
			Query:     conversationDelete,
			Arguments: []any{id},
		},
	}
	if _, err = q.conn.WriteParameterizedContext(ctx, statements); err != nil {
		return err
	}
	return nil
}

func (q *Queries) MessageList(ctx context.Context, conversationID string) (messages []models.Message, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     messageSelect,
		Arguments: []any{conversationID},
	}
	result, err := q.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	for result.Next() {
		var m models.Message
		var role string
		if err = result.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = models.ChatRole(role)
		messages = append(messages, m)
	}
	return messages, nil
}
