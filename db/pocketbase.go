package db

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/models"
	"github.com/pluja/pocketbase"
)

const (
	pocketbaseConversations = "conversations"
	pocketbaseMessages      = "messages"
	pocketbaseTimeLayout    = "2006-01-02 15:04:05.000Z"
	pocketbasePageSize      = 200
)

func NewPocketbase(client *pocketbase.Client) *Pocketbase {
	return &Pocketbase{
		client: client,
		Limit:  DefaultListLimit,
		Now:    time.Now,
	}
}

// Pocketbase is a conversation store in the "conversations" and "messages"
// collections of a PocketBase server. The client does not accept a context,
// so ctx is only checked between requests.
//
// PocketBase "created" timestamps only have millisecond precision, so messages
// also carry a "seq" number field that is strictly increasing per store.
type Pocketbase struct {
	client *pocketbase.Client
	Limit  int
	Now    func() time.Time

	m       sync.Mutex
	lastSeq int64
}

// nextSeq returns the current time in microseconds, bumped past the last
// value handed out.
func (p *Pocketbase) nextSeq() int64 {
	p.m.Lock()
	defer p.m.Unlock()
	seq := p.Now().UnixMicro()
	if seq <= p.lastSeq {
		seq = p.lastSeq + 1
	}
	p.lastSeq = seq
	return seq
}

func (p *Pocketbase) ConversationCreate(ctx context.Context, title, model string) (id string, err error) {
	if err = ctx.Err(); err != nil {
		return "", err
	}
	resp, err := p.client.Create(pocketbaseConversations, map[string]any{
		"title": title,
		"model": model,
	})
	if err != nil {
		return "", fmt.Errorf("db: failed to create conversation: %w", err)
	}
	return resp.ID, nil
}

func (p *Pocketbase) MessageAppend(ctx context.Context, conversationID string, role models.ChatRole, content string) (err error) {
	ok, err := p.conversationExists(ctx, conversationID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", chat.ErrNotFound, conversationID)
	}
	_, err = p.client.Create(pocketbaseMessages, map[string]any{
		"conversation": conversationID,
		"role":         string(role),
		"content":      content,
		"seq":          p.nextSeq(),
	})
	if err != nil {
		return fmt.Errorf("db: failed to create message: %w", err)
	}
	return nil
}

func (p *Pocketbase) ConversationList(ctx context.Context) (conversations []models.Conversation, err error) {
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := p.client.List(pocketbaseConversations, pocketbase.ParamsList{
		Page: 1,
		Size: p.Limit,
		Sort: "-created",
	})
	if err != nil {
		return nil, fmt.Errorf("db: failed to list conversations: %w", err)
	}
	for _, item := range resp.Items {
		conversations = append(conversations, models.Conversation{
			ID:        stringField(item, "id"),
			Title:     stringField(item, "title"),
			Model:     stringField(item, "model"),
			CreatedAt: timeField(item, "created"),
		})
	}
	return conversations, nil
}

func (p *Pocketbase) ConversationDelete(ctx context.Context, id string) (err error) {
	ok, err := p.conversationExists(ctx, id)
	if err != nil || !ok {
		return err
	}
	messages, err := p.MessageList(ctx, id)
	if err != nil {
		return err
	}
	for _, m := range messages {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = p.client.Delete(pocketbaseMessages, m.ID); err != nil {
			return fmt.Errorf("db: failed to delete message %q: %w", m.ID, err)
		}
	}
	if err = p.client.Delete(pocketbaseConversations, id); err != nil {
		return fmt.Errorf("db: failed to delete conversation: %w", err)
	}
	return nil
}

func (p *Pocketbase) MessageList(ctx context.Context, conversationID string) (messages []models.Message, err error) {
	if !validPocketbaseID(conversationID) {
		return nil, nil
	}
	for page := 1; ; page++ {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := p.client.List(pocketbaseMessages, pocketbase.ParamsList{
			Page:    page,
			Size:    pocketbasePageSize,
			Sort:    "seq,created",
			Filters: fmt.Sprintf("conversation='%s'", conversationID),
		})
		if err != nil {
			return nil, fmt.Errorf("db: failed to list messages: %w", err)
		}
		for _, item := range resp.Items {
			messages = append(messages, models.Message{
				ID:             stringField(item, "id"),
				ConversationID: stringField(item, "conversation"),
				Role:           models.ChatRole(stringField(item, "role")),
				Content:        stringField(item, "content"),
				CreatedAt:      timeField(item, "created"),
			})
		}
		if len(resp.Items) < pocketbasePageSize {
			return messages, nil
		}
	}
}

func (p *Pocketbase) conversationExists(ctx context.Context, id string) (ok bool, err error) {
	if err = ctx.Err(); err != nil {
		return false, err
	}
	if !validPocketbaseID(id) {
		return false, nil
	}
	resp, err := p.client.List(pocketbaseConversations, pocketbase.ParamsList{
		Page:    1,
		Size:    1,
		Filters: fmt.Sprintf("id='%s'", id),
	})
	if err != nil {
		return false, fmt.Errorf("db: failed to find conversation: %w", err)
	}
	return len(resp.Items) > 0, nil
}

// validPocketbaseID rejects ids that could escape a filter expression.
func validPocketbaseID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `'"\`)
}

func stringField(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return s
}

func timeField(item map[string]any, key string) time.Time {
	t, _ := time.Parse(pocketbaseTimeLayout, stringField(item, key))
	return t
}
