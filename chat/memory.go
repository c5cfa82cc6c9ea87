package chat

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/a-h/chatrelay/models"
	"github.com/google/uuid"
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Now:      time.Now,
		messages: make(map[string][]models.Message),
	}
}

// MemoryStore is a Store that lives for the life of the process.
type MemoryStore struct {
	Now func() time.Time

	m             sync.Mutex
	conversations []models.Conversation
	messages      map[string][]models.Message
}

func (s *MemoryStore) ConversationCreate(ctx context.Context, title, model string) (id string, err error) {
	s.m.Lock()
	defer s.m.Unlock()
	id = uuid.NewString()
	s.conversations = append(s.conversations, models.Conversation{
		ID:        id,
		Title:     title,
		Model:     model,
		CreatedAt: s.Now(),
	})
	return id, nil
}

func (s *MemoryStore) MessageAppend(ctx context.Context, conversationID string, role models.ChatRole, content string) error {
	s.m.Lock()
	defer s.m.Unlock()
	if !s.exists(conversationID) {
		return fmt.Errorf("%w: %q", ErrNotFound, conversationID)
	}
	s.messages[conversationID] = append(s.messages[conversationID], models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      s.Now(),
	})
	return nil
}

func (s *MemoryStore) ConversationList(ctx context.Context) ([]models.Conversation, error) {
	s.m.Lock()
	defer s.m.Unlock()
	list := slices.Clone(s.conversations)
	slices.Reverse(list)
	return list, nil
}

func (s *MemoryStore) ConversationDelete(ctx context.Context, id string) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.conversations = slices.DeleteFunc(s.conversations, func(c models.Conversation) bool {
		return c.ID == id
	})
	delete(s.messages, id)
	return nil
}

func (s *MemoryStore) MessageList(ctx context.Context, conversationID string) ([]models.Message, error) {
	s.m.Lock()
	defer s.m.Unlock()
	return slices.Clone(s.messages[conversationID]), nil
}

func (s *MemoryStore) exists(id string) bool {
	return slices.ContainsFunc(s.conversations, func(c models.Conversation) bool {
		return c.ID == id
	})
}
