// Package storetest checks the behaviour shared by every chat.Store.
package storetest

import (
	"errors"
	"testing"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/models"
	"github.com/google/go-cmp/cmp"
)

// Run exercises s. The store may contain conversations from earlier runs.
func Run(t *testing.T, s chat.Store) {
	t.Helper()
	ctx := t.Context()

	first, err := s.ConversationCreate(ctx, "First", "llama3.2")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	second, err := s.ConversationCreate(ctx, "Second", "meta/llama-3.2-90b-vision-instruct-maas")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	if first == second {
		t.Fatalf("expected unique ids, got %q twice", first)
	}

	t.Run("conversations are listed newest first", func(t *testing.T) {
		list, err := s.ConversationList(ctx)
		if err != nil {
			t.Fatalf("failed to list conversations: %v", err)
		}
		firstIndex, secondIndex := -1, -1
		for i, c := range list {
			switch c.ID {
			case first:
				firstIndex = i
				if c.Title != "First" || c.Model != "llama3.2" {
					t.Errorf("unexpected conversation: %+v", c)
				}
				if c.CreatedAt.IsZero() {
					t.Error("expected a created time")
				}
			case second:
				secondIndex = i
			}
		}
		if firstIndex < 0 || secondIndex < 0 {
			t.Fatalf("expected both conversations, got %+v", list)
		}
		if secondIndex > firstIndex {
			t.Errorf("expected second (%d) before first (%d)", secondIndex, firstIndex)
		}
	})
	t.Run("messages are listed in the order they were appended", func(t *testing.T) {
		appends := []models.ChatMessage{
			{Role: models.ChatRoleUser, Content: "Hi"},
			{Role: models.ChatRoleAssistant, Content: "Hello"},
			{Role: models.ChatRoleUser, Content: "Again"},
			{Role: models.ChatRoleError, Content: "network: failed to reach the relay"},
		}
		for _, m := range appends {
			if err := s.MessageAppend(ctx, first, m.Role, m.Content); err != nil {
				t.Fatalf("failed to append message: %v", err)
			}
		}
		msgs, err := s.MessageList(ctx, first)
		if err != nil {
			t.Fatalf("failed to list messages: %v", err)
		}
		var got []models.ChatMessage
		for _, m := range msgs {
			if m.ConversationID != first {
				t.Errorf("expected conversation %q, got %q", first, m.ConversationID)
			}
			got = append(got, models.ChatMessage{Role: m.Role, Content: m.Content})
		}
		if diff := cmp.Diff(appends, got); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("appending to a missing conversation fails", func(t *testing.T) {
		err := s.MessageAppend(ctx, "missing", models.ChatRoleUser, "Hi")
		if !errors.Is(err, chat.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
	t.Run("a missing conversation has no messages", func(t *testing.T) {
		msgs, err := s.MessageList(ctx, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(msgs) != 0 {
			t.Errorf("expected no messages, got %+v", msgs)
		}
	})
	t.Run("deleting a conversation removes its messages", func(t *testing.T) {
		if err := s.ConversationDelete(ctx, first); err != nil {
			t.Fatalf("failed to delete conversation: %v", err)
		}
		msgs, err := s.MessageList(ctx, first)
		if err != nil {
			t.Fatalf("failed to list messages: %v", err)
		}
		if len(msgs) != 0 {
			t.Errorf("expected no messages, got %+v", msgs)
		}
		list, err := s.ConversationList(ctx)
		if err != nil {
			t.Fatalf("failed to list conversations: %v", err)
		}
		for _, c := range list {
			if c.ID == first {
				t.Error("expected the conversation to be deleted")
			}
		}
	})
	t.Run("deleting a missing conversation is not an error", func(t *testing.T) {
		if err := s.ConversationDelete(ctx, first); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if err := s.ConversationDelete(ctx, second); err != nil {
		t.Errorf("failed to clean up: %v", err)
	}
}
