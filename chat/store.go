package chat

import (
	"context"

	"github.com/a-h/chatrelay/models"
)

// ErrNotFound is returned when a message is appended to a conversation that
// does not exist. Deleting a missing conversation is not an error.
var ErrNotFound = models.ErrConversationNotFound

// Store is the conversation history collaborator.
type Store interface {
	ConversationCreate(ctx context.Context, title, model string) (id string, err error)
	MessageAppend(ctx context.Context, conversationID string, role models.ChatRole, content string) error
	ConversationList(ctx context.Context) ([]models.Conversation, error)
	ConversationDelete(ctx context.Context, id string) error
	MessageList(ctx context.Context, conversationID string) ([]models.Message, error)
}
