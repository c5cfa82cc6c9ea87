package integration

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/client"
	"github.com/a-h/chatrelay/models"
)

func relayURL() string {
	if u := os.Getenv("RELAY_URL"); u != "" {
		return u
	}
	return "http://localhost:9020"
}

func TestChatPost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := client.New(relayURL())
	acc := chat.NewAccumulator(log, nil)
	f := func(ctx context.Context, chunk []byte) (err error) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, err = acc.Write(chunk)
		return err
	}
	err := c.ChatPost(context.Background(), models.ChatPostRequest{
		Model: "llama3.2",
		Messages: []models.ChatMessage{
			{Role: models.ChatRoleUser, Content: "Reply with the single word: hello"},
		},
		Provider: string(models.ProviderLocal),
	}, f)
	if err != nil {
		t.Fatalf("failed to post chat: %v", err)
	}
	acc.Close()
	if acc.Deltas() == 0 {
		t.Fatal("expected at least one delta")
	}
	if !strings.Contains(strings.ToLower(acc.Content()), "hello") {
		t.Errorf("expected the reply to contain hello, got %q", acc.Content())
	}
	if acc.Skipped() != 0 {
		t.Errorf("expected no unparseable lines, got %d", acc.Skipped())
	}
}

func TestSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	c := client.New(relayURL())
	resp, err := c.ConversationsPost(ctx, models.ConversationsPostRequest{
		Model:  "llama3.2",
		Prompt: "Say hi",
	})
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	defer c.ConversationDelete(ctx, resp.ID)

	s := chat.New(log, c, c, chat.Config{
		ConversationID: resp.ID,
		Model:          "llama3.2",
		Provider:       models.ProviderLocal,
	})
	reply, err := s.Send(ctx, "Say hi", nil)
	if err != nil {
		t.Fatalf("failed to send: %v", err)
	}
	msgs, err := c.MessageList(ctx, resp.ID)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[1].Role != models.ChatRoleAssistant || msgs[1].Content != reply {
		t.Errorf("expected the reply to be stored, got %+v", msgs[1])
	}
}
