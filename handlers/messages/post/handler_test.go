package post

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/models"
)

var log = slog.New(slog.DiscardHandler)

func TestHandler(t *testing.T) {
	tests := []struct {
		name           string
		conversationID string
		body           string
		expectedStatus int
	}{
		{
			name:           "user message",
			body:           `{"role":"user","content":"Hi"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error messages are stored",
			body:           `{"role":"error","content":"network: failed to reach the relay"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown role",
			body:           `{"role":"system","content":"Hi"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty user message",
			body:           `{"role":"user","content":" "}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown conversation",
			conversationID: "missing",
			body:           `{"role":"user","content":"Hi"}`,
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := chat.NewMemoryStore()
			id, err := store.ConversationCreate(t.Context(), "t", "llama3.2")
			if err != nil {
				t.Fatalf("failed to create conversation: %v", err)
			}
			if tt.conversationID != "" {
				id = tt.conversationID
			}
			mux := http.NewServeMux()
			mux.Handle("POST /conversations/{id}/messages", New(log, store))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/conversations/"+id+"/messages", strings.NewReader(tt.body)))
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code != http.StatusCreated {
				return
			}
			msgs, err := store.MessageList(t.Context(), id)
			if err != nil {
				t.Fatalf("failed to list messages: %v", err)
			}
			if len(msgs) != 1 {
				t.Fatalf("expected one message, got %d", len(msgs))
			}
			if msgs[0].Role == models.ChatRole("") {
				t.Error("expected a role")
			}
		})
	}
}
