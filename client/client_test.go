package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/chatrelay/auth"
	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/chat/storetest"
	"github.com/a-h/chatrelay/handlers"
	"github.com/a-h/chatrelay/models"
	"github.com/a-h/chatrelay/relay"
	"github.com/a-h/chatrelay/titles"
	"github.com/a-h/chatrelay/upstream"
	"github.com/a-h/jsonapi"
	"github.com/google/go-cmp/cmp"
)

var log = slog.New(slog.DiscardHandler)

var options = []models.ModelOption{
	{ID: "ollama-llama", Name: "Llama 3.2 (3b)", Provider: models.ProviderLocal, ModelID: "llama3.2"},
}

func newServer(t *testing.T, upstreamHandler http.HandlerFunc) Client {
	t.Helper()
	us := httptest.NewServer(upstreamHandler)
	t.Cleanup(us.Close)
	r := relay.New(log, map[models.Provider]upstream.Provider{
		models.ProviderLocal: upstream.NewLocal(log, us.Client(), us.URL),
		models.ProviderCloud: upstream.NewCloud(log, us.Client(), us.URL, auth.Static("token"), upstream.DefaultSampling, upstream.ChoicesDelta),
	})
	s := httptest.NewServer(handlers.New(log, handlers.Config{
		Relay:  r,
		Store:  chat.NewMemoryStore(),
		Titler: titles.New(log, nil),
		Models: options,
	}))
	t.Cleanup(s.Close)
	return New(s.URL)
}

func TestChatPost(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat(`{"message":{"content":"abc"},"done":false}`+"\n", 100))
		io.WriteString(w, `{"message":{"content":""},"done":true}`+"\n")
	})
	var chunks int
	acc := chat.NewAccumulator(log, nil)
	err := c.ChatPost(t.Context(), models.ChatPostRequest{
		Model:    "llama3.2",
		Messages: []models.ChatMessage{{Role: models.ChatRoleUser, Content: "Hi"}},
		Provider: "local",
	}, func(ctx context.Context, chunk []byte) error {
		chunks++
		_, err := acc.Write(chunk)
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	acc.Close()
	if diff := cmp.Diff(strings.Repeat("abc", 100), acc.Content()); diff != "" {
		t.Error(diff)
	}
	if !acc.Done() {
		t.Error("expected a done event")
	}
	if chunks < 2 {
		t.Errorf("expected the body in several chunks, got %d", chunks)
	}
}

func TestChatPostStatusError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected upstream request")
	})
	err := c.ChatPost(t.Context(), models.ChatPostRequest{
		Model:    "llama3.2",
		Messages: []models.ChatMessage{{Role: models.ChatRoleUser, Content: "Hi"}},
	}, func(ctx context.Context, chunk []byte) error {
		t.Error("unexpected chunk")
		return nil
	})
	var ise jsonapi.InvalidStatusError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidStatusError, got %v", err)
	}
	if ise.Status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", ise.Status)
	}
	if !strings.Contains(ise.Body, "provider is required") {
		t.Errorf("unexpected body %q", ise.Body)
	}
}

func TestChatPostCallbackError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":{"content":"abc"},"done":false}`+"\n")
	})
	stop := errors.New("stop")
	err := c.ChatPost(t.Context(), models.ChatPostRequest{
		Model:    "llama3.2",
		Messages: []models.ChatMessage{{Role: models.ChatRoleUser, Content: "Hi"}},
		Provider: "local",
	}, func(ctx context.Context, chunk []byte) error {
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected the callback error, got %v", err)
	}
}

func TestModelsGet(t *testing.T) {
	c := newServer(t, http.NotFound)
	resp, err := c.ModelsGet(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(options, resp.Models); diff != "" {
		t.Error(diff)
	}
}

func TestStore(t *testing.T) {
	storetest.Run(t, newServer(t, http.NotFound))
}
