package models

import (
	"fmt"
	"strings"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	// ChatRoleError marks a failed exchange kept in history. It is never sent upstream.
	ChatRoleError ChatRole = "error"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderCloud Provider = "cloud"
)

// ParseProvider accepts the canonical provider names and the names used by
// the model catalogue. Empty or unknown values are an error.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "ollama":
		return ProviderLocal, nil
	case "cloud", "vertex-ai":
		return ProviderCloud, nil
	case "":
		return "", fmt.Errorf("provider is required")
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

type ChatPostRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Provider string        `json:"provider,omitempty"`
}

// Validate checks the request is fit to be forwarded upstream.
func (r ChatPostRequest) Validate() error {
	if r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages are required")
	}
	last := r.Messages[len(r.Messages)-1]
	if last.Role == ChatRoleUser && strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("user message content is required")
	}
	for i, m := range r.Messages {
		if m.Role != ChatRoleUser && m.Role != ChatRoleAssistant {
			return fmt.Errorf("message %d: invalid role %q", i, m.Role)
		}
	}
	return nil
}

type EventMessage struct {
	Content string `json:"content"`
}

// NormalizedEvent is one line of relay output.
type NormalizedEvent struct {
	Message EventMessage `json:"message"`
	// Done is null for cloud deltas, and true or false for local events.
	Done *bool `json:"done"`
}

func (e NormalizedEvent) IsDone() bool {
	return e.Done != nil && *e.Done
}

type ErrorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
	UpstreamBody   string `json:"upstreamBody,omitempty"`
}
