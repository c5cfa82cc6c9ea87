package titles

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

type stubModel struct {
	content string
	err     error
	calls   int
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.content}},
	}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

var log = slog.New(slog.DiscardHandler)

func TestTitle(t *testing.T) {
	long := strings.Repeat("a", 60)
	tests := []struct {
		name     string
		llm      *stubModel
		prompt   string
		expected string
	}{
		{
			name:     "no model truncates the prompt",
			prompt:   long,
			expected: strings.Repeat("a", MaxRunes),
		},
		{
			name:     "the model's title is used",
			llm:      &stubModel{content: ` "Greeting the assistant" `},
			prompt:   "Hello there",
			expected: "Greeting the assistant",
		},
		{
			name:     "model errors fall back to the prompt",
			llm:      &stubModel{err: errors.New("connection refused")},
			prompt:   "Hello there",
			expected: "Hello there",
		},
		{
			name:     "empty model output falls back to the prompt",
			llm:      &stubModel{content: "  "},
			prompt:   "Hello there",
			expected: "Hello there",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g *Generator
			if tt.llm == nil {
				g = New(log, nil)
			} else {
				g = New(log, tt.llm)
			}
			if got := g.Title(t.Context(), tt.prompt); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "short input is unchanged",
			input:    "What is Go?",
			expected: "What is Go?",
		},
		{
			name:     "whitespace is collapsed",
			input:    "  What\n is\tGo?  ",
			expected: "What is Go?",
		},
		{
			name:     "multi-byte runes are not split",
			input:    strings.Repeat("é", 55),
			expected: strings.Repeat("é", 50),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
