// Package titles names conversations from their first prompt.
package titles

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/tmc/langchaingo/llms"
)

// MaxRunes is the length of a title taken from the prompt.
const MaxRunes = 50

const systemPrompt = "Write a title of at most six words for a conversation that starts with the user's message. Reply with the title only."

// New returns a Generator. llm may be nil, in which case titles are always
// taken from the prompt.
func New(log *slog.Logger, llm llms.Model) *Generator {
	return &Generator{
		log: log,
		llm: llm,
	}
}

type Generator struct {
	log *slog.Logger
	llm llms.Model
}

// Title never fails: if the model errors or returns nothing usable, the
// prompt is truncated instead.
func (g *Generator) Title(ctx context.Context, prompt string) string {
	if g.llm == nil {
		return Truncate(prompt)
	}
	resp, err := g.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithMaxTokens(16), llms.WithTemperature(0))
	if err != nil {
		g.log.Warn("failed to generate title", slog.Any("error", err))
		return Truncate(prompt)
	}
	if len(resp.Choices) == 0 {
		return Truncate(prompt)
	}
	title := strings.Trim(strings.TrimSpace(resp.Choices[0].Content), `"'`)
	if title == "" {
		return Truncate(prompt)
	}
	return Truncate(title)
}

// Truncate collapses whitespace and cuts s to MaxRunes runes.
func Truncate(s string) string {
	s = strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
	r := []rune(s)
	if len(r) <= MaxRunes {
		return s
	}
	return strings.TrimSpace(string(r[:MaxRunes]))
}
