package upstream

import (
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// DeltaExtractor finds the text delta in one SSE payload. ok is false when
// the payload is valid but carries no text.
type DeltaExtractor func(payload []byte) (delta string, ok bool, err error)

type DeltaPath string

const (
	// DeltaPathChoices reads choices[0].delta.content.
	DeltaPathChoices DeltaPath = "choices"
	// DeltaPathCandidates reads candidates[0].content.parts[0].text.
	DeltaPathCandidates DeltaPath = "candidates"
)

func ExtractorFor(path DeltaPath) (DeltaExtractor, error) {
	switch path {
	case DeltaPathChoices, "":
		return ChoicesDelta, nil
	case DeltaPathCandidates:
		return CandidatesDelta, nil
	}
	return nil, fmt.Errorf("upstream: unknown delta path %q", path)
}

func ChoicesDelta(payload []byte) (delta string, ok bool, err error) {
	var resp openai.ChatCompletionStreamResponse
	if err = json.Unmarshal(payload, &resp); err != nil {
		return "", false, err
	}
	if len(resp.Choices) == 0 {
		return "", false, nil
	}
	return resp.Choices[0].Delta.Content, true, nil
}

func CandidatesDelta(payload []byte) (delta string, ok bool, err error) {
	var resp genai.GenerateContentResponse
	if err = json.Unmarshal(payload, &resp); err != nil {
		return "", false, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", false, nil
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return "", false, nil
	}
	return content.Parts[0].Text, true, nil
}
