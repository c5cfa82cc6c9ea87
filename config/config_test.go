package config

import (
	"strings"
	"testing"

	"github.com/a-h/chatrelay/models"
	"github.com/a-h/chatrelay/upstream"
	"github.com/google/go-cmp/cmp"
)

func TestRead(t *testing.T) {
	t.Run("an empty document returns the defaults", func(t *testing.T) {
		c, err := Read(strings.NewReader(""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(Default(), c); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("file values override defaults", func(t *testing.T) {
		c, err := Read(strings.NewReader(`
local:
  url: http://ollama:11434
cloud:
  project: my-project
  region: europe-west4
  deltaPath: candidates
  sampling:
    maxTokens: 256
models:
  - id: small
    provider: ollama
    modelId: llama3.2
  - id: large
    name: Large
    provider: vertex-ai
    modelId: meta/llama-3.2-90b-vision-instruct-maas
`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Local.URL != "http://ollama:11434" {
			t.Errorf("unexpected local url %q", c.Local.URL)
		}
		if c.Cloud.DeltaPath != upstream.DeltaPathCandidates {
			t.Errorf("unexpected delta path %q", c.Cloud.DeltaPath)
		}
		expectedSampling := upstream.Sampling{MaxTokens: 256, Temperature: 0.7, TopP: 0.95}
		if diff := cmp.Diff(expectedSampling, c.Cloud.Sampling); diff != "" {
			t.Error(diff)
		}
		expectedURL := "https://europe-west4-aiplatform.googleapis.com/v1beta1/projects/my-project/locations/europe-west4/endpoints/openapi/chat/completions"
		if c.Cloud.URL() != expectedURL {
			t.Errorf("unexpected cloud url %q", c.Cloud.URL())
		}
		expectedModels := []models.ModelOption{
			{ID: "small", Name: "llama3.2", Provider: models.ProviderLocal, ModelID: "llama3.2"},
			{ID: "large", Name: "Large", Provider: models.ProviderCloud, ModelID: "meta/llama-3.2-90b-vision-instruct-maas"},
		}
		if diff := cmp.Diff(expectedModels, c.Models); diff != "" {
			t.Error(diff)
		}
	})
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "unknown delta path",
			input:    "cloud:\n  deltaPath: output\n",
			expected: "unknown delta path",
		},
		{
			name:     "unknown provider",
			input:    "models:\n  - id: a\n    provider: openai\n    modelId: gpt\n",
			expected: "unknown provider",
		},
		{
			name:     "missing provider",
			input:    "models:\n  - id: a\n    modelId: gpt\n",
			expected: "provider is required",
		},
		{
			name:     "duplicate ids",
			input:    "models:\n  - id: a\n    provider: local\n    modelId: x\n  - id: a\n    provider: local\n    modelId: y\n",
			expected: "duplicate model id",
		},
		{
			name:     "invalid yaml",
			input:    "local: [",
			expected: "failed to decode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("expected error containing %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestCloudURL(t *testing.T) {
	if got := (Cloud{}).URL(); got != "" {
		t.Errorf("expected no url, got %q", got)
	}
	if got := (Cloud{Endpoint: "https://example.com/v1/chat/completions", Project: "p"}).URL(); got != "https://example.com/v1/chat/completions" {
		t.Errorf("expected endpoint override, got %q", got)
	}
}
