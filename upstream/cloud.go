package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/chatrelay/auth"
	"github.com/a-h/chatrelay/models"
	"github.com/sashabaranov/go-openai"
)

// Sampling parameters sent with every cloud request.
type Sampling struct {
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float32 `yaml:"temperature"`
	TopP        float32 `yaml:"topP"`
}

var DefaultSampling = Sampling{
	MaxTokens:   1024,
	Temperature: 0.7,
	TopP:        0.95,
}

func NewCloud(log *slog.Logger, httpClient *http.Client, endpoint string, credentials auth.Provider, sampling Sampling, extract DeltaExtractor) *Cloud {
	return &Cloud{
		log:         log,
		http:        httpClient,
		endpoint:    endpoint,
		credentials: credentials,
		sampling:    sampling,
		extract:     extract,
	}
}

// Cloud is an OpenAI compatible chat completions endpoint, e.g. Vertex AI.
type Cloud struct {
	log         *slog.Logger
	http        *http.Client
	endpoint    string
	credentials auth.Provider
	sampling    Sampling
	extract     DeltaExtractor
}

// VertexEndpoint returns the OpenAI compatible chat completions URL for a project.
func VertexEndpoint(project, region string) string {
	return fmt.Sprintf("https://%[2]s-aiplatform.googleapis.com/v1beta1/projects/%[1]s/locations/%[2]s/endpoints/openapi/chat/completions", project, region)
}

func (c *Cloud) Open(ctx context.Context, req models.ChatPostRequest) (*Response, error) {
	token, err := c.credentials.Token(ctx)
	if err != nil {
		return nil, err
	}
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("Accept", "text/event-stream")
	res, err := post(ctx, c.http, c.endpoint, headers, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Stream:      true,
		MaxTokens:   c.sampling.MaxTokens,
		Temperature: c.sampling.Temperature,
		TopP:        c.sampling.TopP,
	})
	if err != nil {
		return nil, err
	}
	return &Response{
		Body:    res.Body,
		Decoder: NewSSEDecoder(c.log, c.extract),
	}, nil
}
