package upstream

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/chatrelay/models"
	"github.com/a-h/jsonapi"
)

func NewLocal(log *slog.Logger, httpClient *http.Client, baseURL string) *Local {
	return &Local{
		log:     log,
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Local is a local inference server with an Ollama compatible /api/chat.
type Local struct {
	log     *slog.Logger
	http    *http.Client
	baseURL string
}

type localChatRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

func (l *Local) Open(ctx context.Context, req models.ChatPostRequest) (*Response, error) {
	url, err := jsonapi.URL(l.baseURL).Path("api", "chat").String()
	if err != nil {
		return nil, err
	}
	res, err := post(ctx, l.http, url, http.Header{"Accept": []string{"application/x-ndjson"}}, localChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}
	return &Response{
		Body:    res.Body,
		Decoder: NewNDJSONDecoder(l.log),
	}, nil
}
