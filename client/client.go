package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/chatrelay/models"
	"github.com/a-h/jsonapi"
)

const chunkSize = 1024

func New(baseURL string) Client {
	return Client{
		baseURL: baseURL,
	}
}

type Client struct {
	baseURL string
}

// ChatPost streams the relay's response body to f, one read at a time.
func (c Client) ChatPost(ctx context.Context, request models.ChatPostRequest, f func(ctx context.Context, chunk []byte) error) (err error) {
	url, err := jsonapi.URL(c.baseURL).Path("chat").String()
	if err != nil {
		return err
	}
	return c.postStream(ctx, url, request, f)
}

func (c Client) ModelsGet(ctx context.Context) (resp models.ModelsGetResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("models").String()
	if err != nil {
		return resp, err
	}
	err = c.do(ctx, http.MethodGet, url, nil, &resp)
	return resp, err
}

func (c Client) ConversationsPost(ctx context.Context, req models.ConversationsPostRequest) (resp models.ConversationsPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("conversations").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.ConversationsPostRequest, models.ConversationsPostResponse](ctx, url, req)
}

func (c Client) ConversationCreate(ctx context.Context, title, model string) (id string, err error) {
	resp, err := c.ConversationsPost(ctx, models.ConversationsPostRequest{
		Title: title,
		Model: model,
	})
	return resp.ID, err
}

func (c Client) ConversationList(ctx context.Context) (conversations []models.Conversation, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("conversations").String()
	if err != nil {
		return nil, err
	}
	var resp models.ConversationsGetResponse
	err = c.do(ctx, http.MethodGet, url, nil, &resp)
	return resp.Conversations, err
}

func (c Client) ConversationDelete(ctx context.Context, id string) (err error) {
	url, err := jsonapi.URL(c.baseURL).Path("conversations", id).String()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, url, nil, nil)
}

func (c Client) MessageAppend(ctx context.Context, conversationID string, role models.ChatRole, content string) (err error) {
	url, err := jsonapi.URL(c.baseURL).Path("conversations", conversationID, "messages").String()
	if err != nil {
		return err
	}
	err = c.do(ctx, http.MethodPost, url, models.MessagesPostRequest{
		Role:    role,
		Content: content,
	}, nil)
	var ise jsonapi.InvalidStatusError
	if errors.As(err, &ise) && ise.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %q", models.ErrConversationNotFound, conversationID)
	}
	return err
}

func (c Client) MessageList(ctx context.Context, conversationID string) (messages []models.Message, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("conversations", conversationID, "messages").String()
	if err != nil {
		return nil, err
	}
	var resp models.MessagesGetResponse
	err = c.do(ctx, http.MethodGet, url, nil, &resp)
	return resp.Messages, err
}

func (c Client) do(ctx context.Context, method, url string, body, v any) (err error) {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(buf)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	res, err := jsonapi.Raw(httpReq, jsonapi.WithRequestHeader("Accept", "application/json"))
	if err != nil {
		return fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return jsonapi.InvalidStatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	if v == nil {
		return nil
	}
	if err = json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c Client) postStream(ctx context.Context, url string, req any, f func(ctx context.Context, chunk []byte) error) (err error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	res, err := jsonapi.Raw(httpReq, jsonapi.WithRequestHeader("Accept", "application/x-ndjson"))
	if err != nil {
		return fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return jsonapi.InvalidStatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	chunk := make([]byte, chunkSize)
	for {
		n, err := res.Body.Read(chunk)
		if n > 0 {
			if err := f(ctx, chunk[:n]); err != nil {
				return fmt.Errorf("failed to process chunk: %w", err)
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read response body: %w", err)
		}
	}
}
