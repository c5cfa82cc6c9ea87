// Package upstream talks to the language model backends and turns their
// streaming bodies into normalized events.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/chatrelay/lines"
	"github.com/a-h/chatrelay/models"
)

// Decoder turns the next chunk of an upstream body into zero or more
// normalized events. final is set on the last call, after the body ends.
type Decoder interface {
	Decode(chunk []byte, final bool) []models.NormalizedEvent
}

// Provider opens one streaming request against an upstream.
type Provider interface {
	Open(ctx context.Context, req models.ChatPostRequest) (*Response, error)
}

// Response is an open upstream body and the decoder for its wire format.
type Response struct {
	Body    io.ReadCloser
	Decoder Decoder
}

// StatusError is returned when the upstream responds with a non-success status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: unexpected status %d: %s", e.Status, e.Body)
}

// ModelUnavailable reports whether the upstream status means the model
// can't serve requests.
func (e *StatusError) ModelUnavailable() bool {
	return e.Status == http.StatusNotFound || e.Status == http.StatusServiceUnavailable
}

func post(ctx context.Context, client *http.Client, url string, headers http.Header, body any) (*http.Response, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("upstream: failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("upstream: failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: failed to perform request: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("upstream: failed to read error body for status %d: %w", res.StatusCode, err)
		}
		return nil, &StatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	return res, nil
}

// completeLines returns the lines completed by chunk, and the residual too
// when the body has ended.
func completeLines(s *lines.Splitter, chunk []byte, final bool) [][]byte {
	ls := s.Write(chunk)
	if final {
		if line := s.Flush(); line != nil {
			ls = append(ls, line)
		}
	}
	return ls
}
