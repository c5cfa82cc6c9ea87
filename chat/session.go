// Package chat drives a conversation against the relay: it sends the history,
// consumes the streamed reply, and records the outcome in a Store.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/a-h/chatrelay/chaterr"
	"github.com/a-h/chatrelay/models"
	"github.com/a-h/jsonapi"
)

var (
	ErrBusy         = errors.New("chat: a request is already in flight")
	ErrEmptyMessage = errors.New("chat: message is empty")
	ErrCancelled    = errors.New("chat: request cancelled")
)

var errStreamDone = errors.New("stream done")

// Sender posts a chat request to the relay and streams the body to f.
type Sender interface {
	ChatPost(ctx context.Context, req models.ChatPostRequest, f func(ctx context.Context, chunk []byte) error) error
}

type Config struct {
	ConversationID string
	Model          string
	Provider       models.Provider
}

// Open loads the history of an existing conversation.
func Open(ctx context.Context, log *slog.Logger, sender Sender, store Store, config Config) (*Session, error) {
	msgs, err := store.MessageList(ctx, config.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	s := New(log, sender, store, config)
	for _, m := range msgs {
		if m.Role == models.ChatRoleUser || m.Role == models.ChatRoleAssistant {
			s.history = append(s.history, models.ChatMessage{Role: m.Role, Content: m.Content})
		}
	}
	return s, nil
}

func New(log *slog.Logger, sender Sender, store Store, config Config) *Session {
	return &Session{
		log:    log.With(slog.String("conversation", config.ConversationID)),
		sender: sender,
		store:  store,
		config: config,
	}
}

type Session struct {
	log     *slog.Logger
	sender  Sender
	store   Store
	config  Config
	history []models.ChatMessage

	m      sync.Mutex
	cancel context.CancelCauseFunc
}

// History returns the user and assistant messages sent with the next request.
func (s *Session) History() []models.ChatMessage {
	s.m.Lock()
	defer s.m.Unlock()
	return append([]models.ChatMessage(nil), s.history...)
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.cancel != nil
}

// Cancel aborts the in-flight request, if any.
func (s *Session) Cancel() bool {
	s.m.Lock()
	defer s.m.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel(ErrCancelled)
	return true
}

// Send appends content to the conversation and streams the reply. publish is
// called with the accumulated reply after every delta. The reply is saved to
// the store only when the stream completes with content.
func (s *Session) Send(ctx context.Context, content string, publish func(content string)) (reply string, err error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyMessage
	}
	s.m.Lock()
	if s.cancel != nil {
		s.m.Unlock()
		return "", ErrBusy
	}
	ctx, cancel := context.WithCancelCause(ctx)
	s.cancel = cancel
	s.m.Unlock()
	defer func() {
		s.m.Lock()
		s.cancel = nil
		s.m.Unlock()
		cancel(nil)
	}()

	if err = s.store.MessageAppend(ctx, s.config.ConversationID, models.ChatRoleUser, content); err != nil {
		return "", fmt.Errorf("failed to save message: %w", err)
	}
	s.m.Lock()
	s.history = append(s.history, models.ChatMessage{Role: models.ChatRoleUser, Content: content})
	req := models.ChatPostRequest{
		Model:    s.config.Model,
		Messages: append([]models.ChatMessage(nil), s.history...),
		Provider: string(s.config.Provider),
	}
	s.m.Unlock()

	acc := NewAccumulator(s.log, publish)
	err = s.sender.ChatPost(ctx, req, func(ctx context.Context, chunk []byte) error {
		acc.Write(chunk)
		if acc.Done() {
			return errStreamDone
		}
		return nil
	})
	if errors.Is(err, errStreamDone) {
		err = nil
	}
	if err == nil {
		acc.Close()
	}
	if err = classify(ctx, err, acc); err != nil {
		s.log.Warn("chat failed", slog.String("kind", string(chaterr.KindOf(err))), slog.Int("buffered", acc.Buffered()), slog.Any("error", err))
		if chaterr.KindOf(err) != chaterr.KindCancel {
			s.recordFailure(context.WithoutCancel(ctx), err)
		}
		return "", err
	}

	reply = acc.Content()
	if err = s.store.MessageAppend(context.WithoutCancel(ctx), s.config.ConversationID, models.ChatRoleAssistant, reply); err != nil {
		return reply, fmt.Errorf("failed to save reply: %w", err)
	}
	s.m.Lock()
	s.history = append(s.history, models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply})
	s.m.Unlock()
	s.log.Debug("chat complete", slog.Int("deltas", acc.Deltas()), slog.Int("skipped", acc.Skipped()))
	return reply, nil
}

func (s *Session) recordFailure(ctx context.Context, err error) {
	if storeErr := s.store.MessageAppend(ctx, s.config.ConversationID, models.ChatRoleError, err.Error()); storeErr != nil {
		s.log.Error("failed to record chat failure", slog.Any("error", storeErr))
	}
}

func classify(ctx context.Context, err error, acc *Accumulator) error {
	// A stream that completed with content is kept, even if cancelled afterwards.
	if err == nil && acc.Deltas() > 0 {
		return nil
	}
	if ctx.Err() != nil {
		return chaterr.New(chaterr.KindCancel, "request cancelled", context.Cause(ctx))
	}
	if err == nil {
		return chaterr.New(chaterr.KindEmptyResponse, "the model returned no content", nil)
	}
	var ise jsonapi.InvalidStatusError
	if errors.As(err, &ise) {
		msg := errorMessage(ise.Status, ise.Body)
		if ise.Status == http.StatusServiceUnavailable {
			return chaterr.New(chaterr.KindModelUnavailable, msg, err)
		}
		return chaterr.New(chaterr.KindAPI, msg, err)
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return chaterr.New(chaterr.KindNetwork, "failed to reach the relay", err)
	}
	return chaterr.New(chaterr.KindUnknown, "chat failed", err)
}

func errorMessage(status int, body string) string {
	var er models.ErrorResponse
	if err := json.Unmarshal([]byte(body), &er); err == nil && er.Error != "" {
		return fmt.Sprintf("relay returned %d: %s", status, er.Error)
	}
	return fmt.Sprintf("relay returned %d", status)
}
