// Package relay forwards a chat request to one upstream and re-emits its
// response as normalized events.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/a-h/chatrelay/models"
	"github.com/a-h/chatrelay/upstream"
)

const chunkSize = 1024

var ErrUnsupportedProvider = errors.New("relay: unsupported provider")

func New(log *slog.Logger, providers map[models.Provider]upstream.Provider) *Relay {
	return &Relay{
		log:       log,
		providers: providers,
	}
}

type Relay struct {
	log       *slog.Logger
	providers map[models.Provider]upstream.Provider
}

// Open selects the upstream for provider and starts the request. Nothing has
// been streamed when an error is returned.
func (r *Relay) Open(ctx context.Context, provider models.Provider, req models.ChatPostRequest) (*Stream, error) {
	p, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	resp, err := p.Open(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Stream{
		log:      r.log.With(slog.String("provider", string(provider)), slog.String("model", req.Model)),
		body:     resp.Body,
		decoder:  resp.Decoder,
		provider: provider,
	}, nil
}

type Stream struct {
	log      *slog.Logger
	body     io.ReadCloser
	decoder  upstream.Decoder
	provider models.Provider
}

// Run reads the upstream body and calls emit for each event as soon as it is
// decoded. A connection dropped by the upstream ends the stream without error.
func (s *Stream) Run(ctx context.Context, emit func(models.NormalizedEvent) error) (err error) {
	chunk := make([]byte, chunkSize)
	var events int
	for {
		n, readErr := s.body.Read(chunk)
		final := readErr != nil
		for _, e := range s.decoder.Decode(chunk[:n], final) {
			if err = emit(e); err != nil {
				return fmt.Errorf("relay: failed to emit event: %w", err)
			}
			events++
		}
		if readErr == nil {
			continue
		}
		if readErr == io.EOF {
			s.log.Debug("upstream stream complete", slog.Int("events", events))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("upstream stream ended early", slog.Int("events", events), slog.Any("error", readErr))
		return nil
	}
}

func (s *Stream) Close() error {
	return s.body.Close()
}
