package upstream

import (
	"bytes"
	"log/slog"

	"github.com/a-h/chatrelay/lines"
	"github.com/a-h/chatrelay/models"
)

var (
	dataPrefix   = []byte("data: ")
	doneSentinel = []byte("[DONE]")
)

func NewSSEDecoder(log *slog.Logger, extract DeltaExtractor) *SSEDecoder {
	return &SSEDecoder{
		log:     log,
		extract: extract,
	}
}

// SSEDecoder reads `data: <json>` lines terminated by `data: [DONE]`.
type SSEDecoder struct {
	log      *slog.Logger
	extract  DeltaExtractor
	splitter lines.Splitter
	done     bool
}

func (d *SSEDecoder) Decode(chunk []byte, final bool) (events []models.NormalizedEvent) {
	for _, line := range completeLines(&d.splitter, chunk, final) {
		if e, ok := d.decodeLine(line); ok {
			events = append(events, e)
		}
	}
	return events
}

func (d *SSEDecoder) decodeLine(line []byte) (e models.NormalizedEvent, ok bool) {
	if d.done || !bytes.HasPrefix(line, dataPrefix) {
		return e, false
	}
	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if bytes.HasPrefix(payload, doneSentinel) {
		d.done = true
		return e, false
	}
	delta, ok, err := d.extract(payload)
	if err != nil {
		d.log.Warn("skipping unparseable upstream event", slog.String("line", string(line)), slog.Any("error", err))
		return e, false
	}
	if !ok || delta == "" {
		return e, false
	}
	e.Message.Content = delta
	return e, true
}
