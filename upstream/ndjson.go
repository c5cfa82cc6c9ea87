package upstream

import (
	"encoding/json"
	"log/slog"

	"github.com/a-h/chatrelay/lines"
	"github.com/a-h/chatrelay/models"
)

func NewNDJSONDecoder(log *slog.Logger) *NDJSONDecoder {
	return &NDJSONDecoder{
		log: log,
	}
}

// NDJSONDecoder reads newline-delimited {message:{content}, done} objects.
type NDJSONDecoder struct {
	log      *slog.Logger
	splitter lines.Splitter
}

type ndjsonChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

func (d *NDJSONDecoder) Decode(chunk []byte, final bool) (events []models.NormalizedEvent) {
	for _, line := range completeLines(&d.splitter, chunk, final) {
		if e, ok := d.decodeLine(line); ok {
			events = append(events, e)
		}
	}
	return events
}

func (d *NDJSONDecoder) decodeLine(line []byte) (e models.NormalizedEvent, ok bool) {
	var c ndjsonChunk
	if err := json.Unmarshal(line, &c); err != nil {
		d.log.Warn("skipping unparseable upstream line", slog.String("line", string(line)), slog.Any("error", err))
		return e, false
	}
	done := c.Done
	e.Message.Content = c.Message.Content
	e.Done = &done
	return e, true
}
