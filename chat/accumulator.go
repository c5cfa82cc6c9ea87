package chat

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/a-h/chatrelay/lines"
	"github.com/a-h/chatrelay/models"
)

func NewAccumulator(log *slog.Logger, publish func(content string)) *Accumulator {
	return &Accumulator{
		log:     log,
		publish: publish,
	}
}

// Accumulator builds the streaming assistant message from relay output.
type Accumulator struct {
	log      *slog.Logger
	publish  func(content string)
	splitter lines.Splitter
	content  strings.Builder
	deltas   int
	skipped  int
	done     bool
}

// Write consumes one chunk of the relay body.
func (a *Accumulator) Write(chunk []byte) (n int, err error) {
	for _, line := range a.splitter.Write(chunk) {
		a.line(line)
	}
	return len(chunk), nil
}

// Close processes a trailing line that was not newline terminated.
func (a *Accumulator) Close() error {
	if line := a.splitter.Flush(); line != nil {
		a.line(line)
	}
	return nil
}

func (a *Accumulator) line(line []byte) {
	if a.done {
		return
	}
	var e models.NormalizedEvent
	if err := json.Unmarshal(line, &e); err != nil {
		a.skipped++
		a.log.Warn("skipping unparseable line", slog.String("line", string(line)), slog.Any("error", err))
		return
	}
	if e.IsDone() {
		a.done = true
		return
	}
	if e.Message.Content == "" {
		return
	}
	a.content.WriteString(e.Message.Content)
	a.deltas++
	if a.publish != nil {
		a.publish(a.content.String())
	}
}

func (a *Accumulator) Content() string {
	return a.content.String()
}

// Deltas is the number of non-empty deltas received.
func (a *Accumulator) Deltas() int {
	return a.deltas
}

// Skipped is the number of lines that could not be parsed.
func (a *Accumulator) Skipped() int {
	return a.skipped
}

// Buffered is the number of bytes of an incomplete trailing line.
func (a *Accumulator) Buffered() int {
	return a.splitter.Buffered()
}

// Done reports whether a terminal event was received.
func (a *Accumulator) Done() bool {
	return a.done
}
