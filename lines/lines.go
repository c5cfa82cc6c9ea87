// Package lines splits a chunked byte stream into newline-delimited lines.
//
// Chunks may end part way through a line, or part way through a multi-byte
// UTF-8 sequence. Only complete lines are returned, so no text is decoded
// before all of its bytes have arrived.
package lines

import "bytes"

type Splitter struct {
	residual []byte
}

// Write appends chunk to the residual and returns every complete, non-blank
// line. The returned slices are only valid until the next call.
func (s *Splitter) Write(chunk []byte) (lines [][]byte) {
	s.residual = append(s.residual, chunk...)
	for {
		i := bytes.IndexByte(s.residual, '\n')
		if i < 0 {
			break
		}
		line := trim(s.residual[:i])
		s.residual = s.residual[i+1:]
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	if len(s.residual) == 0 {
		s.residual = nil
	}
	return lines
}

// Flush returns the residual as a final line, or nil if it is blank.
func (s *Splitter) Flush() []byte {
	line := trim(s.residual)
	s.residual = nil
	if len(bytes.TrimSpace(line)) == 0 {
		return nil
	}
	return line
}

// Buffered returns the number of bytes waiting for a newline.
func (s *Splitter) Buffered() int {
	return len(s.residual)
}

func trim(line []byte) []byte {
	return bytes.TrimSuffix(line, []byte("\r"))
}
