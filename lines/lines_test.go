package lines

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func collect(t *testing.T, chunks ...string) (got []string) {
	t.Helper()
	var s Splitter
	for _, c := range chunks {
		for _, line := range s.Write([]byte(c)) {
			got = append(got, string(line))
		}
	}
	if line := s.Flush(); line != nil {
		got = append(got, string(line))
	}
	return got
}

func TestSplitter(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []string
		expected []string
	}{
		{
			name:     "a single chunk with many lines",
			chunks:   []string{"a\nb\nc\n"},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "lines can span chunks",
			chunks:   []string{"hel", "lo\nwor", "ld\n"},
			expected: []string{"hello", "world"},
		},
		{
			name:     "the residual is returned when flushed",
			chunks:   []string{"a\nb"},
			expected: []string{"a", "b"},
		},
		{
			name:     "blank and whitespace lines are skipped",
			chunks:   []string{"\n\na\n   \n\t\nb\n\n"},
			expected: []string{"a", "b"},
		},
		{
			name:     "carriage returns are removed",
			chunks:   []string{"data: 1\r\n\r\ndata: 2\r", "\n"},
			expected: []string{"data: 1", "data: 2"},
		},
		{
			name:     "empty chunks are ignored",
			chunks:   []string{"", "a", "", "\n", ""},
			expected: []string{"a"},
		},
		{
			name:     "no input produces no lines",
			chunks:   nil,
			expected: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := collect(t, tt.chunks...)
			if diff := cmp.Diff(tt.expected, actual); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestSplitterMultiByteRunesAcrossChunks(t *testing.T) {
	input := "héllo 世界\n🙂\n"
	expected := []string{"héllo 世界", "🙂"}
	for i := 0; i <= len(input); i++ {
		actual := collect(t, input[:i], input[i:])
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Fatalf("split at %d: %s", i, diff)
		}
	}
}

func TestSplitterByteAtATime(t *testing.T) {
	input := "one\ntwo\nthree"
	actual := collect(t, strings.Split(input, "")...)
	if diff := cmp.Diff([]string{"one", "two", "three"}, actual); diff != "" {
		t.Error(diff)
	}
}

func TestSplitterBuffered(t *testing.T) {
	var s Splitter
	s.Write([]byte("abc\nde"))
	if s.Buffered() != 2 {
		t.Errorf("expected 2 buffered bytes, got %d", s.Buffered())
	}
	s.Write([]byte("\n"))
	if s.Buffered() != 0 {
		t.Errorf("expected 0 buffered bytes, got %d", s.Buffered())
	}
}
