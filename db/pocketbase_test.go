package db

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestPocketbaseSequence(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := &Pocketbase{Now: func() time.Time { return now }}

	var got []int64
	for range 3 {
		got = append(got, p.nextSeq())
	}
	// The clock going backwards must not reorder messages.
	now = now.Add(-time.Second)
	got = append(got, p.nextSeq())

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).UnixMicro()
	expected := []int64{base, base + 1, base + 2, base + 3}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Error(diff)
	}
}
